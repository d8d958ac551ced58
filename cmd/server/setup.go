// Copyright 2025 WalkGen AI, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/walkgen-ai/walkgen-go/internal/cloud"
	"github.com/walkgen-ai/walkgen-go/internal/core/services"
	"github.com/walkgen-ai/walkgen-go/internal/core/workflow"
)

// StateManager holds the shared components for the application.
type StateManager struct {
	config     *cloud.Config
	cloud      *cloud.ServiceClients
	store      *services.Store
	jobManager *services.JobManager
}

var state = &StateManager{}

// SetupOS points the config loader at the configs directory with the local
// runtime, unless the environment already says otherwise.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig lazily loads the application configuration from the TOML files.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// InitState wires the full dependency graph: external clients, the SQLite
// store, the analysis workflow and the job manager.
func InitState(ctx context.Context) {
	config := GetConfig()

	serviceClients, err := cloud.NewServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = serviceClients

	databasePath := config.Cache.DatabasePath
	if databasePath == "" {
		databasePath = "walkgen.db"
	}
	store, err := services.NewStore(databasePath)
	if err != nil {
		panic(err)
	}
	state.store = store

	analysisModel, ok := serviceClients.AgentModels["gameplay-analyst"]
	if !ok {
		panic("config is missing the gameplay-analyst agent model")
	}
	summaryModel, ok := serviceClients.AgentModels["summary-writer"]
	if !ok {
		// Reuse the analyst profile rather than refusing to start.
		summaryModel = analysisModel
	}

	pipeline := workflow.NewAnalysisWorkflow(
		config,
		serviceClients.YouTube,
		serviceClients.YouTube,
		analysisModel,
		summaryModel,
		store,
	)

	retention := time.Duration(config.Analysis.JobRetentionMinutes) * time.Minute
	state.jobManager = services.NewJobManager(store, pipeline, retention)
}

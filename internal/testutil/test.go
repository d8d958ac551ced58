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

// Package testutil provides utility functions and mock data to support the
// application's test suite: loading the test configuration and canned
// transcript and model-reply fixtures for pipeline tests.
package testutil

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/walkgen-ai/walkgen-go/internal/cloud"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// StateManager caches the loaded configuration for the duration of a test
// run, so the TOML files are parsed once.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil. Convenience to cut
// boilerplate in suite setup code.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// SetupOS points the configuration loader at the repository's configs
// directory with the test runtime. The directory is resolved relative to
// this source file, so tests pass regardless of which package directory the
// test binary runs in.
func SetupOS() (err error) {
	_, thisFile, _, _ := runtime.Caller(0)
	configDir := filepath.Join(filepath.Dir(thisFile), "..", "..", "configs")
	if err = os.Setenv(cloud.EnvConfigFilePrefix, configDir); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig is the singleton accessor for the test configuration, loading
// .env.toml plus the .env.test.toml overrides on first use.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// GetTestCaptionFragments returns a short but realistic gameplay transcript:
// an intro, some exploration chatter, and a boss fight.
func GetTestCaptionFragments() []model.CaptionFragment {
	return []model.CaptionFragment{
		{Text: "welcome back everyone today we're starting the full walkthrough", StartSeconds: 0, Duration: 4.2},
		{Text: "first let's grab the map fragment by the gate", StartSeconds: 4.2, Duration: 3.6},
		{Text: "head north through the ruins and watch for the soldiers", StartSeconds: 7.8, Duration: 4.1},
		{Text: "there's a golden seed hidden behind this tree", StartSeconds: 12.0, Duration: 3.3},
		{Text: "alright through the fog wall it's time for the boss fight", StartSeconds: 15.5, Duration: 3.9},
		{Text: "margit has a delayed overhead swing so don't roll early", StartSeconds: 19.4, Duration: 4.4},
		{Text: "stay close punish after the triple combo and he goes down", StartSeconds: 23.8, Duration: 4.0},
		{Text: "great job that's the first major boss done", StartSeconds: 27.8, Duration: 3.1},
	}
}

// GetTestSegmentReply returns a canned model reply covering the fixture
// transcript, in the JSON array shape the extractor parses.
func GetTestSegmentReply() string {
	return `[
  {
    "type": "exploration",
    "label": "Opening area and map fragment",
    "start_seconds": 0,
    "end_seconds": 15,
    "description": "Grab the map fragment by the gate and head north through the ruins.",
    "tags": ["map-fragment", "ruins", "golden-seed"]
  },
  {
    "type": "boss",
    "label": "Boss: Margit the Fell Omen",
    "start_seconds": 15,
    "end_seconds": 31,
    "description": "Stay close and punish after the triple combo. Do not roll early on the delayed overhead swing.",
    "tags": ["boss", "margit"],
    "difficulty": "hard"
  }
]`
}

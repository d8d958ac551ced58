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

// This file initializes and holds the clients for all external services the
// application talks to. It acts as a dependency injection container: a single
// ServiceClients struct is created at startup and handed to the workflow and
// services that need it.
//
// Logic Flow:
//  1. NewServiceClients is called at application startup with the loaded Config.
//  2. A Gemini client is created from the GEMINI_API_KEY environment variable.
//  3. Each configured agent model profile is wrapped in a rate-limited,
//     retrying QuotaAwareGenerativeAIModel.
//  4. The YouTube metadata and caption clients are created from the config.
package cloud

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/walkgen-ai/walkgen-go/internal/youtube"
)

// EnvGeminiAPIKey names the environment variable carrying the Gemini key.
// API keys stay out of the TOML files so configs can be committed.
const EnvGeminiAPIKey = "GEMINI_API_KEY"

// ServiceClients is the central container for all external service clients.
type ServiceClients struct {
	GenAIClient *genai.Client                           // Shared Gemini client.
	AgentModels map[string]*QuotaAwareGenerativeAIModel // Wrapped model profiles, keyed by logical name.
	YouTube     *youtube.Client                         // Metadata and caption provider.
}

// NewServiceClients initializes every external client from the configuration.
//
// Inputs:
//   - ctx: the root context for client lifecycles.
//   - config: the loaded application configuration.
//
// Outputs:
//   - *ServiceClients: the fully initialized container.
//   - error: when any client fails to initialize.
func NewServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv(EnvGeminiAPIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for key, values := range config.AgentModels {
		generateConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		agentModels[key] = NewQuotaAwareModel(
			generateConfig,
			values.Model,
			gc.Models,
			values.RateLimit,
			DefaultRetryPolicy(values.MaxRetries))
	}

	yt, err := youtube.NewClient(ctx, youtube.Config{
		APIKey:          config.YouTube.APIKey,
		CaptionLanguage: config.YouTube.CaptionLanguage,
	})
	if err != nil {
		return nil, fmt.Errorf("create youtube client: %w", err)
	}

	return &ServiceClients{
		GenAIClient: gc,
		AgentModels: agentModels,
		YouTube:     yt,
	}, nil
}

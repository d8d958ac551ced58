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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, and the clients for the external providers the
// pipeline depends on: the Gemini segmentation model and the YouTube
// metadata/caption services.
//
// Structs:
//   - GeminiModel: configuration for one generative model profile.
//   - PromptTemplates: text templates for prompts sent to the model.
//   - YouTubeConfig, CacheConfig, AnalysisConfig: provider and pipeline tuning.
//   - Config: the top-level struct aggregating all of the above.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings disables content blocking for all harm categories.
// Gameplay transcripts trip the violence filters constantly ("kill the boss",
// "destroy the nest"), so analysis runs with blocking off.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// GeminiModel represents the configuration for one generative model profile.
type GeminiModel struct {
	Model              string  `toml:"model"`               // Model name, e.g. "gemini-2.0-flash".
	SystemInstructions string  `toml:"system_instructions"` // System prompt for the model.
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"` // Response MIME type, e.g. "application/json".
	RateLimit          int     `toml:"rate_limit"`    // Requests per second allowed for this model.
	MaxRetries         int     `toml:"max_retries"`   // Retry budget per call before the error surfaces.
}

// PromptTemplates holds the Go text/template sources for model prompts.
type PromptTemplates struct {
	SegmentPrompt string `toml:"segment"` // Per-chunk segment extraction prompt.
	SummaryPrompt string `toml:"summary"` // Final walkthrough summary prompt.
}

// YouTubeConfig configures the metadata and caption providers.
type YouTubeConfig struct {
	APIKey          string `toml:"api_key"`          // YouTube Data API v3 key.
	CaptionLanguage string `toml:"caption_language"` // Preferred caption language code, default "en".
}

// CacheConfig configures the durable walkthrough cache.
type CacheConfig struct {
	DatabasePath string `toml:"database_path"` // SQLite file path; ":memory:" allowed in tests.
}

// AnalysisConfig tunes the pipeline itself.
type AnalysisConfig struct {
	ChunkSizeChars          int `toml:"chunk_size_chars"`          // Character budget per transcript chunk.
	WindowToleranceSeconds  int `toml:"window_tolerance_seconds"`  // Allowed drift of a proposal outside its chunk window.
	OverlapToleranceSeconds int `toml:"overlap_tolerance_seconds"` // Truncated segments at most this long are dropped as duplicates.
	JobRetentionMinutes     int `toml:"job_retention_minutes"`     // How long terminal jobs stay pollable.
}

// Config represents the overall configuration for the application, loaded
// from TOML files.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name           string `toml:"name"`             // Service name used for telemetry.
		Port           int    `toml:"port"`             // HTTP listen port.
		ThreadPoolSize int    `toml:"thread_pool_size"` // Worker pool size for parallel chunk analysis.
	} `toml:"application"`
	YouTube         YouTubeConfig          `toml:"youtube"`
	Cache           CacheConfig            `toml:"cache"`
	Analysis        AnalysisConfig         `toml:"analysis"`
	PromptTemplates PromptTemplates        `toml:"prompt_templates"`
	AgentModels     map[string]GeminiModel `toml:"agent_models"` // Model profiles keyed by a logical name (e.g. "gameplay-analyst").
}

// NewConfig creates a new, initialized Config instance with its map fields
// ready for the TOML decoder.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]GeminiModel),
	}
}

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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. Each command is one stage
// of the walkthrough analysis pipeline: metadata fetch, transcript fetch,
// chunking, parallel segment extraction, assembly, summarization and
// persistence.
//
// This file declares the narrow provider interfaces the commands depend on
// and the well-known context parameter names shared across the pipeline.
// Commands depend on interfaces rather than the concrete YouTube or Gemini
// clients so tests can substitute fakes.
package commands

import (
	"context"

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// MetadataProvider resolves a video id into its title, channel, duration and
// thumbnail.
type MetadataProvider interface {
	FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error)
}

// TranscriptProvider downloads the caption track for a video. An empty
// fragment slice with a nil error means the video has no captions.
type TranscriptProvider interface {
	FetchTranscript(ctx context.Context, videoID string) ([]model.CaptionFragment, error)
}

// TextGenerator is the single-call surface of a generative model. The
// rate-limited Gemini wrapper satisfies it in production.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GetVideoIdParameterName returns the context key for the canonical video id.
func GetVideoIdParameterName() string {
	return "__VIDEO_ID__"
}

// GetVideoMetadataParameterName returns the context key for the fetched
// *model.VideoMetadata.
func GetVideoMetadataParameterName() string {
	return "__VIDEO_METADATA__"
}

// GetJobIdParameterName returns the context key for the id of the job this
// pipeline run belongs to.
func GetJobIdParameterName() string {
	return "__JOB_ID__"
}

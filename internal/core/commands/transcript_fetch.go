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

package commands

import (
	"fmt"

	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// TranscriptFetch downloads the caption track for the video under analysis.
// A video without captions is a terminal condition for the whole job: there
// is nothing to segment without a transcript.
type TranscriptFetch struct {
	cor.BaseCommand
	provider TranscriptProvider
}

// NewTranscriptFetch is the constructor for the TranscriptFetch command.
func NewTranscriptFetch(name string, provider TranscriptProvider) *TranscriptFetch {
	return &TranscriptFetch{
		BaseCommand: *cor.NewBaseCommand(name),
		provider:    provider,
	}
}

// IsExecutable checks that the video id is present in the context.
func (c *TranscriptFetch) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(GetVideoIdParameterName()) != nil
}

// Execute downloads the caption fragments and pipes them to the next command.
func (c *TranscriptFetch) Execute(context cor.Context) {
	videoID := context.Get(GetVideoIdParameterName()).(string)
	context.ReportProgress(30, "Downloading transcript")

	fragments, err := c.provider.FetchTranscript(context.GetContext(), videoID)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("fetch transcript for %s: %w", videoID, err))
		return
	}
	if len(fragments) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("%w: video %s has no captions", model.ErrTranscriptUnavailable, videoID))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), fragments)
}

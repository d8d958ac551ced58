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
)

// MetadataFetch is the first pipeline command. It resolves the video id into
// title, channel, duration and thumbnail, and publishes the metadata both to
// the chain and under a well-known parameter name for later commands.
type MetadataFetch struct {
	cor.BaseCommand
	provider MetadataProvider
}

// NewMetadataFetch is the constructor for the MetadataFetch command.
//
// Inputs:
//   - name: a string name for this command instance.
//   - provider: the video metadata provider.
//
// Outputs:
//   - *MetadataFetch: a pointer to the newly instantiated command.
func NewMetadataFetch(name string, provider MetadataProvider) *MetadataFetch {
	return &MetadataFetch{
		BaseCommand: *cor.NewBaseCommand(name),
		provider:    provider,
	}
}

// IsExecutable checks that the video id is present in the context.
func (c *MetadataFetch) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(GetVideoIdParameterName()) != nil
}

// Execute fetches the video metadata and stores it in the context.
func (c *MetadataFetch) Execute(context cor.Context) {
	videoID := context.Get(GetVideoIdParameterName()).(string)
	context.ReportProgress(10, "Fetching video information")

	metadata, err := c.provider.FetchMetadata(context.GetContext(), videoID)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("fetch metadata for %s: %w", videoID, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.ReportProgress(20, "Video information fetched")
	context.Add(GetVideoMetadataParameterName(), metadata)
	context.Add(c.GetOutputParam(), metadata)
}

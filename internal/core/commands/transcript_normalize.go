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
	"math"
	"strings"

	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// TranscriptNormalize converts raw caption fragments into bounded transcript
// chunks sized for a single model call. Chunking is deterministic: the same
// fragments with the same character budget always yield the same chunks.
type TranscriptNormalize struct {
	cor.BaseCommand
	chunkSizeChars int
}

// NewTranscriptNormalize is the constructor for the TranscriptNormalize command.
//
// Inputs:
//   - name: a string name for this command instance.
//   - chunkSizeChars: the character budget per chunk.
//
// Outputs:
//   - *TranscriptNormalize: a pointer to the newly instantiated command.
func NewTranscriptNormalize(name string, chunkSizeChars int) *TranscriptNormalize {
	return &TranscriptNormalize{
		BaseCommand:    *cor.NewBaseCommand(name),
		chunkSizeChars: chunkSizeChars,
	}
}

// Execute chunks the caption fragments and pipes the chunks onward.
func (c *TranscriptNormalize) Execute(context cor.Context) {
	fragments := context.Get(c.GetInputParam()).([]model.CaptionFragment)
	context.ReportProgress(45, "Preparing transcript for analysis")

	chunks := ChunkFragments(fragments, c.chunkSizeChars)
	if len(chunks) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.ErrTranscriptUnavailable)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), chunks)
}

// ChunkFragments greedily packs caption fragments into transcript chunks of at
// most chunkSizeChars characters. Splits only happen on fragment boundaries so
// each chunk's declared time window exactly covers its text. Whitespace-only
// fragments are dropped. A single fragment longer than the budget becomes its
// own oversized chunk rather than being split mid-sentence.
func ChunkFragments(fragments []model.CaptionFragment, chunkSizeChars int) []model.TranscriptChunk {
	if chunkSizeChars <= 0 {
		chunkSizeChars = 6000
	}

	chunks := make([]model.TranscriptChunk, 0)
	var sb strings.Builder
	chunkStart := 0.0
	chunkEnd := 0.0

	flush := func() {
		text := strings.TrimSpace(sb.String())
		if text == "" {
			return
		}
		chunks = append(chunks, model.TranscriptChunk{
			Text:         text,
			StartSeconds: int(math.Floor(chunkStart)),
			EndSeconds:   int(math.Ceil(chunkEnd)),
		})
		sb.Reset()
	}

	for _, fragment := range fragments {
		text := strings.TrimSpace(fragment.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 && sb.Len()+1+len(text) > chunkSizeChars {
			flush()
		}
		if sb.Len() == 0 {
			chunkStart = fragment.StartSeconds
			chunkEnd = fragment.StartSeconds
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(text)
		if end := fragment.StartSeconds + fragment.Duration; end > chunkEnd {
			chunkEnd = end
		}
	}
	flush()

	return chunks
}

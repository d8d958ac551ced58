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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

func fragment(text string, start, duration float64) model.CaptionFragment {
	return model.CaptionFragment{Text: text, StartSeconds: start, Duration: duration}
}

func TestChunkFragmentsSplitsOnFragmentBoundaries(t *testing.T) {
	fragments := []model.CaptionFragment{
		fragment(strings.Repeat("a", 40), 0, 5),
		fragment(strings.Repeat("b", 40), 5, 5),
		fragment(strings.Repeat("c", 40), 10, 5),
	}

	chunks := ChunkFragments(fragments, 90)
	require.Len(t, chunks, 2)

	// First chunk packs two fragments, third spills into its own chunk.
	assert.Equal(t, 0, chunks[0].StartSeconds)
	assert.Equal(t, 10, chunks[0].EndSeconds)
	assert.Equal(t, 10, chunks[1].StartSeconds)
	assert.Equal(t, 15, chunks[1].EndSeconds)
	assert.Equal(t, strings.Repeat("c", 40), chunks[1].Text)
}

func TestChunkFragmentsIsDeterministic(t *testing.T) {
	fragments := []model.CaptionFragment{
		fragment("head to the ruins", 0, 3),
		fragment("grab the golden seed", 3, 3),
		fragment("now the boss fight", 6, 4),
	}
	first := ChunkFragments(fragments, 25)
	second := ChunkFragments(fragments, 25)
	assert.Equal(t, first, second)
}

func TestChunkFragmentsDropsWhitespaceOnly(t *testing.T) {
	fragments := []model.CaptionFragment{
		fragment("   ", 0, 2),
		fragment("real text", 2, 2),
		fragment("\n\t", 4, 2),
	}
	chunks := ChunkFragments(fragments, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "real text", chunks[0].Text)
	assert.Equal(t, 2, chunks[0].StartSeconds)
	assert.Equal(t, 4, chunks[0].EndSeconds)
}

func TestChunkFragmentsOversizedFragment(t *testing.T) {
	// A single fragment over the budget still becomes one chunk.
	fragments := []model.CaptionFragment{
		fragment(strings.Repeat("x", 200), 0, 10),
		fragment("short", 10, 2),
	}
	chunks := ChunkFragments(fragments, 100)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0].Text, 200)
	assert.Equal(t, "short", chunks[1].Text)
}

func TestChunkFragmentsEmptyInput(t *testing.T) {
	assert.Empty(t, ChunkFragments(nil, 100))
	assert.Empty(t, ChunkFragments([]model.CaptionFragment{}, 100))
}

func TestChunkFragmentsFractionalTimesRoundOutward(t *testing.T) {
	fragments := []model.CaptionFragment{
		fragment("hello there", 1.4, 2.3),
	}
	chunks := ChunkFragments(fragments, 100)
	require.Len(t, chunks, 1)
	// Start floors, end ceils, so the window always covers the speech.
	assert.Equal(t, 1, chunks[0].StartSeconds)
	assert.Equal(t, 4, chunks[0].EndSeconds)
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

func proposal(segType string, start, end int) SegmentProposal {
	return SegmentProposal{
		Type:         segType,
		Label:        "segment",
		StartSeconds: start,
		EndSeconds:   end,
		Difficulty:   "medium",
	}
}

func TestAssembleSegmentsSortsAndNumbers(t *testing.T) {
	proposals := []SegmentProposal{
		proposal("combat", 300, 400),
		proposal("boss", 0, 120),
		proposal("puzzle", 120, 300),
	}

	segments := AssembleSegments(proposals, 600, 0)
	require.Len(t, segments, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{segments[0].Id, segments[1].Id, segments[2].Id})
	assert.Equal(t, model.SegmentTypeBoss, segments[0].Type)
	assert.Equal(t, 0, segments[0].StartSeconds)
	assert.Equal(t, model.SegmentTypeCombat, segments[2].Type)
}

func TestAssembleSegmentsTruncatesOverlap(t *testing.T) {
	proposals := []SegmentProposal{
		proposal("boss", 0, 200),
		proposal("combat", 150, 300),
	}

	segments := AssembleSegments(proposals, 600, 0)
	require.Len(t, segments, 2)
	// Later segment's start advances to the earlier one's end.
	assert.Equal(t, 200, segments[1].StartSeconds)
	assert.Equal(t, 300, segments[1].EndSeconds)
}

func TestAssembleSegmentsTruncatesSmallOverlap(t *testing.T) {
	proposals := []SegmentProposal{
		proposal("boss", 0, 200),
		proposal("combat", 197, 300),
	}

	// Even a small overlap is truncated away, never kept.
	segments := AssembleSegments(proposals, 600, 5)
	require.Len(t, segments, 2)
	assert.Equal(t, 200, segments[1].StartSeconds)
	assert.Equal(t, 300, segments[1].EndSeconds)
	assert.LessOrEqual(t, segments[0].EndSeconds, segments[1].StartSeconds)
}

func TestAssembleSegmentsDropsSliverLeftByTruncation(t *testing.T) {
	proposals := []SegmentProposal{
		proposal("boss", 0, 200),
		proposal("combat", 197, 204),
	}

	// After truncation the combat segment spans 200-204, within the
	// tolerance, so it is discarded as a duplicate proposal.
	segments := AssembleSegments(proposals, 600, 5)
	require.Len(t, segments, 1)
	assert.Equal(t, model.SegmentTypeBoss, segments[0].Type)
}

func TestAssembleSegmentsDropsEmptiedSegments(t *testing.T) {
	proposals := []SegmentProposal{
		proposal("boss", 0, 300),
		proposal("combat", 100, 250), // fully swallowed by the boss segment
		proposal("puzzle", 300, 400),
	}

	segments := AssembleSegments(proposals, 600, 0)
	require.Len(t, segments, 2)
	assert.Equal(t, model.SegmentTypeBoss, segments[0].Type)
	assert.Equal(t, model.SegmentTypePuzzle, segments[1].Type)
}

func TestAssembleSegmentsClampsToVideoDuration(t *testing.T) {
	proposals := []SegmentProposal{
		proposal("boss", -10, 50),
		proposal("combat", 500, 900),
	}

	segments := AssembleSegments(proposals, 600, 0)
	require.Len(t, segments, 2)
	assert.Equal(t, 0, segments[0].StartSeconds)
	assert.Equal(t, 600, segments[1].EndSeconds)
}

func TestAssembleSegmentsClearsDifficultyForNonChallengeTypes(t *testing.T) {
	proposals := []SegmentProposal{
		proposal("exploration", 0, 100),
		proposal("cutscene", 100, 150),
		proposal("boss", 150, 250),
	}

	segments := AssembleSegments(proposals, 600, 0)
	require.Len(t, segments, 3)
	assert.Empty(t, segments[0].Difficulty)
	assert.Empty(t, segments[1].Difficulty)
	assert.Equal(t, model.DifficultyMedium, segments[2].Difficulty)
}

func TestAssembleSegmentsTimeLabels(t *testing.T) {
	proposals := []SegmentProposal{
		proposal("boss", 90, 3725),
	}

	segments := AssembleSegments(proposals, 4000, 0)
	require.Len(t, segments, 1)
	assert.Equal(t, "1:30", segments[0].StartLabel)
	assert.Equal(t, "1:02:05", segments[0].EndLabel)
}

func TestNormalizeTags(t *testing.T) {
	tags := normalizeTags([]string{" Boss ", "boss", "MARGIT", "", "stormveil"})
	assert.Equal(t, []string{"boss", "margit", "stormveil"}, tags)
}

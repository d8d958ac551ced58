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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:59", FormatDuration(59))
	assert.Equal(t, "2:05", FormatDuration(125))
	assert.Equal(t, "59:59", FormatDuration(3599))
	assert.Equal(t, "1:00:00", FormatDuration(3600))
	assert.Equal(t, "2:03:04", FormatDuration(7384))
	assert.Equal(t, "0:00", FormatDuration(-5))
}

func TestSegmentTypeTakesDifficulty(t *testing.T) {
	assert.True(t, SegmentTypeBoss.TakesDifficulty())
	assert.True(t, SegmentTypePuzzle.TakesDifficulty())
	assert.True(t, SegmentTypeCombat.TakesDifficulty())
	assert.True(t, SegmentTypeTutorial.TakesDifficulty())
	assert.False(t, SegmentTypeExploration.TakesDifficulty())
	assert.False(t, SegmentTypeCollectible.TakesDifficulty())
	assert.False(t, SegmentTypeCutscene.TakesDifficulty())
}

func TestSegmentTypeIsValid(t *testing.T) {
	assert.True(t, SegmentType("boss").IsValid())
	assert.False(t, SegmentType("shopping").IsValid())
	assert.False(t, SegmentType("").IsValid())
}

func TestDifficultyIsValid(t *testing.T) {
	assert.True(t, Difficulty("very hard").IsValid())
	assert.True(t, DifficultyExtreme.IsValid())
	assert.False(t, Difficulty("impossible").IsValid())
}

func TestGuessGameFromTitle(t *testing.T) {
	assert.Equal(t, "Elden Ring", GuessGameFromTitle("Elden Ring - Full Walkthrough Part 1"))
	assert.Equal(t, "Hollow Knight", GuessGameFromTitle("Hollow Knight | 112% Completion Guide"))
	assert.Equal(t, "Dark Souls III", GuessGameFromTitle("Dark Souls III Walkthrough Episode 4"))
	assert.Equal(t, "Celeste", GuessGameFromTitle("Celeste Gameplay No Commentary"))
	// No separator: the whole title comes back unchanged.
	assert.Equal(t, "SpeedrunHighlights2024", GuessGameFromTitle("SpeedrunHighlights2024"))
}

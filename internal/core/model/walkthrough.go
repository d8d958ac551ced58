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

// Package model defines the core data structures for the application: the
// persisted walkthrough artifact with its segments and video metadata, the
// transient transcript types that only live for the duration of one analysis
// job, and the job records used by the polling API.
package model

import (
	"fmt"
	"strings"
)

// SegmentType classifies a span of gameplay within a walkthrough.
type SegmentType string

const (
	SegmentTypeBoss        SegmentType = "boss"
	SegmentTypePuzzle      SegmentType = "puzzle"
	SegmentTypeExploration SegmentType = "exploration"
	SegmentTypeCollectible SegmentType = "collectible"
	SegmentTypeCutscene    SegmentType = "cutscene"
	SegmentTypeCombat      SegmentType = "combat"
	SegmentTypeTutorial    SegmentType = "tutorial"
)

// IsValid reports whether the type is one of the fixed enumeration values.
func (t SegmentType) IsValid() bool {
	switch t {
	case SegmentTypeBoss, SegmentTypePuzzle, SegmentTypeExploration,
		SegmentTypeCollectible, SegmentTypeCutscene, SegmentTypeCombat,
		SegmentTypeTutorial:
		return true
	}
	return false
}

// TakesDifficulty reports whether segments of this type carry a difficulty
// rating. Exploration, collectible and cutscene segments never do.
func (t SegmentType) TakesDifficulty() bool {
	switch t {
	case SegmentTypeExploration, SegmentTypeCollectible, SegmentTypeCutscene:
		return false
	}
	return true
}

// Difficulty rates how challenging a segment is.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very hard"
	DifficultyExtreme  Difficulty = "extreme"
)

// IsValid reports whether the difficulty is one of the known ratings.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard, DifficultyExtreme:
		return true
	}
	return false
}

// CaptionFragment is a single raw caption line as returned by the transcript
// provider. Fragments are transient: they exist only between transcript fetch
// and chunking and are never persisted.
type CaptionFragment struct {
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	Duration     float64 `json:"duration"`
}

// TranscriptChunk is a bounded slice of transcript text with the time window
// it covers, sized to fit a single model call. Chunk boundaries always fall on
// fragment boundaries so the declared window exactly matches the text.
type TranscriptChunk struct {
	Text         string `json:"text"`
	StartSeconds int    `json:"start_seconds"`
	EndSeconds   int    `json:"end_seconds"`
}

// Segment is a labeled, time-bounded unit of gameplay within a walkthrough.
type Segment struct {
	Id           int         `json:"id"`                   // Sequential id, assigned after merge/sort. Unique within one walkthrough only.
	Type         SegmentType `json:"type"`                 // One of the fixed segment type enumeration.
	Label        string      `json:"label"`                // Short human label, e.g. "Boss: Margit the Fell Omen".
	StartSeconds int         `json:"start_seconds"`        // Inclusive start of the segment, seconds from video start.
	EndSeconds   int         `json:"end_seconds"`          // Exclusive end of the segment. Always > StartSeconds.
	StartLabel   string      `json:"start_label"`          // StartSeconds rendered as H:MM:SS or M:SS.
	EndLabel     string      `json:"end_label"`            // EndSeconds rendered as H:MM:SS or M:SS.
	Description  string      `json:"description"`          // Strategy notes extracted from the transcript.
	Tags         []string    `json:"tags"`                 // Lowercase searchable keywords.
	Difficulty   Difficulty  `json:"difficulty,omitempty"` // Empty for types that take no difficulty.
}

// VideoMetadata describes the analyzed video as reported by the metadata provider.
type VideoMetadata struct {
	VideoId         string `json:"video_id"`
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	DurationSeconds int    `json:"duration_seconds"`
	DurationLabel   string `json:"duration_label"`
	Platform        string `json:"platform"`
	ThumbnailUrl    string `json:"thumbnail_url,omitempty"`
	GameTitle       string `json:"game_title,omitempty"`
}

// Walkthrough is the finished, cached artifact produced by one successful
// analysis job. It is immutable once persisted except for access statistics.
type Walkthrough struct {
	Id            string        `json:"id"` // Id of the job that produced this walkthrough.
	Video         VideoMetadata `json:"video"`
	Segments      []Segment     `json:"segments"`
	Summary       string        `json:"summary"`
	TotalSegments int           `json:"total_segments"`
}

// WalkthroughSummary is the lightweight row shape served by the browse and
// search endpoints. It mirrors the cache table columns rather than the full
// serialized walkthrough.
type WalkthroughSummary struct {
	VideoId       string `json:"video_id"`
	JobId         string `json:"job_id"`
	VideoTitle    string `json:"video_title"`
	Channel       string `json:"channel"`
	GameTitle     string `json:"game_title"`
	DurationLabel string `json:"duration_label"`
	ThumbnailUrl  string `json:"thumbnail_url"`
	TotalSegments int    `json:"total_segments"`
	AccessCount   int64  `json:"access_count"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// FormatDuration renders a second count as H:MM:SS, or M:SS below one hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// GuessGameFromTitle attempts to extract a game name from a video title when
// the model did not report one. Walkthrough titles usually lead with the game
// name followed by a separator or a word like "walkthrough".
func GuessGameFromTitle(title string) string {
	separators := []string{" - ", " | ", " : ", " walkthrough", " gameplay", " full "}
	lower := strings.ToLower(title)
	for _, sep := range separators {
		if idx := strings.Index(lower, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return title
}

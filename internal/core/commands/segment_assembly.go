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
	"sort"
	"strings"

	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// SegmentAssembly merges the per-chunk segment proposals into the final
// ordered timeline and builds the walkthrough artifact. Assembly is entirely
// deterministic: given the same proposals it always yields the same timeline.
type SegmentAssembly struct {
	cor.BaseCommand
	overlapToleranceSeconds int
}

// NewSegmentAssembly is the constructor for the SegmentAssembly command.
func NewSegmentAssembly(name string, overlapToleranceSeconds int) *SegmentAssembly {
	return &SegmentAssembly{
		BaseCommand:             *cor.NewBaseCommand(name),
		overlapToleranceSeconds: overlapToleranceSeconds,
	}
}

// IsExecutable checks that the proposals, video metadata and job id are present.
func (c *SegmentAssembly) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(c.GetInputParam()) != nil &&
		context.Get(GetVideoMetadataParameterName()) != nil &&
		context.Get(GetJobIdParameterName()) != nil
}

// Execute builds the walkthrough from the validated proposals.
func (c *SegmentAssembly) Execute(context cor.Context) {
	proposals := context.Get(c.GetInputParam()).([]SegmentProposal)
	metadata := context.Get(GetVideoMetadataParameterName()).(*model.VideoMetadata)
	jobID := context.Get(GetJobIdParameterName()).(string)

	segments := AssembleSegments(proposals, metadata.DurationSeconds, c.overlapToleranceSeconds)

	if metadata.GameTitle == "" {
		metadata.GameTitle = model.GuessGameFromTitle(metadata.Title)
	}

	walkthrough := &model.Walkthrough{
		Id:            jobID,
		Video:         *metadata,
		Segments:      segments,
		TotalSegments: len(segments),
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), walkthrough)
}

// AssembleSegments turns raw proposals into the final ordered, non-overlapping
// timeline:
//
//  1. Proposals are sorted by start time (end time breaks ties).
//  2. Times are clamped to [0, videoDuration]. A zero duration means the
//     metadata provider did not report one, and clamping to it is skipped.
//  3. A segment overlapping its predecessor has its start advanced to the
//     predecessor's end, so the final timeline never overlaps. A truncated
//     segment left with no more than the tolerance of runtime is treated as
//     a duplicate proposal and dropped.
//  4. Difficulty is cleared on types that take none, and ids, time labels
//     are assigned in timeline order.
func AssembleSegments(proposals []SegmentProposal, videoDuration int, overlapToleranceSeconds int) []model.Segment {
	sorted := make([]SegmentProposal, len(proposals))
	copy(sorted, proposals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartSeconds != sorted[j].StartSeconds {
			return sorted[i].StartSeconds < sorted[j].StartSeconds
		}
		return sorted[i].EndSeconds < sorted[j].EndSeconds
	})

	segments := make([]model.Segment, 0, len(sorted))
	previousEnd := 0
	for _, p := range sorted {
		start, end := p.StartSeconds, p.EndSeconds
		if start < 0 {
			start = 0
		}
		if videoDuration > 0 && end > videoDuration {
			end = videoDuration
		}
		if len(segments) > 0 && start < previousEnd {
			start = previousEnd
			if end-start <= overlapToleranceSeconds {
				continue
			}
		}
		if end <= start {
			continue
		}

		segmentType := model.SegmentType(p.Type)
		difficulty := model.Difficulty(p.Difficulty)
		if !segmentType.TakesDifficulty() || !difficulty.IsValid() {
			difficulty = ""
		}

		segments = append(segments, model.Segment{
			Id:           len(segments) + 1,
			Type:         segmentType,
			Label:        strings.TrimSpace(p.Label),
			StartSeconds: start,
			EndSeconds:   end,
			StartLabel:   model.FormatDuration(start),
			EndLabel:     model.FormatDuration(end),
			Description:  strings.TrimSpace(p.Description),
			Tags:         normalizeTags(p.Tags),
			Difficulty:   difficulty,
		})
		previousEnd = end
	}
	return segments
}

// normalizeTags lowercases, trims and de-duplicates tags, preserving order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

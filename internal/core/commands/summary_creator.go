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
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// SummaryCreator asks the model for a short overview of the assembled
// walkthrough. Summarization is best-effort: a model failure falls back to a
// generated one-liner instead of failing a job whose segments are already
// complete.
type SummaryCreator struct {
	cor.BaseCommand
	generativeAIModel TextGenerator
	promptTemplate    *template.Template
}

// NewSummaryCreator is the constructor for the SummaryCreator command.
func NewSummaryCreator(name string, model TextGenerator, prompt *template.Template) *SummaryCreator {
	return &SummaryCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: model,
		promptTemplate:    prompt,
	}
}

// Execute fills in the walkthrough summary and pipes the walkthrough onward.
func (c *SummaryCreator) Execute(context cor.Context) {
	walkthrough := context.Get(c.GetInputParam()).(*model.Walkthrough)

	summary, err := c.generateSummary(context, walkthrough)
	if err != nil || strings.TrimSpace(summary) == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		summary = FallbackSummary(walkthrough)
	} else {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
	}

	walkthrough.Summary = strings.TrimSpace(summary)
	context.Add(c.GetOutputParam(), walkthrough)
}

func (c *SummaryCreator) generateSummary(context cor.Context, walkthrough *model.Walkthrough) (string, error) {
	var segmentList strings.Builder
	for _, segment := range walkthrough.Segments {
		fmt.Fprintf(&segmentList, "%s-%s [%s] %s\n", segment.StartLabel, segment.EndLabel, segment.Type, segment.Label)
	}

	vocabulary := make(map[string]string)
	vocabulary["VIDEO_TITLE"] = walkthrough.Video.Title
	vocabulary["GAME_TITLE"] = walkthrough.Video.GameTitle
	vocabulary["SEGMENT_LIST"] = segmentList.String()

	var doc bytes.Buffer
	if err := c.promptTemplate.Execute(&doc, vocabulary); err != nil {
		return "", err
	}
	return c.generativeAIModel.GenerateText(context.GetContext(), doc.String())
}

// FallbackSummary builds a deterministic overview from the segment labels,
// used when the model cannot produce one.
func FallbackSummary(walkthrough *model.Walkthrough) string {
	game := walkthrough.Video.GameTitle
	if game == "" {
		game = walkthrough.Video.Title
	}
	if len(walkthrough.Segments) == 0 {
		return fmt.Sprintf("Walkthrough of %s.", game)
	}

	labels := make([]string, 0, 3)
	for _, segment := range walkthrough.Segments {
		if segment.Type == model.SegmentTypeBoss || segment.Type == model.SegmentTypePuzzle {
			labels = append(labels, segment.Label)
		}
		if len(labels) == 3 {
			break
		}
	}
	if len(labels) == 0 {
		for i := 0; i < len(walkthrough.Segments) && i < 3; i++ {
			labels = append(labels, walkthrough.Segments[i].Label)
		}
	}
	return fmt.Sprintf("Walkthrough of %s in %d segments, including %s.",
		game, len(walkthrough.Segments), strings.Join(labels, ", "))
}

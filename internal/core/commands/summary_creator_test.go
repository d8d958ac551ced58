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
	goctx "context"
	"errors"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

func summaryTestWalkthrough() *model.Walkthrough {
	return &model.Walkthrough{
		Id: "ab12cd34",
		Video: model.VideoMetadata{
			VideoId:   "dQw4w9WgXcQ",
			Title:     "Elden Ring - Full Walkthrough",
			GameTitle: "Elden Ring",
		},
		Segments: []model.Segment{
			{Id: 1, Type: model.SegmentTypeExploration, Label: "Limgrave", StartLabel: "0:00", EndLabel: "10:00"},
			{Id: 2, Type: model.SegmentTypeBoss, Label: "Boss: Margit", StartLabel: "10:00", EndLabel: "18:00"},
		},
		TotalSegments: 2,
	}
}

func summaryTestContext(w *model.Walkthrough) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(goctx.Background())
	ctx.Add(cor.CtxIn, w)
	return ctx
}

func summaryTestTemplate(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.New("summary").Parse("summarize {{.GAME_TITLE}}:\n{{.SEGMENT_LIST}}")
	require.NoError(t, err)
	return tmpl
}

func TestSummaryCreatorUsesModelReply(t *testing.T) {
	gen := &fakeGenerator{respond: func(_ int, prompt string) (string, error) {
		assert.Contains(t, prompt, "Elden Ring")
		assert.Contains(t, prompt, "Boss: Margit")
		return "A tight two-part opening covering Limgrave and the Margit fight.", nil
	}}

	w := summaryTestWalkthrough()
	ctx := summaryTestContext(w)
	NewSummaryCreator("test-summary", gen, summaryTestTemplate(t)).Execute(ctx)

	require.False(t, ctx.HasErrors())
	assert.Equal(t, "A tight two-part opening covering Limgrave and the Margit fight.", w.Summary)
}

func TestSummaryCreatorFallsBackOnModelFailure(t *testing.T) {
	gen := &fakeGenerator{respond: func(int, string) (string, error) {
		return "", errors.New("quota exhausted")
	}}

	w := summaryTestWalkthrough()
	ctx := summaryTestContext(w)
	NewSummaryCreator("test-summary", gen, summaryTestTemplate(t)).Execute(ctx)

	// Summarization never fails the job.
	require.False(t, ctx.HasErrors())
	assert.Contains(t, w.Summary, "Elden Ring")
	assert.Contains(t, w.Summary, "2 segments")
}

func TestFallbackSummaryPrefersBossAndPuzzleLabels(t *testing.T) {
	w := summaryTestWalkthrough()
	summary := FallbackSummary(w)
	assert.Contains(t, summary, "Boss: Margit")

	w.Segments = nil
	assert.Equal(t, "Walkthrough of Elden Ring.", FallbackSummary(w))
}

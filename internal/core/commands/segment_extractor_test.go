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
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// fakeGenerator answers prompts with a canned function. Safe for concurrent
// use because the extractor calls it from worker goroutines.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	respond func(call int, prompt string) (string, error)
}

func (f *fakeGenerator) GenerateText(_ goctx.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.respond(call, prompt)
}

func extractorTestTemplate(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.New("segment").Parse("window {{.TIME_START}}-{{.TIME_END}}: {{.CHUNK_TEXT}}")
	require.NoError(t, err)
	return tmpl
}

func extractorTestContext(chunks []model.TranscriptChunk) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(goctx.Background())
	ctx.Add(cor.CtxIn, chunks)
	ctx.Add(GetVideoMetadataParameterName(), &model.VideoMetadata{
		VideoId:         "dQw4w9WgXcQ",
		Title:           "Elden Ring - Full Walkthrough",
		GameTitle:       "Elden Ring",
		DurationSeconds: 1200,
	})
	return ctx
}

func proposalsJSON(t *testing.T, proposals []SegmentProposal) string {
	t.Helper()
	out, err := json.Marshal(proposals)
	require.NoError(t, err)
	return string(out)
}

func TestSegmentExtractorCollectsProposals(t *testing.T) {
	chunks := []model.TranscriptChunk{
		{Text: "first part", StartSeconds: 0, EndSeconds: 600},
		{Text: "second part", StartSeconds: 600, EndSeconds: 1200},
	}
	reply := proposalsJSON(t, []SegmentProposal{
		{Type: "boss", Label: "Boss: Margit", StartSeconds: 100, EndSeconds: 400, Difficulty: "hard"},
	})
	gen := &fakeGenerator{respond: func(int, string) (string, error) { return reply, nil }}

	cmd := NewSegmentExtractor("test-extractor", gen, extractorTestTemplate(t), 2, 0)
	ctx := extractorTestContext(chunks)
	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	proposals := ctx.Get(cmd.GetOutputParam()).([]SegmentProposal)
	assert.Len(t, proposals, 2) // one proposal per chunk
}

func TestSegmentExtractorCoercesUnknownTypes(t *testing.T) {
	chunks := []model.TranscriptChunk{{Text: "a chunk", StartSeconds: 0, EndSeconds: 600}}
	reply := proposalsJSON(t, []SegmentProposal{
		{Type: "shopping", Label: "Buying arrows", StartSeconds: 10, EndSeconds: 60, Difficulty: "medium"},
	})
	gen := &fakeGenerator{respond: func(int, string) (string, error) { return reply, nil }}

	cmd := NewSegmentExtractor("test-extractor", gen, extractorTestTemplate(t), 1, 0)
	ctx := extractorTestContext(chunks)
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	proposals := ctx.Get(cmd.GetOutputParam()).([]SegmentProposal)
	require.Len(t, proposals, 1)
	assert.Equal(t, string(model.SegmentTypeExploration), proposals[0].Type)
}

func TestSegmentExtractorRejectsOutOfWindowProposals(t *testing.T) {
	chunks := []model.TranscriptChunk{{Text: "a chunk", StartSeconds: 0, EndSeconds: 600}}
	reply := proposalsJSON(t, []SegmentProposal{
		{Type: "boss", Label: "inside", StartSeconds: 10, EndSeconds: 590},
		{Type: "boss", Label: "outside", StartSeconds: 700, EndSeconds: 900},
		{Type: "boss", Label: "inverted", StartSeconds: 100, EndSeconds: 100},
	})
	gen := &fakeGenerator{respond: func(int, string) (string, error) { return reply, nil }}

	cmd := NewSegmentExtractor("test-extractor", gen, extractorTestTemplate(t), 1, 5)
	ctx := extractorTestContext(chunks)
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	proposals := ctx.Get(cmd.GetOutputParam()).([]SegmentProposal)
	require.Len(t, proposals, 1)
	assert.Equal(t, "inside", proposals[0].Label)
}

func TestSegmentExtractorSkipsMalformedChunks(t *testing.T) {
	chunks := []model.TranscriptChunk{
		{Text: "good chunk", StartSeconds: 0, EndSeconds: 600},
		{Text: "bad chunk", StartSeconds: 600, EndSeconds: 1200},
	}
	good := proposalsJSON(t, []SegmentProposal{
		{Type: "puzzle", Label: "Lever puzzle", StartSeconds: 30, EndSeconds: 120},
	})
	gen := &fakeGenerator{respond: func(call int, _ string) (string, error) {
		if call == 1 {
			return good, nil
		}
		return "definitely not json", nil
	}}

	cmd := NewSegmentExtractor("test-extractor", gen, extractorTestTemplate(t), 1, 0)
	ctx := extractorTestContext(chunks)
	cmd.Execute(ctx)

	// A partial walkthrough is still a success.
	require.False(t, ctx.HasErrors())
	proposals := ctx.Get(cmd.GetOutputParam()).([]SegmentProposal)
	assert.Len(t, proposals, 1)
}

func TestSegmentExtractorFailsWhenAllChunksMalformed(t *testing.T) {
	chunks := []model.TranscriptChunk{
		{Text: "chunk one", StartSeconds: 0, EndSeconds: 600},
		{Text: "chunk two", StartSeconds: 600, EndSeconds: 1200},
	}
	gen := &fakeGenerator{respond: func(int, string) (string, error) { return "garbage", nil }}

	cmd := NewSegmentExtractor("test-extractor", gen, extractorTestTemplate(t), 2, 0)
	ctx := extractorTestContext(chunks)
	cmd.Execute(ctx)

	require.True(t, ctx.HasErrors())
	assert.ErrorIs(t, ctx.FirstError(), model.ErrProviderMalformedOutput)
}

func TestSegmentExtractorFailsWhenProviderDown(t *testing.T) {
	chunks := []model.TranscriptChunk{{Text: "a chunk", StartSeconds: 0, EndSeconds: 600}}
	gen := &fakeGenerator{respond: func(int, string) (string, error) {
		return "", errors.New("connection refused")
	}}

	cmd := NewSegmentExtractor("test-extractor", gen, extractorTestTemplate(t), 1, 0)
	ctx := extractorTestContext(chunks)
	cmd.Execute(ctx)

	require.True(t, ctx.HasErrors())
	assert.ErrorIs(t, ctx.FirstError(), model.ErrProviderUnavailable)
}

func TestSegmentExtractorReportsProgressWithinBand(t *testing.T) {
	chunks := []model.TranscriptChunk{
		{Text: "one", StartSeconds: 0, EndSeconds: 300},
		{Text: "two", StartSeconds: 300, EndSeconds: 600},
		{Text: "three", StartSeconds: 600, EndSeconds: 900},
	}
	reply := proposalsJSON(t, []SegmentProposal{
		{Type: "combat", Label: "fight", StartSeconds: 10, EndSeconds: 60},
	})
	gen := &fakeGenerator{respond: func(int, string) (string, error) { return reply, nil }}

	var mu sync.Mutex
	milestones := make([]int, 0)
	ctx := extractorTestContext(chunks)
	ctx.SetProgressFunc(func(progress int, _ string) {
		mu.Lock()
		milestones = append(milestones, progress)
		mu.Unlock()
	})

	cmd := NewSegmentExtractor("test-extractor", gen, extractorTestTemplate(t), 2, 0)
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	for _, m := range milestones {
		assert.GreaterOrEqual(t, m, 50)
		assert.LessOrEqual(t, m, 90)
	}
	assert.Equal(t, 90, milestones[len(milestones)-1])
}

func TestParseProposalsAcceptsWrappedAndFencedReplies(t *testing.T) {
	fenced := "```json\n[{\"type\": \"boss\", \"label\": \"B\", \"start_seconds\": 0, \"end_seconds\": 10}]\n```"
	proposals, err := parseProposals(fenced)
	require.NoError(t, err)
	assert.Len(t, proposals, 1)

	wrapped := `{"segments": [{"type": "puzzle", "label": "P", "start_seconds": 5, "end_seconds": 25}]}`
	proposals, err = parseProposals(wrapped)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "puzzle", proposals[0].Type)

	_, err = parseProposals("")
	assert.Error(t, err)
}

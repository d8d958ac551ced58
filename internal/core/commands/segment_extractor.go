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

// This file defines the command that proposes gameplay segments for each
// transcript chunk. It is the performance-critical stage of the pipeline.
//
// Logic Flow:
//  1. It receives the transcript chunks from the context.
//  2. A worker pool (goroutines fed by a jobs channel) sends each chunk to
//     the generative model in parallel, with its own prompt rendered from the
//     prompt template.
//  3. Each worker parses the model's JSON reply into segment proposals and
//     validates them against the chunk's time window. Proposals with an
//     unknown type are coerced to exploration rather than dropped.
//  4. A chunk whose reply cannot be parsed is skipped; the pipeline only
//     fails when every chunk fails, because a partial walkthrough is still
//     useful.
//  5. The surviving proposals from all chunks are collected into one slice
//     for the assembly command.
package commands

import (
	"bytes"
	goctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"text/template"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/walkgen-ai/walkgen-go/internal/cloud"
	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// SegmentProposal is the wire shape of one segment as proposed by the model
// for a single transcript chunk. Proposals are merged and renumbered during
// assembly, so they carry no id.
type SegmentProposal struct {
	Type         string   `json:"type"`
	Label        string   `json:"label"`
	StartSeconds int      `json:"start_seconds"`
	EndSeconds   int      `json:"end_seconds"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// SegmentExtractor runs the per-chunk model calls in parallel and collects
// the validated segment proposals.
type SegmentExtractor struct {
	cor.BaseCommand
	generativeAIModel      TextGenerator      // The rate-limited generative model client.
	promptTemplate         *template.Template // The Go template for the per-chunk prompt.
	numberOfWorkers        int                // The number of concurrent workers to spawn.
	windowToleranceSeconds int                // Allowed drift of a proposal outside its chunk window.
}

// NewSegmentExtractor is the constructor for the SegmentExtractor command.
//
// Inputs:
//   - name: a string name for this command instance.
//   - model: the client for the generative AI model.
//   - prompt: the parsed Go template for the per-chunk prompt.
//   - numberOfWorkers: the size of the worker pool.
//   - windowToleranceSeconds: seconds a proposal may drift outside its chunk
//     window before it is rejected.
//
// Outputs:
//   - *SegmentExtractor: a pointer to the newly instantiated command.
func NewSegmentExtractor(
	name string,
	model TextGenerator,
	prompt *template.Template,
	numberOfWorkers int,
	windowToleranceSeconds int) *SegmentExtractor {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &SegmentExtractor{
		BaseCommand:            *cor.NewBaseCommand(name),
		generativeAIModel:      model,
		promptTemplate:         prompt,
		numberOfWorkers:        numberOfWorkers,
		windowToleranceSeconds: windowToleranceSeconds,
	}
}

// IsExecutable checks that the transcript chunks and video metadata are present.
func (s *SegmentExtractor) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(s.GetInputParam()) != nil &&
		context.Get(GetVideoMetadataParameterName()) != nil
}

// Execute orchestrates the parallel per-chunk extraction.
func (s *SegmentExtractor) Execute(context cor.Context) {
	chunks := context.Get(s.GetInputParam()).([]model.TranscriptChunk)
	metadata := context.Get(GetVideoMetadataParameterName()).(*model.VideoMetadata)

	exampleJson, _ := json.Marshal(model.GetExampleSegment())
	exampleText := string(exampleJson)

	context.ReportProgress(50, "Analyzing gameplay")

	var wg sync.WaitGroup
	jobs := make(chan *ChunkJob, len(chunks))
	results := make(chan *ChunkResult, len(chunks))

	// Progress milestones walk from 50 to 90 as chunks complete. Workers
	// report concurrently, so completion is tracked with an atomic counter.
	var completed atomic.Int64
	total := len(chunks)
	onChunkDone := func() {
		done := completed.Add(1)
		progress := 50 + int(40*done/int64(total))
		context.ReportProgress(progress, fmt.Sprintf("Analyzing gameplay (%d/%d)", done, total))
	}

	for w := 1; w <= s.numberOfWorkers; w++ {
		wg.Add(1)
		go chunkWorker(jobs, results, &wg, onChunkDone)
	}

	for i, chunk := range chunks {
		jobs <- s.createChunkJob(context.GetContext(), i, chunk, metadata, exampleText)
	}
	close(jobs)

	wg.Wait()
	close(results)

	proposals := make([]SegmentProposal, 0, len(chunks)*4)
	failures := 0
	var lastProviderErr error
	var lastParseErr error
	for r := range results {
		if r.err != nil {
			failures++
			if r.parseFailure {
				lastParseErr = r.err
			} else {
				lastProviderErr = r.err
			}
			continue
		}
		proposals = append(proposals, r.proposals...)
	}

	// Individual chunk failures degrade the result. Total failure kills the job.
	if failures == total {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		if lastProviderErr != nil {
			context.AddError(s.GetName(), fmt.Errorf("%w: %v", model.ErrProviderUnavailable, lastProviderErr))
		} else {
			context.AddError(s.GetName(), fmt.Errorf("%w: %v", model.ErrProviderMalformedOutput, lastParseErr))
		}
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.ReportProgress(90, "Assembling walkthrough")
	context.Add(s.GetOutputParam(), proposals)
}

// ChunkResult carries one chunk's proposals or its failure back from a worker.
type ChunkResult struct {
	proposals    []SegmentProposal
	err          error
	parseFailure bool // true when the model answered but the reply was unusable
}

// ChunkJob encapsulates everything one worker needs to process a single chunk.
type ChunkJob struct {
	sequence  int
	ctx       goctx.Context
	span      trace.Span
	prompt    string
	chunk     model.TranscriptChunk
	model     TextGenerator
	validate  func([]SegmentProposal, model.TranscriptChunk) []SegmentProposal
	renderErr error
}

// Close ends the OpenTelemetry span associated with this job.
func (j *ChunkJob) Close(status codes.Code, description string) {
	j.span.SetStatus(status, description)
	j.span.End()
}

func (s *SegmentExtractor) createChunkJob(
	ctx goctx.Context,
	sequence int,
	chunk model.TranscriptChunk,
	metadata *model.VideoMetadata,
	exampleText string) *ChunkJob {
	chunkCtx, chunkSpan := s.Tracer.Start(ctx, fmt.Sprintf("%s_genai_chunk_%d", s.GetName(), sequence))
	chunkSpan.SetAttributes(
		attribute.Int("sequence", sequence),
		attribute.Int("start_seconds", chunk.StartSeconds),
		attribute.Int("end_seconds", chunk.EndSeconds),
	)

	vocabulary := make(map[string]string)
	vocabulary["VIDEO_TITLE"] = metadata.Title
	vocabulary["GAME_TITLE"] = metadata.GameTitle
	vocabulary["TIME_START"] = fmt.Sprintf("%d", chunk.StartSeconds)
	vocabulary["TIME_END"] = fmt.Sprintf("%d", chunk.EndSeconds)
	vocabulary["CHUNK_TEXT"] = chunk.Text
	vocabulary["EXAMPLE_JSON"] = exampleText

	var doc bytes.Buffer
	if err := s.promptTemplate.Execute(&doc, vocabulary); err != nil {
		return &ChunkJob{renderErr: err, span: chunkSpan}
	}

	return &ChunkJob{
		sequence: sequence,
		ctx:      chunkCtx,
		span:     chunkSpan,
		prompt:   doc.String(),
		chunk:    chunk,
		model:    s.generativeAIModel,
		validate: s.validateProposals,
	}
}

// validateProposals filters one chunk's proposals: proposals that drift
// outside the chunk's time window beyond the tolerance, or that have an empty
// time range, are dropped. Unknown types are coerced to exploration and
// unknown difficulties are cleared; assembly applies the remaining rules.
func (s *SegmentExtractor) validateProposals(proposals []SegmentProposal, chunk model.TranscriptChunk) []SegmentProposal {
	out := make([]SegmentProposal, 0, len(proposals))
	windowStart := chunk.StartSeconds - s.windowToleranceSeconds
	windowEnd := chunk.EndSeconds + s.windowToleranceSeconds
	for _, p := range proposals {
		if p.EndSeconds <= p.StartSeconds {
			continue
		}
		if p.StartSeconds < windowStart || p.EndSeconds > windowEnd {
			continue
		}
		if !model.SegmentType(p.Type).IsValid() {
			p.Type = string(model.SegmentTypeExploration)
		}
		if p.Difficulty != "" && !model.Difficulty(p.Difficulty).IsValid() {
			p.Difficulty = ""
		}
		out = append(out, p)
	}
	return out
}

// chunkWorker is the function each concurrent goroutine runs. It pulls jobs
// until the channel closes, calling the model and parsing the reply.
func chunkWorker(jobs <-chan *ChunkJob, results chan<- *ChunkResult, wg *sync.WaitGroup, onDone func()) {
	defer wg.Done()

	for j := range jobs {
		if j.renderErr != nil {
			j.Close(codes.Error, "prompt render failed")
			results <- &ChunkResult{err: j.renderErr, parseFailure: true}
			onDone()
			continue
		}

		out, err := j.model.GenerateText(j.ctx, j.prompt)
		if err != nil {
			j.Close(codes.Error, "chunk extract failed")
			results <- &ChunkResult{err: err}
			onDone()
			continue
		}

		proposals, err := parseProposals(out)
		if err != nil {
			j.Close(codes.Error, "chunk parse failed")
			results <- &ChunkResult{err: fmt.Errorf("chunk %d: %w", j.sequence, err), parseFailure: true}
			onDone()
			continue
		}

		results <- &ChunkResult{proposals: j.validate(proposals, j.chunk)}
		j.Close(codes.Ok, "completed chunk")
		onDone()
	}
}

// parseProposals decodes the model reply. The prompt asks for a bare JSON
// array, but models sometimes wrap it in an object or markdown fences, so the
// parser accepts both shapes.
func parseProposals(raw string) ([]SegmentProposal, error) {
	cleaned := cloud.StripCodeFences(raw)
	if cleaned == "" {
		return nil, errors.New("empty model reply")
	}

	var proposals []SegmentProposal
	if err := json.Unmarshal([]byte(cleaned), &proposals); err == nil {
		return proposals, nil
	}

	var wrapped struct {
		Segments []SegmentProposal `json:"segments"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, fmt.Errorf("decode segment proposals: %w", err)
	}
	return wrapped.Segments, nil
}

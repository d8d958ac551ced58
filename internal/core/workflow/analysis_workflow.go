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

// Package workflow defines the high-level business logic orchestrations,
// combining individual commands into coherent pipelines. This file implements
// the walkthrough analysis workflow.
package workflow

import (
	"text/template"

	"github.com/walkgen-ai/walkgen-go/internal/cloud"
	"github.com/walkgen-ai/walkgen-go/internal/core/commands"
	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
)

// AnalysisWorkflow orchestrates the entire process of turning one video into
// a finished walkthrough. It is structured as a Chain of Responsibility
// (cor.Chain) that pipes each command's output into the next: metadata fetch,
// transcript fetch, chunking, parallel segment extraction, assembly,
// summarization and persistence.
//
// The workflow is triggered by the job manager when a cache miss occurs for a
// requested video.
type AnalysisWorkflow struct {
	cor.BaseCommand
	config          *cloud.Config
	metadata        commands.MetadataProvider
	transcripts     commands.TranscriptProvider
	segmentModel    commands.TextGenerator
	summaryModel    commands.TextGenerator
	cache           commands.WalkthroughWriter
	numberOfWorkers int
	segmentTemplate *template.Template
	summaryTemplate *template.Template
	chain           cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire analysis workflow by invoking the underlying chain.
// The context must carry the video id and job id parameters; the finished
// *model.Walkthrough ends up under cor.CtxOut.
func (w *AnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)

	// The chain's final flip-flop moves the last command's output into CtxIn.
	// Surface it back under CtxOut so the workflow behaves like any command.
	if out := context.Get(cor.CtxIn); out != nil && !context.HasErrors() {
		context.Add(cor.CtxOut, out)
	}
}

// IsExecutable checks that the context carries the video id and the job id.
func (w *AnalysisWorkflow) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(commands.GetVideoIdParameterName()) != nil &&
		context.Get(commands.GetJobIdParameterName()) != nil
}

// initializeChain builds the sequence of commands that make up this workflow.
func (w *AnalysisWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Resolve the video id into title, channel, duration and thumbnail.
	out.AddCommand(commands.NewMetadataFetch("fetch-video-metadata", w.metadata))

	// Step 2: Download the caption track. No captions fails the job here,
	// before any model quota is spent.
	out.AddCommand(commands.NewTranscriptFetch("fetch-video-transcript", w.transcripts))

	// Step 3: Pack the caption fragments into chunks sized for one model call
	// each, splitting only on fragment boundaries.
	out.AddCommand(commands.NewTranscriptNormalize("normalize-transcript", w.config.Analysis.ChunkSizeChars))

	// Step 4: Propose segments for every chunk in parallel with a worker
	// pool. Individual chunk failures degrade the result; only total failure
	// stops the chain.
	out.AddCommand(commands.NewSegmentExtractor(
		"extract-gameplay-segments",
		w.segmentModel,
		w.segmentTemplate,
		w.numberOfWorkers,
		w.config.Analysis.WindowToleranceSeconds))

	// Step 5: Merge the proposals into the final ordered timeline and build
	// the walkthrough artifact.
	out.AddCommand(commands.NewSegmentAssembly("assemble-walkthrough", w.config.Analysis.OverlapToleranceSeconds))

	// Step 6: Ask the model for a short overview. Best-effort: falls back to
	// a generated one-liner rather than failing a finished walkthrough.
	out.AddCommand(commands.NewSummaryCreator("summarize-walkthrough", w.summaryModel, w.summaryTemplate))

	// Step 7: Write the finished walkthrough to the durable cache.
	out.AddCommand(commands.NewWalkthroughPersist("persist-walkthrough", w.cache))

	w.chain = out
}

// NewAnalysisWorkflow is the constructor for the AnalysisWorkflow. It compiles
// the prompt templates and initializes the command chain.
//
// Inputs:
//   - config: the application's overall configuration.
//   - metadata: the video metadata provider.
//   - transcripts: the caption track provider.
//   - segmentModel: the rate-limited model used for per-chunk extraction.
//   - summaryModel: the model used for the final plain-text overview.
//   - cache: the walkthrough persistence surface.
//
// Outputs:
//   - *AnalysisWorkflow: a fully initialized workflow.
func NewAnalysisWorkflow(
	config *cloud.Config,
	metadata commands.MetadataProvider,
	transcripts commands.TranscriptProvider,
	segmentModel commands.TextGenerator,
	summaryModel commands.TextGenerator,
	cache commands.WalkthroughWriter) *AnalysisWorkflow {

	segmentTemplate, err := template.New("segment-template").Parse(config.PromptTemplates.SegmentPrompt)
	if err != nil {
		panic(err) // The app cannot run without valid templates.
	}
	summaryTemplate, err := template.New("summary-template").Parse(config.PromptTemplates.SummaryPrompt)
	if err != nil {
		panic(err)
	}

	workers := config.Application.ThreadPoolSize
	if workers < 1 {
		workers = 1
	}

	pipeline := &AnalysisWorkflow{
		BaseCommand:     *cor.NewBaseCommand("walkthrough-analysis-pipeline"),
		config:          config,
		metadata:        metadata,
		transcripts:     transcripts,
		segmentModel:    segmentModel,
		summaryModel:    summaryModel,
		cache:           cache,
		numberOfWorkers: workers,
		segmentTemplate: segmentTemplate,
		summaryTemplate: summaryTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}

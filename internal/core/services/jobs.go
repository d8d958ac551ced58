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

package services

import (
	goctx "context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walkgen-ai/walkgen-go/internal/core/commands"
	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
	"github.com/walkgen-ai/walkgen-go/internal/youtube"
)

// JobManager tracks analysis jobs from submission to completion. Jobs are
// in-memory only: the durable artifact is the cached walkthrough, and a job
// record exists just long enough for the client to poll it.
//
// Concurrency model: at most one job runs per video at a time. A second
// request for a video with a live job joins that job instead of starting a
// duplicate pipeline.
type JobManager struct {
	mu        sync.Mutex
	jobs      map[string]*model.Job // by job id
	inFlight  map[string]string     // video id -> live job id
	store     *Store
	pipeline  cor.Executable
	retention time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewJobManager is the constructor for the JobManager. It starts the janitor
// goroutine that reaps terminal jobs older than the retention window; call
// Close to stop it.
//
// Inputs:
//   - store: the walkthrough cache, consulted before any job is created.
//   - pipeline: the analysis workflow run for cache misses.
//   - retention: how long terminal jobs stay pollable.
//
// Outputs:
//   - *JobManager: the running manager.
func NewJobManager(store *Store, pipeline cor.Executable, retention time.Duration) *JobManager {
	if retention <= 0 {
		retention = 30 * time.Minute
	}
	m := &JobManager{
		jobs:      make(map[string]*model.Job),
		inFlight:  make(map[string]string),
		store:     store,
		pipeline:  pipeline,
		retention: retention,
		done:      make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Close stops the janitor goroutine. Running pipelines finish on their own.
func (m *JobManager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// StartAnalysis resolves a video reference and either serves the cached
// walkthrough, joins the live job for that video, or starts a new analysis.
//
// Inputs:
//   - ctx: the request context, used for the cache lookup only. The pipeline
//     itself runs on a background context so it outlives the HTTP request.
//   - reference: a YouTube URL or bare video id.
//
// Outputs:
//   - *model.AnalyzeResponse: the job id and its current status.
//   - error: ErrInvalidVideoReference when no video id can be extracted.
func (m *JobManager) StartAnalysis(ctx goctx.Context, reference string) (*model.AnalyzeResponse, error) {
	videoID := youtube.ExtractVideoID(reference)
	if videoID == "" {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidVideoReference, reference)
	}

	// Cache hit: answer with an already-complete job, no pipeline run.
	if cached, err := m.store.Get(ctx, videoID); err != nil {
		slog.Warn("cache lookup failed, re-analyzing", "video_id", videoID, "error", err)
	} else if cached != nil {
		job := m.completeJobFromCache(videoID, cached)
		return &model.AnalyzeResponse{JobId: job.Id, Status: job.Status, Message: job.Message}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Join the live job when one exists for this video.
	if jobID, ok := m.inFlight[videoID]; ok {
		if job, ok := m.jobs[jobID]; ok && !job.Status.IsTerminal() {
			return &model.AnalyzeResponse{JobId: job.Id, Status: job.Status, Message: "Analysis already in progress"}, nil
		}
	}

	now := time.Now().UTC()
	job := &model.Job{
		Id:        uuid.NewString()[:8],
		VideoId:   videoID,
		Status:    model.JobStatusPending,
		Progress:  0,
		Message:   "Analysis queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.jobs[job.Id] = job
	m.inFlight[videoID] = job.Id

	go m.runPipeline(job.Id, videoID)

	return &model.AnalyzeResponse{JobId: job.Id, Status: job.Status, Message: job.Message}, nil
}

// GetStatus returns a snapshot of a job's progress.
func (m *JobManager) GetStatus(jobID string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrJobNotFound, jobID)
	}
	snapshot := *job
	return &snapshot, nil
}

// GetWalkthrough returns the finished walkthrough of a complete job.
//
// Outputs:
//   - *model.Walkthrough: the artifact, when the job completed.
//   - error: ErrJobNotFound for unknown ids, ErrNotReady while the job is
//     still running, or the job's own failure once it errored.
func (m *JobManager) GetWalkthrough(jobID string) (*model.Walkthrough, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrJobNotFound, jobID)
	}
	switch job.Status {
	case model.JobStatusComplete:
		return job.Walkthrough, nil
	case model.JobStatusError:
		return nil, fmt.Errorf("analysis failed: %s", job.Error)
	default:
		return nil, fmt.Errorf("%w: job %s is %s", model.ErrNotReady, jobID, job.Status)
	}
}

// completeJobFromCache registers a synthetic, already-complete job pointing
// at the cached walkthrough, so cache hits and fresh analyses share one
// polling flow on the client.
func (m *JobManager) completeJobFromCache(videoID string, cached *model.Walkthrough) *model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	job := &model.Job{
		Id:          uuid.NewString()[:8],
		VideoId:     videoID,
		Status:      model.JobStatusComplete,
		Progress:    100,
		Message:     "Retrieved from cache",
		Walkthrough: cached,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.jobs[job.Id] = job
	return job
}

// runPipeline executes the analysis workflow for one job on a background
// goroutine and records the outcome on the job record.
func (m *JobManager) runPipeline(jobID, videoID string) {
	defer func() {
		m.mu.Lock()
		if m.inFlight[videoID] == jobID {
			delete(m.inFlight, videoID)
		}
		m.mu.Unlock()
	}()

	m.updateJob(jobID, func(job *model.Job) {
		job.Status = model.JobStatusFetching
		job.Progress = 5
		job.Message = "Starting analysis"
	})

	ctx := cor.NewBaseContext()
	ctx.SetContext(goctx.Background())
	ctx.Add(commands.GetVideoIdParameterName(), videoID)
	ctx.Add(commands.GetJobIdParameterName(), jobID)
	ctx.Add(cor.CtxIn, videoID)
	ctx.SetProgressFunc(func(progress int, message string) {
		m.updateJob(jobID, func(job *model.Job) {
			if progress >= 50 && job.Status == model.JobStatusFetching {
				job.Status = model.JobStatusAnalyzing
			}
			if progress > job.Progress {
				job.Progress = progress
			}
			job.Message = message
		})
	})

	m.pipeline.Execute(ctx)

	if ctx.HasErrors() {
		err := ctx.FirstError()
		slog.Error("analysis failed", "job_id", jobID, "video_id", videoID, "error", err)
		m.updateJob(jobID, func(job *model.Job) {
			job.Status = model.JobStatusError
			job.Error = err.Error()
			job.Message = "Analysis failed"
		})
		return
	}

	walkthrough, ok := ctx.Get(cor.CtxOut).(*model.Walkthrough)
	if !ok {
		m.updateJob(jobID, func(job *model.Job) {
			job.Status = model.JobStatusError
			job.Error = "pipeline produced no walkthrough"
			job.Message = "Analysis failed"
		})
		return
	}

	slog.Info("analysis complete", "job_id", jobID, "video_id", videoID, "segments", walkthrough.TotalSegments)
	m.updateJob(jobID, func(job *model.Job) {
		job.Status = model.JobStatusComplete
		job.Progress = 100
		job.Message = "Analysis complete"
		job.Walkthrough = walkthrough
	})
}

func (m *JobManager) updateJob(jobID string, mutate func(job *model.Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		mutate(job)
		job.UpdatedAt = time.Now().UTC()
	}
}

// janitor reaps terminal jobs whose retention window has expired.
func (m *JobManager) janitor() {
	interval := m.retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.reapExpired(time.Now().UTC())
		}
	}
}

func (m *JobManager) reapExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, job := range m.jobs {
		if job.Status.IsTerminal() && now.Sub(job.UpdatedAt) > m.retention {
			delete(m.jobs, id)
		}
	}
}

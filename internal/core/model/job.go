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

import "time"

// JobStatus is the lifecycle stage of an analysis job. Transitions are
// pending -> fetching -> analyzing -> complete, with error reachable from
// fetching or analyzing. Complete and error are terminal.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusFetching  JobStatus = "fetching"
	JobStatusAnalyzing JobStatus = "analyzing"
	JobStatusComplete  JobStatus = "complete"
	JobStatusError     JobStatus = "error"
)

// IsTerminal reports whether the status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusComplete || s == JobStatusError
}

// Job is the tracked, pollable unit of work representing one analysis run.
// Job records are owned exclusively by the job manager for their lifetime and
// are reaped after a retention window once terminal; the cached walkthrough
// outlives them.
type Job struct {
	Id          string       `json:"job_id"`
	VideoId     string       `json:"video_id"`
	Status      JobStatus    `json:"status"`
	Progress    int          `json:"progress"` // 0-100, coarse milestones.
	Message     string       `json:"message"`
	Walkthrough *Walkthrough `json:"walkthrough,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// AnalyzeResponse is the body returned by POST /api/analyze.
type AnalyzeResponse struct {
	JobId   string    `json:"job_id"`
	Status  JobStatus `json:"status"`
	Message string    `json:"message"`
}

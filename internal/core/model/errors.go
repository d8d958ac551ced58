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

import "errors"

// Sentinel errors for the analysis pipeline and job manager. Handlers map
// these to HTTP status codes; pipeline stages wrap them with %w so callers
// can classify failures with errors.Is without parsing messages.
var (
	// ErrInvalidVideoReference marks a URL that does not resolve to a video
	// id. Rejected before any job is created.
	ErrInvalidVideoReference = errors.New("invalid video reference")

	// ErrTranscriptUnavailable marks a video with no usable captions. The
	// most common failure path, surfaced verbatim to the user.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrProviderUnavailable marks a transient model or network failure that
	// persisted through the retry budget.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderMalformedOutput marks a model response that violated the
	// expected schema after retries. Fatal only when every chunk fails.
	ErrProviderMalformedOutput = errors.New("provider returned malformed output")

	// ErrJobNotFound marks an unknown or already-reaped job id.
	ErrJobNotFound = errors.New("job not found")

	// ErrNotReady marks a request for a terminal result on a job that has
	// not reached a terminal state yet.
	ErrNotReady = errors.New("job not ready")
)

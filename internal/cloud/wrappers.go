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

// This file wraps the Generative AI client with rate limiting and a bounded,
// jittered retry policy. Gemini enforces per-minute request quotas; the
// wrapper makes every caller wait for a rate token before issuing a request,
// and retries transient failures before surfacing the error.
package cloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// RetryPolicy bounds how a failed model call is retried. It exists as an
// explicit object so tests can tighten the intervals to microseconds.
type RetryPolicy struct {
	MaxTries        uint          // Attempt budget including the first call.
	InitialInterval time.Duration // First backoff delay.
	MaxInterval     time.Duration // Cap on the exponential delay.
}

// DefaultRetryPolicy returns the production retry policy for model calls.
func DefaultRetryPolicy(maxTries int) RetryPolicy {
	if maxTries < 1 {
		maxTries = 1
	}
	return RetryPolicy{
		MaxTries:        uint(maxTries),
		InitialInterval: 2 * time.Second,
		MaxInterval:     30 * time.Second,
	}
}

// QuotaAwareGenerativeAIModel decorates a genai model handle with rate
// limiting, retries and token accounting. Commands hold one per configured
// model profile and treat it as their segmentation provider.
type QuotaAwareGenerativeAIModel struct {
	GenerateConfig *genai.GenerateContentConfig // Generation settings built from the model profile.
	ModelName      string                       // Model name passed on every GenerateContent call.
	ModelHandle    *genai.Models                // Underlying genai model collection.
	Limiter        *rate.Limiter                // Request rate limiter shared by all callers of this model.
	Retry          RetryPolicy                  // Bounded backoff for transient failures.

	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewQuotaAwareModel builds the rate-limited wrapper for one model profile.
//
// Inputs:
//   - cfg: the generation settings for this profile.
//   - name: the model name (e.g. "gemini-2.0-flash").
//   - handle: the genai model collection from the shared client.
//   - requestsPerSecond: sustained request rate allowed for this model.
//   - retry: the retry policy for transient failures.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: the wrapped model.
func NewQuotaAwareModel(
	cfg *genai.GenerateContentConfig,
	name string,
	handle *genai.Models,
	requestsPerSecond int,
	retry RetryPolicy) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	meter := otel.Meter(MeterName)
	out := &QuotaAwareGenerativeAIModel{
		GenerateConfig: cfg,
		ModelName:      name,
		ModelHandle:    handle,
		Limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		Retry:          retry,
	}
	out.inputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.input", name))
	out.outputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.output", name))
	out.retryCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.retry", name))
	return out
}

// MeterName mirrors the cor package metric namespace without importing it.
const MeterName = "github.com/walkgen-ai/walkgen-go"

// GenerateText sends a single text prompt to the model and returns the
// concatenated candidate text with any markdown code fences stripped.
// The call waits for a rate token first, then retries transient failures
// under the wrapper's policy. Context cancellation is never retried.
func (q *QuotaAwareGenerativeAIModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	operation := func() (string, error) {
		if err := q.Limiter.Wait(ctx); err != nil {
			return "", backoff.Permanent(err)
		}

		resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, genai.Text(prompt), q.GenerateConfig)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			q.retryCounter.Add(ctx, 1)
			return "", err
		}

		if resp.UsageMetadata != nil {
			q.inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
			q.outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
		}

		var value strings.Builder
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				value.WriteString(part.Text)
			}
		}
		return StripCodeFences(value.String()), nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = q.Retry.InitialInterval
	bo.MaxInterval = q.Retry.MaxInterval

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(q.Retry.MaxTries))
}

// StripCodeFences removes a surrounding markdown code fence from a model
// response. Models frequently wrap JSON output in ```json fences even when
// asked for a raw JSON MIME type.
func StripCodeFences(in string) string {
	out := strings.TrimSpace(in)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

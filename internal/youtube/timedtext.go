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

package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// timedTextBaseURL serves machine-generated and uploaded caption tracks for
// public videos without OAuth. The Data API captions.download endpoint needs
// video-owner credentials, so it cannot be used here.
const timedTextBaseURL = "https://www.youtube.com/api/timedtext"

// timedTextResponse mirrors the json3 payload of the timedtext endpoint.
type timedTextResponse struct {
	Events []timedTextEvent `json:"events"`
}

type timedTextEvent struct {
	StartMs    int64             `json:"tStartMs"`
	DurationMs int64             `json:"dDurationMs"`
	Segs       []timedTextSegRun `json:"segs"`
}

type timedTextSegRun struct {
	UTF8 string `json:"utf8"`
}

// FetchTranscript downloads the caption track for a video and flattens it into
// caption fragments. An empty slice with a nil error means the video has no
// captions in the requested language.
//
// Inputs:
//   - ctx: the request context.
//   - videoID: the canonical 11-character video id.
//
// Outputs:
//   - []model.CaptionFragment: the ordered caption fragments.
//   - error: when the HTTP request itself fails.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) ([]model.CaptionFragment, error) {
	query := url.Values{}
	query.Set("v", videoID)
	query.Set("lang", c.language)
	query.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, timedTextBaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build timedtext request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext for %q: %w", videoID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// The endpoint answers 404 for videos without the requested track.
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read timedtext body: %w", err)
	}
	return ParseTimedText(body)
}

// ParseTimedText decodes a json3 timedtext payload into caption fragments.
// Events with no renderable text are dropped.
func ParseTimedText(body []byte) ([]model.CaptionFragment, error) {
	// An empty body means no caption track exists.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var payload timedTextResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode timedtext payload: %w", err)
	}

	fragments := make([]model.CaptionFragment, 0, len(payload.Events))
	for _, event := range payload.Events {
		var sb strings.Builder
		for _, seg := range event.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(sb.String(), "\n", " "))
		if text == "" {
			continue
		}
		fragments = append(fragments, model.CaptionFragment{
			Text:         text,
			StartSeconds: float64(event.StartMs) / 1000.0,
			Duration:     float64(event.DurationMs) / 1000.0,
		})
	}
	return fragments, nil
}

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
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// Config holds the settings for the YouTube clients.
type Config struct {
	APIKey          string // YouTube Data API v3 key.
	CaptionLanguage string // Preferred caption language code, e.g. "en".
}

// Client fetches video metadata through the YouTube Data API and caption
// tracks through the public timedtext endpoint.
type Client struct {
	service  *yt.Service
	http     *http.Client
	language string
}

// NewClient creates the YouTube client. The Data API service is only created
// when an API key is configured; FetchMetadata fails without one.
//
// Inputs:
//   - ctx: the root context for the service lifecycle.
//   - cfg: the API key and caption language settings.
//
// Outputs:
//   - *Client: the initialized client.
//   - error: when the Data API service cannot be created.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	out := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		language: cfg.CaptionLanguage,
	}
	if out.language == "" {
		out.language = "en"
	}
	if cfg.APIKey != "" {
		service, err := yt.NewService(ctx, option.WithAPIKey(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("create youtube data service: %w", err)
		}
		out.service = service
	}
	return out, nil
}

// FetchMetadata looks up the title, channel, duration and thumbnail for a
// video id via the Data API.
//
// Inputs:
//   - ctx: the request context.
//   - videoID: the canonical 11-character video id.
//
// Outputs:
//   - *model.VideoMetadata: the populated metadata record.
//   - error: when the API call fails or the video does not exist.
func (c *Client) FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	if c.service == nil {
		return nil, fmt.Errorf("youtube data api key not configured")
	}
	resp, err := c.service.Videos.
		List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list %q: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %q not found", videoID)
	}

	item := resp.Items[0]
	durationSeconds := ParseISODuration(item.ContentDetails.Duration)

	out := &model.VideoMetadata{
		VideoId:         videoID,
		Title:           item.Snippet.Title,
		Channel:         item.Snippet.ChannelTitle,
		DurationSeconds: durationSeconds,
		DurationLabel:   model.FormatDuration(durationSeconds),
		Platform:        "youtube",
	}
	if thumbs := item.Snippet.Thumbnails; thumbs != nil {
		switch {
		case thumbs.High != nil:
			out.ThumbnailUrl = thumbs.High.Url
		case thumbs.Medium != nil:
			out.ThumbnailUrl = thumbs.Medium.Url
		case thumbs.Default != nil:
			out.ThumbnailUrl = thumbs.Default.Url
		}
	}
	return out, nil
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 duration like "PT1H23M45S" into a
// second count. Malformed input parses as zero.
func ParseISODuration(value string) int {
	m := isoDurationPattern.FindStringSubmatch(value)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}

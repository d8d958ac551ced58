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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		name      string
		reference string
		want      string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"id with underscore and dash", "a_b-c_d-e_f", "a_b-c_d-e_f"},
		{"not a video reference", "https://example.com/watch?v=short", ""},
		{"too short raw id", "abc123", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractVideoID(tc.reference))
		})
	}
}

func TestParseISODuration(t *testing.T) {
	assert.Equal(t, 5025, ParseISODuration("PT1H23M45S"))
	assert.Equal(t, 754, ParseISODuration("PT12M34S"))
	assert.Equal(t, 59, ParseISODuration("PT59S"))
	assert.Equal(t, 7200, ParseISODuration("PT2H"))
	assert.Equal(t, 0, ParseISODuration("not-a-duration"))
	assert.Equal(t, 0, ParseISODuration(""))
}

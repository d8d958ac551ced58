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

// Package youtube provides the metadata and caption clients for public
// YouTube videos, plus the URL parsing helpers used to normalize user input
// into a canonical 11-character video id.
package youtube

import "regexp"

var (
	// urlPattern matches the id in watch, short-link, and embed URL forms.
	urlPattern = regexp.MustCompile(`(?:v=|/v/|youtu\.be/|/embed/|/shorts/)([a-zA-Z0-9_-]{11})`)
	// rawIDPattern matches a bare video id passed without any URL around it.
	rawIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID pulls the canonical video id out of a YouTube URL or a bare
// id string. It returns an empty string when no id can be found.
func ExtractVideoID(reference string) string {
	if m := urlPattern.FindStringSubmatch(reference); m != nil {
		return m[1]
	}
	if rawIDPattern.MatchString(reference) {
		return reference
	}
	return ""
}

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

// Comment is an anonymous comment attached to a walkthrough segment.
// Threading is a single parent reference; the UI caps display depth.
type Comment struct {
	Id        int64            `json:"id"`
	VideoId   string           `json:"video_id"`
	SegmentId int              `json:"segment_id"`
	ParentId  int64            `json:"parent_id,omitempty"`
	Nickname  string           `json:"nickname"`
	Text      string           `json:"text"`
	CreatedAt string           `json:"created_at"`
	Reactions map[string]int64 `json:"reactions"`
	Replies   []*Comment       `json:"replies"`
}

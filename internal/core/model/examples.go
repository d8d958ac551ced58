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

// GetExampleSegment returns a filled-in segment used as the few-shot example
// in prompt templates, so the model sees the exact JSON shape expected back.
func GetExampleSegment() *Segment {
	return &Segment{
		Id:           1,
		Type:         SegmentTypeBoss,
		Label:        "Boss: Margit the Fell Omen",
		StartSeconds: 120,
		EndSeconds:   300,
		StartLabel:   "2:00",
		EndLabel:     "5:00",
		Description:  "First major boss. Stay close and punish the delayed overhead swings; the jellyfish spirit ash holds aggro during the second phase.",
		Tags:         []string{"boss", "margit", "stormveil"},
		Difficulty:   DifficultyHard,
	}
}

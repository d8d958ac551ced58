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
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "walkgen-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testWalkthrough(videoID, jobID, title string) *model.Walkthrough {
	return &model.Walkthrough{
		Id: jobID,
		Video: model.VideoMetadata{
			VideoId:         videoID,
			Title:           title,
			Channel:         "GuideChannel",
			GameTitle:       model.GuessGameFromTitle(title),
			DurationSeconds: 3600,
			DurationLabel:   "1:00:00",
			Platform:        "youtube",
		},
		Segments: []model.Segment{
			{Id: 1, Type: model.SegmentTypeBoss, Label: "Boss: Margit", StartSeconds: 0, EndSeconds: 600,
				StartLabel: "0:00", EndLabel: "10:00", Tags: []string{"boss", "margit"}, Difficulty: model.DifficultyHard},
		},
		Summary:       "A short walkthrough.",
		TotalSegments: 1,
	}
}

func TestStorePutGetRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	original := testWalkthrough("dQw4w9WgXcQ", "ab12cd34", "Elden Ring - Full Walkthrough")
	require.NoError(t, store.Put(ctx, original))

	loaded, err := store.Get(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original.Id, loaded.Id)
	assert.Equal(t, original.Video.Title, loaded.Video.Title)
	require.Len(t, loaded.Segments, 1)
	assert.Equal(t, model.SegmentTypeBoss, loaded.Segments[0].Type)
}

func TestStoreGetMissReturnsNil(t *testing.T) {
	store := testStore(t)
	loaded, err := store.Get(context.Background(), "00000000000")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStorePutReplacesExistingEntry(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("dQw4w9WgXcQ", "job00001", "First Title")))
	require.NoError(t, store.Put(ctx, testWalkthrough("dQw4w9WgXcQ", "job00002", "Second Title")))

	loaded, err := store.Get(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "job00002", loaded.Id)

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Walkthroughs)
}

func TestStoreListPopularOrdersByAccessCount(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("videoaaaaaa", "job0000a", "Quiet Game - Walkthrough")))
	require.NoError(t, store.Put(ctx, testWalkthrough("videobbbbbb", "job0000b", "Popular Game - Walkthrough")))

	// Each Get bumps the access counter.
	for i := 0; i < 3; i++ {
		_, err := store.Get(ctx, "videobbbbbb")
		require.NoError(t, err)
	}

	popular, err := store.ListPopular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "videobbbbbb", popular[0].VideoId)
	assert.Equal(t, int64(3), popular[0].AccessCount)
}

func TestStoreListRecentNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("videoaaaaaa", "job0000a", "Older - Walkthrough")))
	require.NoError(t, store.Put(ctx, testWalkthrough("videobbbbbb", "job0000b", "Newer - Walkthrough")))

	recent, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "videobbbbbb", recent[0].VideoId)

	limited, err := store.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStoreSearchIsCaseInsensitive(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("videoaaaaaa", "job0000a", "Elden Ring - Full Walkthrough")))
	require.NoError(t, store.Put(ctx, testWalkthrough("videobbbbbb", "job0000b", "Hollow Knight - Full Walkthrough")))

	results, err := store.Search(ctx, "ELDEN", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "videoaaaaaa", results[0].VideoId)

	results, err = store.Search(ctx, "no such game", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStoreSearchMatchesTitlesOnly(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("videoaaaaaa", "job0000a", "Elden Ring - Full Walkthrough")))

	// "margit" appears only inside the serialized segments, not in the
	// video title, game title or channel, so it is not a match.
	results, err := store.Search(ctx, "margit", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = store.Search(ctx, "guidechannel", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestStoreDeleteCascades(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("videoaaaaaa", "job0000a", "Some Game - Walkthrough")))
	comment, err := store.AddComment(ctx, "videoaaaaaa", 1, 0, "tester", "great guide")
	require.NoError(t, err)
	_, _, err = store.ToggleReaction(ctx, comment.Id, "session-1", "👍")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "videoaaaaaa"))

	loaded, err := store.Get(ctx, "videoaaaaaa")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	comments, err := store.ListComments(ctx, "videoaaaaaa")
	require.NoError(t, err)
	assert.Empty(t, comments)

	// Deleting an unknown video is a no-op, not an error.
	assert.NoError(t, store.Delete(ctx, "unknown00000"))
}

func TestStoreGetStats(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("videoaaaaaa", "job0000a", "Game A - Walkthrough")))
	require.NoError(t, store.Put(ctx, testWalkthrough("videobbbbbb", "job0000b", "Game B - Walkthrough")))
	_, err := store.Get(ctx, "videoaaaaaa")
	require.NoError(t, err)

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Walkthroughs)
	assert.Equal(t, int64(2), stats.TotalSegments)
	assert.Equal(t, int64(1), stats.TotalAccesses)
}

func TestStoreGetStatsTopGames(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("videoaaaaaa", "job0000a", "Game A - Walkthrough Part 1")))
	require.NoError(t, store.Put(ctx, testWalkthrough("videobbbbbb", "job0000b", "Game A - Walkthrough Part 2")))
	require.NoError(t, store.Put(ctx, testWalkthrough("videocccccc", "job0000c", "Game B - Walkthrough")))

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.TopGames, 2)
	assert.Equal(t, GameCount{Game: "Game A", Count: 2}, stats.TopGames[0])
	assert.Equal(t, GameCount{Game: "Game B", Count: 1}, stats.TopGames[1])
}

func TestStoreRecordsAnalyticsEvents(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testWalkthrough("videoaaaaaa", "job0000a", "Game A - Walkthrough")))
	_, err := store.Get(ctx, "videoaaaaaa")
	require.NoError(t, err)

	// A cache miss leaves no event behind.
	missed, err := store.Get(ctx, "unknown00000")
	require.NoError(t, err)
	require.Nil(t, missed)

	count := func(eventType string) (n int64) {
		err := store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM analytics WHERE event_type = ?`, eventType).Scan(&n)
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, int64(1), count(eventAnalyzed))
	assert.Equal(t, int64(1), count(eventCacheHit))
}

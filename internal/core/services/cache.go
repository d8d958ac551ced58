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

// Package services holds the stateful service layer between the HTTP surface
// and the analysis pipeline: the durable SQLite-backed walkthrough cache with
// its comment threads, and the in-memory job manager.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS walkthroughs (
    video_id       TEXT PRIMARY KEY,
    job_id         TEXT NOT NULL,
    video_title    TEXT NOT NULL DEFAULT '',
    channel        TEXT NOT NULL DEFAULT '',
    game_title     TEXT NOT NULL DEFAULT '',
    duration_label TEXT NOT NULL DEFAULT '',
    thumbnail_url  TEXT NOT NULL DEFAULT '',
    total_segments INTEGER NOT NULL DEFAULT 0,
    data           TEXT NOT NULL,
    created_at     TEXT NOT NULL,
    access_count   INTEGER NOT NULL DEFAULT 0,
    last_accessed  TEXT
);

CREATE TABLE IF NOT EXISTS comments (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    video_id   TEXT NOT NULL,
    segment_id INTEGER NOT NULL DEFAULT 0,
    parent_id  INTEGER NOT NULL DEFAULT 0,
    nickname   TEXT NOT NULL DEFAULT 'Anonymous',
    text       TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_video ON comments (video_id);

CREATE TABLE IF NOT EXISTS reactions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    comment_id INTEGER NOT NULL,
    session_id TEXT NOT NULL,
    emoji      TEXT NOT NULL,
    UNIQUE (comment_id, session_id, emoji)
);

CREATE TABLE IF NOT EXISTS analytics (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    video_id   TEXT NOT NULL,
    event_type TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

// Analytics event types recorded against the walkthrough log.
const (
	eventAnalyzed = "analyzed"
	eventCacheHit = "cache_hit"
)

// Store is the durable cache backing the service: finished walkthroughs keyed
// by video id, plus the comment threads and reactions attached to them. All
// state lives in a single SQLite file so the service needs no external
// database.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the SQLite database at path and ensures
// the schema exists. Use ":memory:" for throwaway test stores.
//
// Inputs:
//   - path: the SQLite file path.
//
// Outputs:
//   - *Store: the ready-to-use store.
//   - error: when the database cannot be opened or migrated.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}
	// The sqlite driver is single-writer. One connection avoids SQLITE_BUSY
	// races between the request handlers and the background pipeline.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces the cached walkthrough for a video. The full
// artifact is stored as JSON alongside the columns the browse queries need.
func (s *Store) Put(ctx context.Context, walkthrough *model.Walkthrough) error {
	data, err := json.Marshal(walkthrough)
	if err != nil {
		return fmt.Errorf("serialize walkthrough: %w", err)
	}
	// Re-analysis replaces the artifact but keeps the access counter.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO walkthroughs
			(video_id, job_id, video_title, channel, game_title, duration_label,
			 thumbnail_url, total_segments, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (video_id) DO UPDATE SET
			job_id = excluded.job_id,
			video_title = excluded.video_title,
			channel = excluded.channel,
			game_title = excluded.game_title,
			duration_label = excluded.duration_label,
			thumbnail_url = excluded.thumbnail_url,
			total_segments = excluded.total_segments,
			data = excluded.data,
			created_at = excluded.created_at`,
		walkthrough.Video.VideoId,
		walkthrough.Id,
		walkthrough.Video.Title,
		walkthrough.Video.Channel,
		walkthrough.Video.GameTitle,
		walkthrough.Video.DurationLabel,
		walkthrough.Video.ThumbnailUrl,
		walkthrough.TotalSegments,
		string(data),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store walkthrough %s: %w", walkthrough.Video.VideoId, err)
	}
	return s.recordEvent(ctx, walkthrough.Video.VideoId, eventAnalyzed)
}

// Get returns the cached walkthrough for a video, or nil when none exists.
// Each hit bumps the access counter used by the popular listing.
func (s *Store) Get(ctx context.Context, videoID string) (*model.Walkthrough, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM walkthroughs WHERE video_id = ?`, videoID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load walkthrough %s: %w", videoID, err)
	}

	var walkthrough model.Walkthrough
	if err := json.Unmarshal([]byte(data), &walkthrough); err != nil {
		return nil, fmt.Errorf("deserialize walkthrough %s: %w", videoID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE walkthroughs
		SET access_count = access_count + 1, last_accessed = ?
		WHERE video_id = ?`,
		time.Now().UTC().Format(time.RFC3339), videoID)
	if err != nil {
		return nil, fmt.Errorf("bump access count for %s: %w", videoID, err)
	}
	if err := s.recordEvent(ctx, videoID, eventCacheHit); err != nil {
		return nil, err
	}
	return &walkthrough, nil
}

// recordEvent appends to the analytics log. Events are never consulted by the
// serving path; they exist for offline inspection of cache behavior.
func (s *Store) recordEvent(ctx context.Context, videoID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analytics (video_id, event_type, created_at) VALUES (?, ?, ?)`,
		videoID, eventType, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record %s event for %s: %w", eventType, videoID, err)
	}
	return nil
}

// Delete removes a cached walkthrough along with its comments and reactions.
// Deleting an unknown video id is not an error.
func (s *Store) Delete(ctx context.Context, videoID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete of %s: %w", videoID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM reactions WHERE comment_id IN
			(SELECT id FROM comments WHERE video_id = ?)`, videoID); err != nil {
		return fmt.Errorf("delete reactions for %s: %w", videoID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("delete comments for %s: %w", videoID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM walkthroughs WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("delete walkthrough %s: %w", videoID, err)
	}
	return tx.Commit()
}

const summaryColumns = `video_id, job_id, video_title, channel, game_title,
	duration_label, thumbnail_url, total_segments, access_count, created_at`

// ListRecent returns up to limit walkthroughs, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]model.WalkthroughSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM walkthroughs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent walkthroughs: %w", err)
	}
	return scanSummaries(rows)
}

// ListPopular returns up to limit walkthroughs, most accessed first.
func (s *Store) ListPopular(ctx context.Context, limit int) ([]model.WalkthroughSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM walkthroughs ORDER BY access_count DESC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list popular walkthroughs: %w", err)
	}
	return scanSummaries(rows)
}

// Search returns walkthroughs whose video title, game title or channel
// matches the query, case-insensitively.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]model.WalkthroughSummary, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM walkthroughs
		WHERE video_title LIKE ? COLLATE NOCASE
		   OR game_title LIKE ? COLLATE NOCASE
		   OR channel LIKE ? COLLATE NOCASE
		ORDER BY access_count DESC, created_at DESC
		LIMIT ?`,
		pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search walkthroughs for %q: %w", query, err)
	}
	return scanSummaries(rows)
}

// Stats describes the cache contents for the health endpoint.
type Stats struct {
	Walkthroughs  int64       `json:"walkthroughs"`
	TotalSegments int64       `json:"total_segments"`
	TotalAccesses int64       `json:"total_accesses"`
	TopGames      []GameCount `json:"top_games"`
}

// GameCount is one entry of the most-cached-games leaderboard.
type GameCount struct {
	Game  string `json:"game"`
	Count int64  `json:"count"`
}

// GetStats aggregates cache-wide counters and the top cached games.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_segments), 0),
		       COALESCE(SUM(access_count), 0)
		FROM walkthroughs`).
		Scan(&stats.Walkthroughs, &stats.TotalSegments, &stats.TotalAccesses)
	if err != nil {
		return nil, fmt.Errorf("read cache stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT game_title, COUNT(*) AS n
		FROM walkthroughs
		GROUP BY game_title
		ORDER BY n DESC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("read top games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats.TopGames = make([]GameCount, 0, 5)
	for rows.Next() {
		var entry GameCount
		if err := rows.Scan(&entry.Game, &entry.Count); err != nil {
			return nil, fmt.Errorf("scan top game row: %w", err)
		}
		stats.TopGames = append(stats.TopGames, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read top games: %w", err)
	}
	return &stats, nil
}

func scanSummaries(rows *sql.Rows) ([]model.WalkthroughSummary, error) {
	defer func() { _ = rows.Close() }()

	out := make([]model.WalkthroughSummary, 0)
	for rows.Next() {
		var summary model.WalkthroughSummary
		if err := rows.Scan(
			&summary.VideoId,
			&summary.JobId,
			&summary.VideoTitle,
			&summary.Channel,
			&summary.GameTitle,
			&summary.DurationLabel,
			&summary.ThumbnailUrl,
			&summary.TotalSegments,
			&summary.AccessCount,
			&summary.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan walkthrough row: %w", err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

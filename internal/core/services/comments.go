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
	"fmt"
	"strings"
	"time"

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// AddComment stores a comment (or a reply when parentID is non-zero) on a
// video's walkthrough and returns it with its assigned id.
//
// Inputs:
//   - ctx: the request context.
//   - videoID: the video the comment belongs to.
//   - segmentID: the segment being discussed, or 0 for the whole video.
//   - parentID: the comment being replied to, or 0 for a top-level comment.
//   - nickname: the display name; empty defaults to "Anonymous".
//   - text: the comment body.
//
// Outputs:
//   - *model.Comment: the stored comment.
//   - error: when the body is empty or the insert fails.
func (s *Store) AddComment(ctx context.Context, videoID string, segmentID int, parentID int64, nickname, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment text is required")
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = "Anonymous"
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (video_id, segment_id, parent_id, nickname, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		videoID, segmentID, parentID, nickname, text, createdAt)
	if err != nil {
		return nil, fmt.Errorf("store comment on %s: %w", videoID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read comment id: %w", err)
	}

	return &model.Comment{
		Id:        id,
		VideoId:   videoID,
		SegmentId: segmentID,
		ParentId:  parentID,
		Nickname:  nickname,
		Text:      text,
		CreatedAt: createdAt,
		Reactions: map[string]int64{},
		Replies:   []*model.Comment{},
	}, nil
}

// ListComments returns the comment thread for a video: top-level comments in
// posting order, each carrying its replies and aggregated reaction counts.
func (s *Store) ListComments(ctx context.Context, videoID string) ([]*model.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, segment_id, parent_id, nickname, text, created_at
		FROM comments WHERE video_id = ? ORDER BY created_at ASC, id ASC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list comments for %s: %w", videoID, err)
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[int64]*model.Comment)
	ordered := make([]*model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.Id, &c.VideoId, &c.SegmentId, &c.ParentId, &c.Nickname, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		c.Reactions = map[string]int64{}
		c.Replies = []*model.Comment{}
		byID[c.Id] = &c
		ordered = append(ordered, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachReactionCounts(ctx, videoID, byID); err != nil {
		return nil, err
	}

	// Thread replies under their parents. Replies to a deleted or unknown
	// parent surface as top-level so they are never silently lost.
	thread := make([]*model.Comment, 0, len(ordered))
	for _, c := range ordered {
		if c.ParentId != 0 {
			if parent, ok := byID[c.ParentId]; ok {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		thread = append(thread, c)
	}
	return thread, nil
}

func (s *Store) attachReactionCounts(ctx context.Context, videoID string, byID map[int64]*model.Comment) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.comment_id, r.emoji, COUNT(*)
		FROM reactions r
		JOIN comments c ON c.id = r.comment_id
		WHERE c.video_id = ?
		GROUP BY r.comment_id, r.emoji`, videoID)
	if err != nil {
		return fmt.Errorf("count reactions for %s: %w", videoID, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var commentID int64
		var emoji string
		var count int64
		if err := rows.Scan(&commentID, &emoji, &count); err != nil {
			return fmt.Errorf("scan reaction row: %w", err)
		}
		if comment, ok := byID[commentID]; ok {
			comment.Reactions[emoji] = count
		}
	}
	return rows.Err()
}

// ToggleReaction adds a session's emoji reaction to a comment, or removes it
// when the same session reacts with the same emoji again. It returns the new
// count for that emoji and whether the reaction is now present.
func (s *Store) ToggleReaction(ctx context.Context, commentID int64, sessionID, emoji string) (count int64, added bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM reactions WHERE comment_id = ? AND session_id = ? AND emoji = ?`,
		commentID, sessionID, emoji)
	if err != nil {
		return 0, false, fmt.Errorf("toggle reaction on %d: %w", commentID, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("toggle reaction on %d: %w", commentID, err)
	}

	if removed == 0 {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO reactions (comment_id, session_id, emoji) VALUES (?, ?, ?)`,
			commentID, sessionID, emoji); err != nil {
			return 0, false, fmt.Errorf("store reaction on %d: %w", commentID, err)
		}
		added = true
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reactions WHERE comment_id = ? AND emoji = ?`,
		commentID, emoji).Scan(&count)
	if err != nil {
		return 0, false, fmt.Errorf("count reactions on %d: %w", commentID, err)
	}
	return count, added, nil
}

package database

import (
	"context"

	"gator-commons/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type counterDrift struct {
	ID             uuid.UUID `db:"id"`
	LikesCount     int       `db:"likes_count"`
	ActualLikes    int       `db:"actual_likes"`
	CommentsCount  int       `db:"comments_count"`
	ActualComments int       `db:"actual_comments"`
}

// RecountCounters recomputes likes_count and comments_count for every post from the like
// and comment rows, logs each post that had drifted, and returns how many were fixed.
func (s *Store) RecountCounters(ctx context.Context) (int, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	driftQuery := `
		SELECT id, likes_count, actual_likes, comments_count, actual_comments FROM (
			SELECT p.id, p.likes_count, p.comments_count,
				(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS actual_likes,
				(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS actual_comments
			FROM posts p
		) counted
		WHERE likes_count <> actual_likes OR comments_count <> actual_comments`
	if s.driver == DriverPostgres {
		// Keep writers off the drifted rows until the fix commits.
		driftQuery = `SELECT p.id, p.likes_count, p.comments_count,
				(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS actual_likes,
				(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS actual_comments
			FROM posts p
			WHERE p.likes_count <> (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)
				OR p.comments_count <> (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
			FOR UPDATE OF p`
	}

	var drifted []counterDrift
	if err := tx.SelectContext(ctx, &drifted, driftQuery); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to scan post counters", err)
	}

	updateQuery := tx.Rebind(`UPDATE posts SET likes_count = ?, comments_count = ? WHERE id = ?`)
	for _, d := range drifted {
		s.logger.Warn("post counters drifted",
			zap.Stringer("post_id", d.ID),
			zap.Int("likes_count", d.LikesCount),
			zap.Int("actual_likes", d.ActualLikes),
			zap.Int("comments_count", d.CommentsCount),
			zap.Int("actual_comments", d.ActualComments))

		if _, err := tx.ExecContext(ctx, updateQuery, d.ActualLikes, d.ActualComments, d.ID); err != nil {
			return 0, utils.NewAppError(utils.ErrDatabase, "failed to repair post counters", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to commit counter repair", err)
	}

	s.logger.Info("counter reconciliation finished", zap.Int("repaired", len(drifted)))
	return len(drifted), nil
}

package database

import (
	"context"

	"gator-commons/internal/models"
	"gator-commons/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ToggleLike flips the (post, user) like row and moves likes_count by the number of rows
// actually inserted or deleted, all in one transaction. The post row is locked first, so
// toggles on one post are serialized. If an insert still loses to a concurrent like, the
// unique constraint turns it into a no-op and the counter is left alone.
func (s *Store) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*models.LikeState, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	post, err := getPost(ctx, tx, postID, s.forUpdate())
	if err != nil {
		return nil, err
	}

	var existing int
	countQuery := tx.Rebind(`SELECT COUNT(*) FROM likes WHERE post_id = ? AND user_id = ?`)
	if err := tx.GetContext(ctx, &existing, countQuery, postID, userID); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to check existing like", err)
	}

	var delta int
	liked := existing == 0
	if liked {
		insertQuery := `
			INSERT INTO likes (id, post_id, user_id, created_at)
			VALUES (:id, :post_id, :user_id, :created_at)
			ON CONFLICT (post_id, user_id) DO NOTHING`
		result, err := tx.NamedExecContext(ctx, insertQuery, models.NewLike(postID, userID))
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to insert like", err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to read like insert result", err)
		}
		delta = int(inserted)
		if inserted == 0 {
			s.logger.Debug("duplicate like ignored",
				zap.Stringer("post_id", postID),
				zap.Stringer("user_id", userID))
		}
	} else {
		deleteQuery := tx.Rebind(`DELETE FROM likes WHERE post_id = ? AND user_id = ?`)
		result, err := tx.ExecContext(ctx, deleteQuery, postID, userID)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to delete like", err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to read like delete result", err)
		}
		delta = -int(deleted)
	}

	if delta != 0 {
		post, err = s.adjustCounterTx(ctx, tx, postID, models.LikesCount, delta)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to commit like toggle", err)
	}

	return &models.LikeState{
		PostID:     postID,
		Liked:      liked,
		LikesCount: post.LikesCount,
	}, nil
}

// HasLike reports whether the like row for (post, user) exists.
func (s *Store) HasLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var count int
	query := s.DB.Rebind(`SELECT COUNT(*) FROM likes WHERE post_id = ? AND user_id = ?`)
	if err := s.DB.GetContext(ctx, &count, query, postID, userID); err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to check like state", err)
	}
	return count > 0, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gator-commons/internal/models"
	"gator-commons/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const postColumns = `id, title, content, author_id, author_name, likes_count, comments_count, created_at`

// CreatePost inserts a new post. Counters always start at zero regardless of the struct.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	post.LikesCount = 0
	post.CommentsCount = 0

	query := `
		INSERT INTO posts (id, title, content, author_id, author_name, likes_count, comments_count, created_at)
		VALUES (:id, :title, :content, :author_id, :author_name, 0, 0, :created_at)`

	if _, err := s.DB.NamedExecContext(ctx, query, post); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save post", err)
	}
	return nil
}

// GetPost fetches a post by its ID.
func (s *Store) GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	return getPost(ctx, s.DB, postID, "")
}

func (s *Store) CountPosts(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count posts", err)
	}
	return count, nil
}

// ListPosts returns one window of posts, newest first. Ties on created_at fall back to
// id, which is time-ordered, so the order is stable across calls.
func (s *Store) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	query := s.DB.Rebind(`SELECT ` + postColumns + ` FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`)

	posts := []*models.Post{}
	if err := s.DB.SelectContext(ctx, &posts, query, limit, offset); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query posts", err)
	}
	return posts, nil
}

// AdjustCounter applies delta to one post counter in its own transaction.
func (s *Store) AdjustCounter(ctx context.Context, postID uuid.UUID, field models.CounterField, delta int) (*models.Post, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback() // Rollback is ignored if tx is committed.

	post, err := s.adjustCounterTx(ctx, tx, postID, field, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to commit counter update", err)
	}
	return post, nil
}

// adjustCounterTx is a relative update evaluated by the store against the current
// value, never a write-back of a value read earlier. A decrement that would take the
// counter below zero is refused by the WHERE clause; the counter stays at zero and
// the drift is logged.
func (s *Store) adjustCounterTx(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, field models.CounterField, delta int) (*models.Post, error) {
	if !field.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("unknown counter %q", field))
	}
	if delta != 1 && delta != -1 {
		return nil, utils.NewValidationError("counter delta must be +1 or -1")
	}

	query := tx.Rebind(fmt.Sprintf(
		`UPDATE posts SET %[1]s = %[1]s + ? WHERE id = ? AND %[1]s + ? >= 0`, field))
	result, err := tx.ExecContext(ctx, query, delta, postID, delta)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to update post counter", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to read counter update result", err)
	}

	post, err := getPost(ctx, tx, postID, "")
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		s.logger.Warn("counter underflow clamped at zero",
			zap.Stringer("post_id", postID),
			zap.String("field", string(field)),
			zap.Int("delta", delta))
	}
	return post, nil
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// getPost reads a post through either the pool or a transaction. lock is appended to
// the statement, so callers inside a transaction can pass forUpdate().
func getPost(ctx context.Context, q queryer, postID uuid.UUID, lock string) (*models.Post, error) {
	query := q.Rebind(`SELECT ` + postColumns + ` FROM posts WHERE id = ?` + lock)

	var post models.Post
	if err := sqlx.GetContext(ctx, q, &post, query, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("post")
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query post by id", err)
	}
	return &post, nil
}

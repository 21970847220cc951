package database

import (
	"context"

	"gator-commons/internal/models"
	"gator-commons/internal/utils"

	"github.com/google/uuid"
)

// AddComment inserts the comment and bumps the post's comments_count in one transaction.
// A missing post is reported before anything is written.
func (s *Store) AddComment(ctx context.Context, comment *models.Comment) (*models.Post, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := getPost(ctx, tx, comment.PostID, s.forUpdate()); err != nil {
		return nil, err
	}

	insertQuery := `
		INSERT INTO comments (id, post_id, author_id, author_name, content, created_at)
		VALUES (:id, :post_id, :author_id, :author_name, :content, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, comment); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to insert comment", err)
	}

	post, err := s.adjustCounterTx(ctx, tx, comment.PostID, models.CommentsCount, 1)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to commit comment", err)
	}
	return post, nil
}

// ListComments returns every comment on a post, newest first.
func (s *Store) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	query := s.DB.Rebind(`
		SELECT id, post_id, author_id, author_name, content, created_at
		FROM comments
		WHERE post_id = ?
		ORDER BY created_at DESC, id DESC`)

	comments := make([]*models.Comment, 0)
	if err := s.DB.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query comments for post", err)
	}
	return comments, nil
}

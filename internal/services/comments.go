package services

import (
	"context"

	"gator-commons/internal/database"
	"gator-commons/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CommentService struct {
	store  database.ContentStore
	posts  *PostService
	logger *zap.Logger
}

func NewCommentService(store database.ContentStore, posts *PostService, logger *zap.Logger) *CommentService {
	return &CommentService{
		store:  store,
		posts:  posts,
		logger: logger.Named("comments"),
	}
}

// AddComment stores the comment and increments the post's comments_count in the same
// transaction. A missing post fails with ErrNotFound and writes nothing.
func (s *CommentService) AddComment(ctx context.Context, session models.Session, postID uuid.UUID, content string) (*models.Comment, error) {
	comment, err := models.NewComment(session, postID, content)
	if err != nil {
		return nil, err
	}

	post, err := s.store.AddComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	s.posts.countersChanged(ctx, postID)

	s.logger.Info("comment added",
		zap.Stringer("comment_id", comment.ID),
		zap.Stringer("post_id", postID),
		zap.Int("comments_count", post.CommentsCount))
	return comment, nil
}

// ListComments returns every comment on the post, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	return s.store.ListComments(ctx, postID)
}

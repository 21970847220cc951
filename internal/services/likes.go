package services

import (
	"context"

	"gator-commons/internal/database"
	"gator-commons/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LikeService struct {
	store  database.ContentStore
	posts  *PostService
	logger *zap.Logger
}

func NewLikeService(store database.ContentStore, posts *PostService, logger *zap.Logger) *LikeService {
	return &LikeService{
		store:  store,
		posts:  posts,
		logger: logger.Named("likes"),
	}
}

// ToggleLike flips the caller's like on a post and returns the new state with the
// post's updated likes_count. Concurrent duplicate likes resolve as first write wins.
func (s *LikeService) ToggleLike(ctx context.Context, session models.Session, postID uuid.UUID) (*models.LikeState, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	state, err := s.store.ToggleLike(ctx, postID, session.UserID)
	if err != nil {
		return nil, err
	}
	s.posts.countersChanged(ctx, postID)

	s.logger.Debug("like toggled",
		zap.Stringer("post_id", postID),
		zap.Stringer("user_id", session.UserID),
		zap.Bool("liked", state.Liked),
		zap.Int("likes_count", state.LikesCount))
	return state, nil
}

// GetLikeState reports whether userID currently likes the post.
func (s *LikeService) GetLikeState(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	return s.store.HasLike(ctx, postID, userID)
}

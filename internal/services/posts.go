package services

import (
	"context"

	"gator-commons/internal/database"
	"gator-commons/internal/models"
	"gator-commons/internal/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostCache is an optional read-through cache in front of GetPost.
type PostCache interface {
	GetOrLoad(ctx context.Context, postID uuid.UUID, load func(context.Context) (*models.Post, error)) (*models.Post, error)
	Invalidate(ctx context.Context, postID uuid.UUID)
}

// PostService owns posts and is the only writer of their counters.
type PostService struct {
	store    database.ContentStore
	cache    PostCache
	pageSize int
	logger   *zap.Logger
}

func NewPostService(store database.ContentStore, cache PostCache, pageSize int, logger *zap.Logger) *PostService {
	if pageSize < 1 || pageSize > pagination.MaxPageSize {
		pageSize = pagination.DefaultPageSize
	}
	return &PostService{
		store:    store,
		cache:    cache,
		pageSize: pageSize,
		logger:   logger.Named("posts"),
	}
}

func (s *PostService) CreatePost(ctx context.Context, session models.Session, title, content string) (*models.Post, error) {
	post, err := models.NewPost(session, title, content)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("post created", zap.Stringer("post_id", post.ID), zap.Stringer("author_id", post.AuthorID))
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	if s.cache == nil {
		return s.store.GetPost(ctx, postID)
	}
	return s.cache.GetOrLoad(ctx, postID, func(ctx context.Context) (*models.Post, error) {
		return s.store.GetPost(ctx, postID)
	})
}

// ListPosts returns one page of posts, newest first. Pages outside 1..TotalPages are
// empty rather than errors, and page sizes above pagination.MaxPageSize are clamped.
func (s *PostService) ListPosts(ctx context.Context, page, pageSize int) (*models.PostPage, error) {
	if pageSize < 1 {
		pageSize = s.pageSize
	}

	total, err := s.store.CountPosts(ctx)
	if err != nil {
		return nil, err
	}

	window := pagination.Compute(total, page, pageSize)
	result := &models.PostPage{
		Items:      []*models.Post{},
		Page:       page,
		PageSize:   window.Limit,
		TotalCount: total,
		TotalPages: window.TotalPages,
	}
	if !window.InRange() {
		return result, nil
	}

	posts, err := s.store.ListPosts(ctx, window.Limit, window.Offset)
	if err != nil {
		return nil, err
	}
	result.Items = posts
	return result, nil
}

// AdjustCounter moves one counter by +1 or -1 relative to its stored value.
func (s *PostService) AdjustCounter(ctx context.Context, postID uuid.UUID, field models.CounterField, delta int) (*models.Post, error) {
	post, err := s.store.AdjustCounter(ctx, postID, field, delta)
	if err != nil {
		return nil, err
	}
	s.countersChanged(ctx, postID)
	return post, nil
}

func (s *PostService) CountPosts(ctx context.Context) (int, error) {
	return s.store.CountPosts(ctx)
}

// countersChanged is called after any committed write that moved a post's counters.
func (s *PostService) countersChanged(ctx context.Context, postID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, postID)
	}
}

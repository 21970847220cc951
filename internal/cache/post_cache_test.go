package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gator-commons/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*PostCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPostCache(client, time.Minute, zap.NewNop()), server
}

func samplePost() *models.Post {
	return &models.Post{
		ID:         uuid.New(),
		Title:      "T",
		Content:    "C",
		AuthorID:   uuid.New(),
		AuthorName: "alice",
		LikesCount: 3,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestGetOrLoadCachesPost(t *testing.T) {
	c, server := newTestCache(t)
	post := samplePost()

	var loads int32
	load := func(context.Context) (*models.Post, error) {
		atomic.AddInt32(&loads, 1)
		return post, nil
	}

	got, err := c.GetOrLoad(context.Background(), post.ID, load)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)
	assert.True(t, server.Exists(postKey(post.ID)))

	got, err = c.GetOrLoad(context.Background(), post.ID, load)
	require.NoError(t, err)
	assert.Equal(t, 3, got.LikesCount)
	assert.True(t, post.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestInvalidateForcesReload(t *testing.T) {
	c, server := newTestCache(t)
	post := samplePost()

	_, err := c.GetOrLoad(context.Background(), post.ID, func(context.Context) (*models.Post, error) { return post, nil })
	require.NoError(t, err)

	c.Invalidate(context.Background(), post.ID)
	assert.False(t, server.Exists(postKey(post.ID)))

	updated := *post
	updated.LikesCount = 4
	got, err := c.GetOrLoad(context.Background(), post.ID, func(context.Context) (*models.Post, error) { return &updated, nil })
	require.NoError(t, err)
	assert.Equal(t, 4, got.LikesCount)
}

func TestLoadErrorsAreNotCached(t *testing.T) {
	c, server := newTestCache(t)
	postID := uuid.New()
	boom := errors.New("not found")

	_, err := c.GetOrLoad(context.Background(), postID, func(context.Context) (*models.Post, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, server.Exists(postKey(postID)))
}

func TestEntriesExpire(t *testing.T) {
	c, server := newTestCache(t)
	post := samplePost()

	_, err := c.GetOrLoad(context.Background(), post.ID, func(context.Context) (*models.Post, error) { return post, nil })
	require.NoError(t, err)

	server.FastForward(2 * time.Minute)
	assert.False(t, server.Exists(postKey(post.ID)))
}

func TestRedisOutageFallsBackToLoad(t *testing.T) {
	c, server := newTestCache(t)
	post := samplePost()
	server.Close()

	got, err := c.GetOrLoad(context.Background(), post.ID, func(context.Context) (*models.Post, error) { return post, nil })
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	c.Invalidate(context.Background(), post.ID)
}

func TestConcurrentMissesShareOneLoad(t *testing.T) {
	c, _ := newTestCache(t)
	post := samplePost()

	release := make(chan struct{})
	var loads int32
	load := func(context.Context) (*models.Post, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return post, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrLoad(context.Background(), post.ID, load)
			assert.NoError(t, err)
			assert.Equal(t, post.ID, got.ID)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestLoadRacingInvalidateIsNotCached(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()
	post := samplePost()

	// The load reads the old row, then a toggle commits and invalidates before the
	// load writes back.
	stale, err := c.GetOrLoad(ctx, post.ID, func(context.Context) (*models.Post, error) {
		old := *post
		c.Invalidate(ctx, post.ID)
		return &old, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stale.LikesCount)
	assert.False(t, server.Exists(postKey(post.ID)), "a load that raced an invalidation must not be cached")

	fresh := *post
	fresh.LikesCount = 4
	var loads int32
	load := func(context.Context) (*models.Post, error) {
		atomic.AddInt32(&loads, 1)
		return &fresh, nil
	}
	for i := 0; i < 2; i++ {
		got, err := c.GetOrLoad(ctx, post.ID, load)
		require.NoError(t, err)
		assert.Equal(t, 4, got.LikesCount)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestInvalidateBumpsGeneration(t *testing.T) {
	c, server := newTestCache(t)
	postID := uuid.New()

	c.Invalidate(context.Background(), postID)
	c.Invalidate(context.Background(), postID)

	gen, err := server.Get(genKey(postID))
	require.NoError(t, err)
	assert.Equal(t, "2", gen)
	assert.Positive(t, server.TTL(genKey(postID)))
}

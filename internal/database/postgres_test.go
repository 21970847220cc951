package database

import (
	"context"
	"os"
	"sync"
	"testing"

	"gator-commons/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// These tests run against a real postgres, where likes and reconcile take row locks.
// They only run when TEST_DATABASE_URL is set, and they share whatever tables that
// database already has, so every name they create is unique and every assertion is
// scoped to rows they own.
func newPostgresTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := NewPostgresDB(dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	require.NoError(t, store.InitializeTables(context.Background()))
	return store
}

func seedPostgresUsers(t *testing.T, store *Store, n int) []models.Session {
	t.Helper()
	sessions := make([]models.Session, n)
	for i := range sessions {
		user, err := models.NewUser("pg_"+uuid.NewString()[:12], "secret", bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, store.CreateUser(context.Background(), user))
		sessions[i] = models.NewSession(user)
	}
	return sessions
}

func likeRows(t *testing.T, store *Store, postID uuid.UUID) int {
	t.Helper()
	var rows int
	require.NoError(t, store.DB.GetContext(context.Background(), &rows,
		`SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID))
	return rows
}

func TestPostgresConcurrentTogglesMatchRows(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()
	sessions := seedPostgresUsers(t, store, 8)
	post := seedPost(t, store, sessions[0], "pg toggles")

	// Three toggles per user: each ends liked. The same user's toggles race each
	// other on the unique (post_id, user_id) pair.
	var wg sync.WaitGroup
	for _, s := range sessions {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(userID uuid.UUID) {
				defer wg.Done()
				_, err := store.ToggleLike(ctx, post.ID, userID)
				assert.NoError(t, err)
			}(s.UserID)
		}
	}
	wg.Wait()

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, len(sessions), likeRows(t, store, post.ID))
	assert.Equal(t, len(sessions), got.LikesCount)

	for _, s := range sessions {
		liked, err := store.HasLike(ctx, post.ID, s.UserID)
		require.NoError(t, err)
		assert.True(t, liked)
	}
}

func TestPostgresDuplicateLikeInsertIsNoOp(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()
	session := seedPostgresUsers(t, store, 1)[0]
	post := seedPost(t, store, session, "pg duplicate")

	_, err := store.ToggleLike(ctx, post.ID, session.UserID)
	require.NoError(t, err)

	res, err := store.DB.NamedExecContext(ctx, `
		INSERT INTO likes (id, post_id, user_id, created_at)
		VALUES (:id, :post_id, :user_id, :created_at)
		ON CONFLICT (post_id, user_id) DO NOTHING`, models.NewLike(post.ID, session.UserID))
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Equal(t, 1, likeRows(t, store, post.ID))
}

func TestPostgresRecountRacingToggles(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()
	sessions := seedPostgresUsers(t, store, 6)
	post := seedPost(t, store, sessions[0], "pg recount")

	_, err := store.DB.ExecContext(ctx, `UPDATE posts SET likes_count = 40 WHERE id = $1`, post.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := store.ToggleLike(ctx, post.ID, userID)
			assert.NoError(t, err)
		}(s.UserID)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := store.RecountCounters(ctx)
		assert.NoError(t, err)
	}()
	wg.Wait()

	// Toggles that committed before the recount carried the drift forward, so run
	// it once more now that writers are done.
	_, err = store.RecountCounters(ctx)
	require.NoError(t, err)

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, len(sessions), likeRows(t, store, post.ID))
	assert.Equal(t, len(sessions), got.LikesCount)
}

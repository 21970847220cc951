package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"gator-commons/internal/api"
	"gator-commons/internal/app"
	"gator-commons/internal/config"
	"gator-commons/internal/database"
	"gator-commons/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	c := config.DefaultConfig()
	c.Database.Type = "sqlite"
	c.Database.SQLitePath = ":memory:"
	c.Auth.JWTSecret = "integration-secret"
	c.Auth.BcryptCost = 4
	return c
}

type client struct {
	t     *testing.T
	url   string
	token string
}

func (c *client) call(method, path string, body, out interface{}) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.url+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) login(username string) {
	c.t.Helper()
	creds := map[string]string{"username": username, "password": "password123"}
	require.Equal(c.t, http.StatusCreated, c.call(http.MethodPost, "/user/register", creds, nil))

	var login api.LoginResponse
	require.Equal(c.t, http.StatusOK, c.call(http.MethodPost, "/user/login", creds, &login))
	c.token = login.Token
}

func TestIntegrationFlow(t *testing.T) {
	application, err := app.New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer application.Close(context.Background())

	ts := httptest.NewServer(application.Handler())
	defer ts.Close()

	// Step 1: two users sign up and log in
	author := &client{t: t, url: ts.URL}
	author.login("author")
	reader := &client{t: t, url: ts.URL}
	reader.login("reader")

	// Step 2: author writes a post
	var post models.Post
	require.Equal(t, http.StatusCreated, author.call(http.MethodPost, "/posts",
		map[string]string{"title": "First post", "content": "Hello commons"}, &post))

	// Step 3: reader comments and likes it
	require.Equal(t, http.StatusCreated, reader.call(http.MethodPost, "/post/comments",
		map[string]string{"postId": post.ID.String(), "content": "Welcome!"}, nil))
	var state models.LikeState
	require.Equal(t, http.StatusOK, reader.call(http.MethodPost, "/post/like",
		map[string]string{"postId": post.ID.String()}, &state))
	assert.True(t, state.Liked)

	// Step 4: anyone sees the counters on the listing
	anon := &client{t: t, url: ts.URL}
	var page models.PostPage
	require.Equal(t, http.StatusOK, anon.call(http.MethodGet, "/posts?page=1", nil, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Items[0].LikesCount)
	assert.Equal(t, 1, page.Items[0].CommentsCount)

	// Step 5: health reports the post
	var health api.HealthResponse
	require.Equal(t, http.StatusOK, anon.call(http.MethodGet, "/health", nil, &health))
	assert.Equal(t, 1, health.PostCount)

	// Step 6: logout
	assert.Equal(t, http.StatusOK, reader.call(http.MethodPost, "/user/logout", nil, nil))
}

func TestConcurrentLikesOverHTTP(t *testing.T) {
	application, err := app.New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer application.Close(context.Background())

	ts := httptest.NewServer(application.Handler())
	defer ts.Close()

	author := &client{t: t, url: ts.URL}
	author.login("author")
	var post models.Post
	require.Equal(t, http.StatusCreated, author.call(http.MethodPost, "/posts",
		map[string]string{"title": "Popular", "content": "like me"}, &post))

	const users = 8
	clients := make([]*client, users)
	for i := range clients {
		clients[i] = &client{t: t, url: ts.URL}
		clients[i].login("liker" + string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			c.call(http.MethodPost, "/post/like", map[string]string{"postId": post.ID.String()}, nil)
		}(c)
	}
	wg.Wait()

	var fetched models.Post
	require.Equal(t, http.StatusOK, author.call(http.MethodGet, "/post?id="+post.ID.String(), nil, &fetched))
	assert.Equal(t, users, fetched.LikesCount)
}

func TestMigrateAndReconcileCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commons.db")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("JWT_SECRET", "cli-secret")

	rootCmd.SetArgs([]string{"migrate"})
	require.NoError(t, rootCmd.Execute())

	// Seed drift directly in the store.
	store, err := database.NewSQLiteDB(path, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	user, err := models.NewUser("drifter", "password123", 4)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, user))
	post, err := models.NewPost(models.NewSession(user), "Drifted", "body")
	require.NoError(t, err)
	require.NoError(t, store.CreatePost(ctx, post))
	_, err = store.DB.ExecContext(ctx, `UPDATE posts SET likes_count = 5 WHERE id = ?`, post.ID)
	require.NoError(t, err)
	require.NoError(t, store.Close(ctx))

	rootCmd.SetArgs([]string{"reconcile"})
	require.NoError(t, rootCmd.Execute())

	store, err = database.NewSQLiteDB(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close(ctx)
	fixed, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, fixed.LikesCount)
}

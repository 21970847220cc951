package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gator-commons/internal/database"
	"gator-commons/internal/engine/actors"
	"gator-commons/internal/models"
	"gator-commons/internal/services"
	"gator-commons/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestEngine(t *testing.T) (*actor.ActorSystem, *Engine, *utils.MetricsCollector) {
	t.Helper()
	return newTestEngineWith(t, bcrypt.MinCost, 2)
}

func newTestEngineWith(t *testing.T, bcryptCost, authWorkers int) (*actor.ActorSystem, *Engine, *utils.MetricsCollector) {
	t.Helper()
	logger := zap.NewNop()

	store, err := database.NewSQLiteDB(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	require.NoError(t, store.InitializeTables(context.Background()))

	posts := services.NewPostService(store, nil, 10, logger)
	svc := Services{
		Auth:      services.NewAuthService(store, bcryptCost, logger),
		Posts:     posts,
		Comments:  services.NewCommentService(store, posts, logger),
		Likes:     services.NewLikeService(store, posts, logger),
		Guestbook: services.NewGuestbookService(store, 20, logger),
	}

	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	return system, NewEngine(system, svc, metrics, logger, time.Second, authWorkers), metrics
}

func request(t *testing.T, system *actor.ActorSystem, pid *actor.PID, msg interface{}) interface{} {
	t.Helper()
	result, err := system.Root.RequestFuture(pid, msg, 5*time.Second).Result()
	require.NoError(t, err)
	return result
}

func TestAuthActorRegisterAndLogin(t *testing.T) {
	system, engine, _ := newTestEngine(t)

	result := request(t, system, engine.GetAuthActor(), &actors.RegisterUserMsg{Username: "testuser", Password: "password123"})
	user, ok := result.(*models.User)
	require.True(t, ok, "expected *models.User, got %T", result)
	assert.Equal(t, "testuser", user.Username)

	result = request(t, system, engine.GetAuthActor(), &actors.LoginMsg{Username: "testuser", Password: "password123"})
	session, ok := result.(*models.Session)
	require.True(t, ok, "expected *models.Session, got %T", result)
	assert.Equal(t, user.ID, session.UserID)

	result = request(t, system, engine.GetAuthActor(), &actors.LoginMsg{Username: "testuser", Password: "wrongpassword"})
	err, ok := result.(error)
	require.True(t, ok)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))

	result = request(t, system, engine.GetAuthActor(), &actors.EndSessionMsg{Session: *session})
	assert.Equal(t, true, result)
}

func TestPostCommentLikeFlow(t *testing.T) {
	system, engine, metrics := newTestEngine(t)

	request(t, system, engine.GetAuthActor(), &actors.RegisterUserMsg{Username: "alice", Password: "1234"})
	session := request(t, system, engine.GetAuthActor(), &actors.LoginMsg{Username: "alice", Password: "1234"}).(*models.Session)

	post := request(t, system, engine.GetPostActor(), &actors.CreatePostMsg{Session: *session, Title: "T", Content: "C"}).(*models.Post)
	assert.Equal(t, "alice", post.AuthorName)

	state := request(t, system, engine.GetLikeActor(), &actors.ToggleLikeMsg{Session: *session, PostID: post.ID}).(*models.LikeState)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.LikesCount)

	liked := request(t, system, engine.GetLikeActor(), &actors.GetLikeStateMsg{PostID: post.ID, UserID: session.UserID}).(*models.LikeState)
	assert.True(t, liked.Liked)

	comment := request(t, system, engine.GetCommentActor(), &actors.CreateCommentMsg{Session: *session, PostID: post.ID, Content: "nice"}).(*models.Comment)
	assert.Equal(t, "nice", comment.Content)

	comments := request(t, system, engine.GetCommentActor(), &actors.GetCommentsForPostMsg{PostID: post.ID}).([]*models.Comment)
	require.Len(t, comments, 1)

	got := request(t, system, engine.GetPostActor(), &actors.GetPostMsg{PostID: post.ID}).(*models.Post)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 1, got.CommentsCount)

	page := request(t, system, engine.GetPostActor(), &actors.ListPostsMsg{Page: 1}).(*models.PostPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.TotalPages)

	count := request(t, system, engine.GetPostActor(), &actors.GetCountsMsg{}).(int)
	assert.Equal(t, 1, count)

	adjusted := request(t, system, engine.GetPostActor(), &actors.AdjustCounterMsg{PostID: post.ID, Field: models.LikesCount, Delta: -1}).(*models.Post)
	assert.Equal(t, 0, adjusted.LikesCount)

	snapshot := metrics.Snapshot()
	assert.Contains(t, snapshot.Operations, "toggle_like")
	assert.Contains(t, snapshot.Operations, "create_comment")
	assert.Zero(t, snapshot.Errors)
}

func TestActorsAnswerWithAppErrors(t *testing.T) {
	system, engine, metrics := newTestEngine(t)

	result := request(t, system, engine.GetPostActor(), &actors.GetPostMsg{PostID: uuid.New()})
	err, ok := result.(error)
	require.True(t, ok)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))

	result = request(t, system, engine.GetPostActor(), &actors.CreatePostMsg{Title: "T", Content: "C"})
	err, ok = result.(error)
	require.True(t, ok)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))

	assert.Equal(t, uint64(2), metrics.Snapshot().Errors)
}

func TestUnknownMessagesAreRejected(t *testing.T) {
	system, engine, _ := newTestEngine(t)

	type bogusMsg struct{}
	for _, pid := range []*actor.PID{
		engine.GetAuthActor(),
		engine.GetPostActor(),
		engine.GetCommentActor(),
		engine.GetLikeActor(),
		engine.GetGuestbookActor(),
	} {
		start := time.Now()
		result := request(t, system, pid, &bogusMsg{})
		err, ok := result.(error)
		require.True(t, ok, "expected an error, got %T", result)
		assert.True(t, utils.IsErrorCode(err, utils.ErrMessageRejected))
		assert.Less(t, time.Since(start), time.Second)
	}
}

func TestConcurrentLoginsHashInParallel(t *testing.T) {
	if testing.Short() {
		t.Skip("hashes at the production bcrypt cost")
	}
	workers := runtime.NumCPU()
	if workers < 4 {
		t.Skip("needs at least 4 CPUs to observe parallel hashing")
	}
	if workers > 8 {
		workers = 8
	}
	system, engine, _ := newTestEngineWith(t, bcrypt.DefaultCost, workers)

	const username, password = "crowd", "password123"
	request(t, system, engine.GetAuthActor(), &actors.RegisterUserMsg{Username: username, Password: password})

	start := time.Now()
	request(t, system, engine.GetAuthActor(), &actors.LoginMsg{Username: username, Password: password})
	single := time.Since(start)

	logins := 4 * workers
	var ok, failed int32
	var wg sync.WaitGroup
	start = time.Now()
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := system.Root.RequestFuture(engine.GetAuthActor(), &actors.LoginMsg{Username: username, Password: password}, 5*time.Second).Result()
			if _, isSession := result.(*models.Session); err == nil && isSession {
				atomic.AddInt32(&ok, 1)
				return
			}
			atomic.AddInt32(&failed, 1)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	assert.Equal(t, int32(logins), atomic.LoadInt32(&ok))
	assert.Zero(t, atomic.LoadInt32(&failed))
	serial := time.Duration(logins) * single
	assert.Less(t, elapsed, serial/2, fmt.Sprintf("%d logins took %s; one login takes %s", logins, elapsed, single))
}

func TestGuestbookActor(t *testing.T) {
	system, engine, _ := newTestEngine(t)

	entry := request(t, system, engine.GetGuestbookActor(), &actors.AddEntryMsg{
		AuthorName: "Bo", Message: "hello", Email: "bo@example.com",
	}).(*models.GuestbookEntry)
	assert.False(t, entry.IsEmailPublic)

	entries := request(t, system, engine.GetGuestbookActor(), &actors.ListEntriesMsg{}).([]*models.GuestbookEntry)
	require.Len(t, entries, 1)

	count := request(t, system, engine.GetGuestbookActor(), &actors.GetCountsMsg{}).(int)
	assert.Equal(t, 1, count)
}

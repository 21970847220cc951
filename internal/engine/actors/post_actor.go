package actors

import (
	"time"

	"gator-commons/internal/models"
	"gator-commons/internal/services"
	"gator-commons/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message types for Post operations
type (
	CreatePostMsg struct {
		Session models.Session
		Title   string
		Content string
	}

	GetPostMsg struct {
		PostID uuid.UUID
	}

	ListPostsMsg struct {
		Page     int
		PageSize int
	}

	// AdjustCounterMsg is the administrative path to a post counter. Likes and
	// comments move counters through their own actors.
	AdjustCounterMsg struct {
		PostID uuid.UUID
		Field  models.CounterField
		Delta  int
	}
)

// PostActor handles post-related operations
type PostActor struct {
	base
	posts *services.PostService
}

func NewPostActor(posts *services.PostService, metrics *utils.MetricsCollector, logger *zap.Logger, storeTimeout time.Duration) actor.Actor {
	return &PostActor{
		base:  newBase("post_actor", metrics, logger, storeTimeout),
		posts: posts,
	}
}

// Receive handles incoming messages
func (a *PostActor) Receive(context actor.Context) {
	msg := context.Message()
	if a.lifecycle(msg) {
		return
	}

	start := time.Now()
	ctx, cancel := a.storeContext()
	defer cancel()

	switch msg := msg.(type) {
	case *CreatePostMsg:
		post, err := a.posts.CreatePost(ctx, msg.Session, msg.Title, msg.Content)
		a.respond(context, "create_post", start, post, err)

	case *GetPostMsg:
		post, err := a.posts.GetPost(ctx, msg.PostID)
		a.respond(context, "get_post", start, post, err)

	case *ListPostsMsg:
		page, err := a.posts.ListPosts(ctx, msg.Page, msg.PageSize)
		a.respond(context, "list_posts", start, page, err)

	case *AdjustCounterMsg:
		post, err := a.posts.AdjustCounter(ctx, msg.PostID, msg.Field, msg.Delta)
		a.respond(context, "adjust_counter", start, post, err)

	case *GetCountsMsg:
		count, err := a.posts.CountPosts(ctx)
		a.respond(context, "count_posts", start, count, err)

	default:
		a.unknown(context, msg)
	}
}

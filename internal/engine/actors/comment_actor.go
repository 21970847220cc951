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

// Message types for CommentActor
type (
	CreateCommentMsg struct {
		Session models.Session
		PostID  uuid.UUID
		Content string
	}

	GetCommentsForPostMsg struct {
		PostID uuid.UUID
	}
)

// CommentActor manages comment operations
type CommentActor struct {
	base
	comments *services.CommentService
}

func NewCommentActor(comments *services.CommentService, metrics *utils.MetricsCollector, logger *zap.Logger, storeTimeout time.Duration) actor.Actor {
	return &CommentActor{
		base:     newBase("comment_actor", metrics, logger, storeTimeout),
		comments: comments,
	}
}

func (a *CommentActor) Receive(context actor.Context) {
	msg := context.Message()
	if a.lifecycle(msg) {
		return
	}

	start := time.Now()
	ctx, cancel := a.storeContext()
	defer cancel()

	switch msg := msg.(type) {
	case *CreateCommentMsg:
		comment, err := a.comments.AddComment(ctx, msg.Session, msg.PostID, msg.Content)
		a.respond(context, "create_comment", start, comment, err)

	case *GetCommentsForPostMsg:
		comments, err := a.comments.ListComments(ctx, msg.PostID)
		a.respond(context, "get_post_comments", start, comments, err)

	default:
		a.unknown(context, msg)
	}
}

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

type (
	ToggleLikeMsg struct {
		Session models.Session
		PostID  uuid.UUID
	}

	GetLikeStateMsg struct {
		PostID uuid.UUID
		UserID uuid.UUID
	}
)

// LikeActor serializes like toggles coming through this engine. Correctness across
// engines still rests on the store transaction.
type LikeActor struct {
	base
	likes *services.LikeService
}

func NewLikeActor(likes *services.LikeService, metrics *utils.MetricsCollector, logger *zap.Logger, storeTimeout time.Duration) actor.Actor {
	return &LikeActor{
		base:  newBase("like_actor", metrics, logger, storeTimeout),
		likes: likes,
	}
}

func (a *LikeActor) Receive(context actor.Context) {
	msg := context.Message()
	if a.lifecycle(msg) {
		return
	}

	start := time.Now()
	ctx, cancel := a.storeContext()
	defer cancel()

	switch msg := msg.(type) {
	case *ToggleLikeMsg:
		state, err := a.likes.ToggleLike(ctx, msg.Session, msg.PostID)
		a.respond(context, "toggle_like", start, state, err)

	case *GetLikeStateMsg:
		liked, err := a.likes.GetLikeState(ctx, msg.PostID, msg.UserID)
		var state *models.LikeState
		if err == nil {
			state = &models.LikeState{PostID: msg.PostID, Liked: liked}
		}
		a.respond(context, "get_like_state", start, state, err)

	default:
		a.unknown(context, msg)
	}
}

package engine

import (
	"time"

	"gator-commons/internal/engine/actors"
	"gator-commons/internal/services"
	"gator-commons/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/router"
	"go.uber.org/zap"
)

// Services are the domain services the engine's actors front.
type Services struct {
	Auth      *services.AuthService
	Posts     *services.PostService
	Comments  *services.CommentService
	Likes     *services.LikeService
	Guestbook *services.GuestbookService
}

// Engine coordinates communication between actors
type Engine struct {
	authActor      *actor.PID
	postActor      *actor.PID
	commentActor   *actor.PID
	likeActor      *actor.PID
	guestbookActor *actor.PID
}

// NewEngine spawns one actor per concern on the system's root context. Auth work is
// CPU-bound password hashing, so its PID fronts a round-robin pool of authWorkers
// actors instead of a single mailbox.
func NewEngine(system *actor.ActorSystem, svc Services, metrics *utils.MetricsCollector, logger *zap.Logger, storeTimeout time.Duration, authWorkers int) *Engine {
	context := system.Root

	spawn := func(producer func() actor.Actor) *actor.PID {
		return context.Spawn(actor.PropsFromProducer(producer))
	}
	if authWorkers < 1 {
		authWorkers = 1
	}

	return &Engine{
		authActor: context.Spawn(router.NewRoundRobinPool(authWorkers, actor.WithProducer(func() actor.Actor {
			return actors.NewAuthActor(svc.Auth, metrics, logger, storeTimeout)
		}))),
		postActor: spawn(func() actor.Actor {
			return actors.NewPostActor(svc.Posts, metrics, logger, storeTimeout)
		}),
		commentActor: spawn(func() actor.Actor {
			return actors.NewCommentActor(svc.Comments, metrics, logger, storeTimeout)
		}),
		likeActor: spawn(func() actor.Actor {
			return actors.NewLikeActor(svc.Likes, metrics, logger, storeTimeout)
		}),
		guestbookActor: spawn(func() actor.Actor {
			return actors.NewGuestbookActor(svc.Guestbook, metrics, logger, storeTimeout)
		}),
	}
}

// GetAuthActor returns the PID of the auth actor
func (e *Engine) GetAuthActor() *actor.PID {
	return e.authActor
}

// GetPostActor returns the PID of the post actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}

func (e *Engine) GetCommentActor() *actor.PID {
	return e.commentActor
}

func (e *Engine) GetLikeActor() *actor.PID {
	return e.likeActor
}

func (e *Engine) GetGuestbookActor() *actor.PID {
	return e.guestbookActor
}

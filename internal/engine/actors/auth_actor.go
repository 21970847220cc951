package actors

import (
	"fmt"
	"time"

	"gator-commons/internal/models"
	"gator-commons/internal/services"
	"gator-commons/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// Message types for AuthActor
type (
	RegisterUserMsg struct {
		Username string
		Password string
	}

	LoginMsg struct {
		Username string
		Password string
	}

	EndSessionMsg struct {
		Session models.Session
	}
)

// AuthActor handles sign-up, login and logout.
type AuthActor struct {
	base
	auth *services.AuthService
}

func NewAuthActor(auth *services.AuthService, metrics *utils.MetricsCollector, logger *zap.Logger, storeTimeout time.Duration) actor.Actor {
	return &AuthActor{
		base: newBase("auth_actor", metrics, logger, storeTimeout),
		auth: auth,
	}
}

func (a *AuthActor) Receive(context actor.Context) {
	msg := context.Message()
	if a.lifecycle(msg) {
		return
	}

	start := time.Now()
	ctx, cancel := a.storeContext()
	defer cancel()

	switch msg := msg.(type) {
	case *RegisterUserMsg:
		user, err := a.auth.Register(ctx, msg.Username, msg.Password)
		a.respond(context, "register", start, user, err)

	case *LoginMsg:
		session, err := a.auth.Authenticate(ctx, msg.Username, msg.Password)
		a.respond(context, "login", start, session, err)

	case *EndSessionMsg:
		err := a.auth.EndSession(ctx, msg.Session)
		a.respond(context, "logout", start, true, err)

	default:
		a.unknown(context, msg)
	}
}

func typeName(msg interface{}) string {
	return fmt.Sprintf("%T", msg)
}

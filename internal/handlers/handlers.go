package handlers

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gator-commons/internal/api"
	"gator-commons/internal/engine"
	"gator-commons/internal/middleware"
	"gator-commons/internal/models"
	"gator-commons/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRequestTimeout bounds each actor round-trip a handler makes.
const DefaultRequestTimeout = 5 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx stdctx.Context) error
}

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Auth           *middleware.Authenticator
	Metrics        *utils.MetricsCollector
	DB             Pinger
	Logger         *zap.Logger
	CORS           *middleware.CORSConfig
	RequestTimeout time.Duration
	MetricsEnabled bool
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	engine *engine.Engine,
	auth *middleware.Authenticator,
	metrics *utils.MetricsCollector,
	db Pinger,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         engine,
		Auth:           auth,
		Metrics:        metrics,
		DB:             db,
		Logger:         logger.Named("handlers"),
		CORS:           middleware.DefaultCORSConfig(nil),
		RequestTimeout: DefaultRequestTimeout,
		MetricsEnabled: true,
	}
}

// Routes registers every endpoint and wraps the mux in CORS and request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	handle := func(path string, handler http.HandlerFunc) {
		mux.HandleFunc(path, s.Auth.ApplyJWTMiddleware(handler, path))
	}

	handle("/health", s.HandleHealth())

	handle("/user/register", s.HandleUserRegistration())
	handle("/user/login", s.HandleUserLogin())
	handle("/user/logout", s.HandleUserLogout())

	handle("/posts", s.HandlePosts())
	handle("/post", s.HandleGetPost())
	handle("/post/comments", s.HandleComments())
	handle("/post/like", s.HandleLike())

	handle("/guestbook", s.HandleGuestbook())

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(s.CORS)(handler)
	handler = middleware.RequestLogger(s.Logger)(handler)
	return handler
}

// request sends msg to pid and waits for the reply. Actors answer failures with an error
// value, which is returned as the error here.
func (s *Server) request(pid *actor.PID, msg interface{}) (interface{}, error) {
	result, err := s.Context.RequestFuture(pid, msg, s.RequestTimeout).Result()
	if err != nil {
		if errors.Is(err, actor.ErrTimeout) {
			return nil, utils.NewActorTimeoutError(pid.Id)
		}
		return nil, utils.NewAppError(utils.ErrMessageRejected, "request could not be delivered", err)
	}
	if resultErr, ok := result.(error); ok {
		return nil, resultErr
	}
	return result, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps err to a status code. Messages of unexpected errors stay in the log.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := utils.ErrorCode(err)
	status := utils.AppErrorToHTTPStatus(code)

	message := "internal server error"
	var appErr *utils.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", zap.String("code", code), zap.Error(err))
	}

	writeJSON(w, status, api.ErrorResponse{Error: message, Code: code})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{
		Error: "method not allowed",
		Code:  "METHOD_NOT_ALLOWED",
	})
}

// session returns the caller set by the JWT middleware.
func session(r *http.Request) (models.Session, error) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return models.Session{}, utils.NewUnauthorizedError("missing session")
	}
	return sess, nil
}

func parseID(raw, name string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, utils.NewValidationError(name + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, utils.NewValidationError("invalid " + name + " format")
	}
	return id, nil
}

// decode reads a JSON body of at most 1 MiB into dst.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return utils.NewValidationError("invalid request body")
	}
	return nil
}

// Package app assembles the store, cache, services, actor engine and HTTP server from a
// loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gator-commons/internal/cache"
	"gator-commons/internal/config"
	"gator-commons/internal/database"
	"gator-commons/internal/engine"
	"gator-commons/internal/handlers"
	"gator-commons/internal/middleware"
	"gator-commons/internal/services"
	"gator-commons/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *database.Store
	Redis   *redis.Client
	Metrics *utils.MetricsCollector
	System  *actor.ActorSystem
	Engine  *engine.Engine
	Server  *handlers.Server
}

// OpenStore connects to the configured database without touching the schema.
func OpenStore(cfg *config.Config, logger *zap.Logger) (*database.Store, error) {
	driver, dsn := cfg.Database.DSN()
	if driver == database.DriverSQLite {
		return database.NewSQLiteDB(dsn, logger)
	}
	return database.NewStore(driver, dsn, logger)
}

// New wires every component. Tables are created if missing. A configured but unreachable
// redis is a startup error; leaving REDIS_ADDR empty disables the cache.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.InitializeTables(ctx); err != nil {
		store.Close(ctx)
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Metrics: utils.NewMetricsCollector(),
	}

	var postCache services.PostCache
	if cfg.Cache.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			store.Close(ctx)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Redis = client
		postCache = cache.NewPostCache(client, cfg.Cache.PostTTL, logger)
		logger.Info("post cache enabled", zap.String("addr", cfg.Cache.RedisAddr), zap.Duration("ttl", cfg.Cache.PostTTL))
	}

	posts := services.NewPostService(store, postCache, cfg.Content.PageSize, logger)
	svc := engine.Services{
		Auth:      services.NewAuthService(store, cfg.Auth.BcryptCost, logger),
		Posts:     posts,
		Comments:  services.NewCommentService(store, posts, logger),
		Likes:     services.NewLikeService(store, posts, logger),
		Guestbook: services.NewGuestbookService(store, cfg.Content.GuestbookLimit, logger),
	}

	auth, err := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.System = actor.NewActorSystem()
	a.Engine = engine.NewEngine(a.System, svc, a.Metrics, logger, cfg.Server.RequestTimeout, cfg.Auth.Workers)

	a.Server = handlers.NewServer(a.System, a.Engine, auth, a.Metrics, store, logger)
	a.Server.CORS = middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	a.Server.RequestTimeout = cfg.Server.RequestTimeout
	a.Server.MetricsEnabled = cfg.Server.MetricsEnabled

	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.Server.Routes()
}

// Close releases the cache client and the database connection.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close(ctx))
	}
	return errors.Join(errs...)
}

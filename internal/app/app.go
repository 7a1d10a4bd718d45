// Package app assembles stores, caches and services from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"formsapi/internal/cache"
	"formsapi/internal/config"
	"formsapi/internal/repository"
	"formsapi/internal/repository/memory"
	"formsapi/internal/service"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	UserRepo   repository.UserRepo
	FormRepo   repository.FormRepo
	ResultRepo repository.ResultRepo
	TokenRepo  repository.TokenRepo

	TokenCache cache.TokenCache // nil when caching is disabled
	FormCache  cache.FormCache  // nil when caching is disabled

	AuthService   *service.AuthService
	UserService   *service.UserService
	FormService   *service.FormService
	ResultService *service.ResultService

	mongoClient *mongo.Client
	redisClient *redis.Client
}

// New connects the configured backends and wires the services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	switch cfg.Store {
	case config.StoreMemory:
		store := memory.NewStore()
		a.UserRepo = store.Users()
		a.FormRepo = store.Forms()
		a.ResultRepo = store.Results()
		a.TokenRepo = store.Tokens()
		slog.Info("using in-memory store")
	default:
		client, err := repository.Connect(ctx, cfg.Mongo.URI, cfg.MongoTimeout())
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		a.mongoClient = client
		db := client.Database(cfg.Mongo.Database)
		userRepo := repository.NewUserRepo(db)
		resultRepo := repository.NewResultRepo(db)
		tokenRepo := repository.NewTokenRepo(db)
		if err := repository.EnsureIndexes(ctx, userRepo, resultRepo, tokenRepo); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		a.UserRepo = userRepo
		a.FormRepo = repository.NewFormRepo(db)
		a.ResultRepo = resultRepo
		a.TokenRepo = tokenRepo
		slog.Info("connected to mongodb", "database", cfg.Mongo.Database)
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.redisClient = rdb
		a.TokenCache = cache.NewTokenCache(rdb, cfg.CacheTTL())
		a.FormCache = cache.NewFormCache(rdb, cfg.CacheTTL())
		slog.Info("connected to redis", "addr", cfg.Redis.Addr)
	}

	a.AuthService = service.NewAuthService(a.UserRepo, a.TokenRepo, a.TokenCache, cfg.Auth.TokenSignKey)
	a.UserService = service.NewUserService(a.UserRepo)
	a.FormService = service.NewFormService(a.FormRepo, a.FormCache)
	a.ResultService = service.NewResultService(a.FormService, a.ResultRepo, a.UserRepo)
	return a, nil
}

// Close releases backend connections
func (a *App) Close(ctx context.Context) {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			slog.Warn("disconnect mongodb", "error", err)
		}
	}
}

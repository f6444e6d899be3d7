// @title           Advertisement Board API
// @version         1.0
// @description     Accounts, advertisements and comments for a public notice board.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/adboard/board-api/internal/api"
	"github.com/adboard/board-api/internal/api/handler"
	"github.com/adboard/board-api/internal/core/ports"
	"github.com/adboard/board-api/internal/core/service"
	"github.com/adboard/board-api/internal/infrastructure/config"
	"github.com/adboard/board-api/internal/infrastructure/db/mongo"
	"github.com/adboard/board-api/internal/infrastructure/db/redis"
	"github.com/adboard/board-api/internal/infrastructure/db/sqlstore"
	"github.com/adboard/board-api/internal/infrastructure/security"
	"github.com/adboard/board-api/internal/infrastructure/seed"
	"github.com/adboard/board-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "board-api",
	})

	store, closeStore, err := openStore(ctx, cfg, logger.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("open store")
	}
	defer closeStore()

	readiness := map[string]handler.PingFunc{"database": store.Ping}

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer rdb.Close()

		idem = redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn().Msg("REDIS_ADDR not set, Idempotency-Key header is ignored")
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := security.NewJWTManager(cfg.Auth.JWTSecret)

	if cfg.SeedUsersFile != "" {
		n, err := seed.FromFile(ctx, cfg.SeedUsersFile, store, hasher, logger.Component("seed"))
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedUsersFile).Msg("seed users")
		}
		log.Info().Int("created", n).Msg("seed users applied")
	}

	e := api.NewRouter(api.Dependencies{
		Auth:           service.NewAuthService(store, hasher, tokens, cfg.Auth.TokenTTL, logger.Component("auth")),
		Users:          service.NewUserService(store, hasher, logger.Component("users")),
		Advertisements: service.NewAdvertisementService(store, idem, logger.Component("advertisements")),
		Comments:       service.NewCommentService(store, logger.Component("comments")),
		Readiness:      readiness,
		Log:            logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore returns the store selected by DB_DRIVER with its schema in place.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, func(), error) {
	if cfg.Database.Driver == config.DriverMongo {
		s, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Close(closeCtx); err != nil {
				log.Error().Err(err).Msg("close mongo")
			}
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return s, closeFn, nil
	}

	s, err := sqlstore.Open(ctx, sqlstore.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if err := s.Migrate(ctx, log); err != nil {
		closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwils5/cloudbooks-manager/internal/api"
	"github.com/bwils5/cloudbooks-manager/internal/api/metrics"
	"github.com/bwils5/cloudbooks-manager/internal/core/service"
	"github.com/bwils5/cloudbooks-manager/internal/infrastructure/config"
	mongodb "github.com/bwils5/cloudbooks-manager/internal/infrastructure/db/mongo"
	redisdb "github.com/bwils5/cloudbooks-manager/internal/infrastructure/db/redis"
	"github.com/bwils5/cloudbooks-manager/internal/infrastructure/queue"
	"github.com/bwils5/cloudbooks-manager/internal/infrastructure/storage"
	"github.com/bwils5/cloudbooks-manager/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		if cfg.Env != "development" {
			log.Fatal().Msg("JWT_SECRET must be set outside development")
		}
		log.Warn().Msg("JWT_SECRET not set, using development default")
		jwtSecret = "dev-only-secret"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	bookRepo := mongodb.NewBookRepository(db)
	activityRepo := mongodb.NewActivityRepository(db)

	// --- Redis (advisory: the service runs without it) ---
	var throttle service.LoginThrottle
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
	} else {
		defer rdb.Close()
		throttle = redisdb.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.AttemptWindow)
	}

	// --- Uploads ---
	files, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to initialise upload store")
	}

	// --- Services ---
	authService := service.NewAuthService(userRepo, jwtSecret, cfg.TokenTTL, throttle, log)
	bookService := service.NewBookService(bookRepo, log)
	activityService := service.NewActivityService(activityRepo, log)

	recorder := queue.NewDispatcher(0, activityService, queue.Metrics{
		Recorded: metrics.ActivityRecordedTotal,
		Dropped:  metrics.ActivityDroppedTotal,
		Depth:    metrics.ActivityQueueDepth,
	}, log)
	recorder.Start(ctx)

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Books:    bookService,
		Activity: activityService,
		Recorder: recorder,
		Files:    files,
		Mongo:    db,
		Redis:    rdb,
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

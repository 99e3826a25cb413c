package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/neonsnooker/internal/api"
	"github.com/playmatatu/neonsnooker/internal/config"
	"github.com/playmatatu/neonsnooker/internal/database"
	"github.com/playmatatu/neonsnooker/internal/game"
	"github.com/playmatatu/neonsnooker/internal/logging"
	"github.com/playmatatu/neonsnooker/internal/migrations"
	"github.com/playmatatu/neonsnooker/internal/physics"
	"github.com/playmatatu/neonsnooker/internal/redis"
	"github.com/playmatatu/neonsnooker/internal/store"
	"github.com/playmatatu/neonsnooker/internal/ws"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	tuning, err := cfg.Tuning()
	if err != nil {
		logger.Fatal("failed to load physics tuning", zap.String("path", cfg.PhysicsFile), zap.Error(err))
	}

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		logger.Info("running DB migrations on startup")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations", logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	game.InitializeManager(rdb, store.New(db), game.ManagerOptions{
		FrameWidth:  cfg.FrameWidth,
		FrameHeight: cfg.FrameHeight,
		TickRate:    cfg.TickRate,
		MaxSessions: cfg.MaxSessions,
		SessionTTL:  cfg.SessionTTL(),
		IdleTimeout: cfg.IdleTimeout(),
		Tuning:      tuning,
		NewWorld:    physics.Factory(logger),
	}, logger)

	hub := ws.NewHub(logger)
	go hub.Run(ctx)
	ws.StartEventSubscriber(ctx, rdb, hub)
	game.StartIdleWorker(ctx, game.Manager, rdb, cfg.IdlePoll(), logger.Named("idle"))

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, game.Manager, hub, cfg, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		logger.Info("starting Neon Snooker server", zap.String("port", cfg.Port), zap.Int("tick_rate", cfg.TickRate))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
	game.Manager.Shutdown(shutdownCtx)
}

package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/playmatatu/neonsnooker/internal/audio"
	"github.com/playmatatu/neonsnooker/internal/config"
	"github.com/playmatatu/neonsnooker/internal/desktop"
	"github.com/playmatatu/neonsnooker/internal/game"
	"github.com/playmatatu/neonsnooker/internal/logging"
	"github.com/playmatatu/neonsnooker/internal/physics"
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

	player := audio.NewPlayer(cfg.AudioVolume, logger)
	if err := player.Initialize(); err != nil {
		logger.Warn("audio unavailable, playing silently", zap.Error(err))
	}
	defer player.Close()

	session, err := game.NewSession(game.SessionOptions{
		ID:          "local",
		FrameWidth:  cfg.FrameWidth,
		FrameHeight: cfg.FrameHeight,
		Mode:        game.ModeStandard,
		World:       physics.NewWorld(tuning, logger),
		Audio:       player,
		Tuning:      &tuning,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to start session", zap.Error(err))
	}
	defer session.Close()

	shell := desktop.NewShell(session, cfg.TickRate, logger)
	w, h := shell.Layout(0, 0)

	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Neon Snooker")
	ebiten.SetTPS(cfg.TickRate)

	logger.Info("starting desktop table", zap.Int("width", w), zap.Int("height", h), zap.Int("tps", cfg.TickRate))
	if err := ebiten.RunGame(shell); err != nil {
		logger.Fatal("game loop exited", zap.Error(err))
	}
}

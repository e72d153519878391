package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/app"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/config"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/logger"
)

func main() {
	// A missing .env is fine; production configures through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		log.Error("application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

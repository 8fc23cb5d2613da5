package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-relay/internal/app"
	"github.com/fakhrymubarak/weather-relay/internal/config"
	"github.com/fakhrymubarak/weather-relay/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		// the configured logger needs the config, so fall back to zap's default
		boot, _ := zap.NewProduction()
		boot.Sugar().Errorw("refusing to start: invalid configuration", "error", err)
		_ = boot.Sync()
		return 1
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Sugar().Errorw("refusing to start: invalid log configuration", "error", err)
		_ = boot.Sync()
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting weather relay",
		"addr", cfg.Addr(),
		"provider", cfg.Provider.BaseURL,
		"provider_timeout", cfg.Provider.Timeout,
	)
	if err := app.New(cfg, log).Run(ctx); err != nil {
		log.Errorw("weather relay stopped with error", "error", err)
		return 1
	}
	return 0
}

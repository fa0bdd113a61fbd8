package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/victordebonilla/Guardian-domestico/internal/bot"
	"github.com/victordebonilla/Guardian-domestico/internal/config"
	"github.com/victordebonilla/Guardian-domestico/internal/logger"
	"github.com/victordebonilla/Guardian-domestico/internal/repository"
	"github.com/victordebonilla/Guardian-domestico/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	store, err := repository.Open(cfg, logger.Component(log, "store"))
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.DataBackend).Msg("failed to open store")
	}
	defer store.Close()

	tracker := service.NewTracker(store, logger.Component(log, "tracker"))

	b, err := bot.NewBot(cfg.TelegramToken, tracker, logger.Component(log, "bot"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("backend", cfg.DataBackend).Msg("guardian doméstico started")
	if err := b.Start(ctx); err != nil {
		log.Error().Err(err).Msg("bot stopped with error")
		return
	}
	log.Info().Msg("shutdown complete")
}

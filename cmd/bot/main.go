package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"legal-llama/internal/adapter/telegram"
	"legal-llama/internal/app"
	"legal-llama/internal/config"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := app.NewLogger("bot", cfg)
	defer func() { _ = logger.Sync() }()

	chatSvc, err := app.NewChatService(cfg, logger)
	if err != nil {
		logger.Fatal("init chat service", zap.Error(err))
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, chatSvc, logger.Named("telegram"))
	if err != nil {
		logger.Fatal("init telegram bot", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := bot.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("shutdown", zap.Error(err))
			return
		}
		logger.Fatal("bot stopped with error", zap.Error(err))
	}
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinemareddy/postbot/internal/bootstrap"
	"github.com/cinemareddy/postbot/internal/buildinfo"
	"github.com/cinemareddy/postbot/internal/config"
	"github.com/cinemareddy/postbot/internal/logger"
	"github.com/cinemareddy/postbot/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("postbot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	app, err := bootstrap.Run(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close error: %v", err)
		}
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go app.Sessions.Run(ctx, time.Duration(cfg.Session.SweepIntervalSeconds)*time.Second)

	logger.Info(ctx, "app", "ready",
		slog.String("status", "ok"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.Duration("duration", logger.Took(startedAt)),
	)

	var history telegram.HistoryReader
	if app.History != nil {
		history = app.History
	}

	err = telegram.Run(ctx, telegram.Options{
		Config:  cfg,
		Service: app.Service,
		History: history,
	})

	logger.Info(context.Background(), "app", "shutdown",
		slog.String("status", "ok"),
	)
	return err
}

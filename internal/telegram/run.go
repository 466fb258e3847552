// Package telegram is the bot transport: it owns the telebot instance,
// middleware chain, outbound dispatcher, and endpoint wiring.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/cinemareddy/postbot/internal/config"
	"github.com/cinemareddy/postbot/internal/logger"
	"github.com/cinemareddy/postbot/internal/netutil"
	"github.com/cinemareddy/postbot/internal/usecase"
)

// Options carries everything Run needs besides configuration.
type Options struct {
	Config  *config.Config
	Service *usecase.Service
	History HistoryReader

	DispatcherOptions DispatcherOptions
}

// Run builds the bot and serves updates until ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	if opts.Service == nil {
		return fmt.Errorf("telegram: nil service provided")
	}
	cfg := opts.Config

	// The client timeout must outlive the long poll itself.
	clientTimeout := 30 * time.Second
	if t := time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second; t+10*time.Second > clientTimeout {
		clientTimeout = t + 10*time.Second
	}

	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: buildPoller(cfg),
		Client: netutil.NewClient(clientTimeout, 2, time.Second),
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	logger.Info(ctx, "tg", "mode",
		slog.String("status", "ok"),
		slog.String("mode", cfg.Telegram.RunMode),
		slog.Duration("duration", logger.Took(buildStart)),
	)

	dispatcher := NewDispatcher(opts.DispatcherOptions)
	defer dispatcher.Close()

	handlers := NewHandlers(opts.Service, dispatcher, opts.History, cfg.Telegram.AdminID)

	bot.Use(recoverMiddleware)
	bot.Use(receiptMiddleware)
	if cfg.RateLimit.IntervalMS > 0 {
		bot.Use(rateLimitMiddleware(time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond))
	}

	bot.Handle("/start", handlers.OnStart)
	bot.Handle("/help", handlers.OnHelp)
	bot.Handle("/recent", handlers.OnRecent)
	bot.Handle(tele.OnText, handlers.OnText)

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-runDone:
		return nil
	}
}

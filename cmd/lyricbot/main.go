package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sukalov/lyricbot/internal/app"
	"github.com/sukalov/lyricbot/internal/bot"
	"github.com/sukalov/lyricbot/internal/bot/admin"
	"github.com/sukalov/lyricbot/internal/bot/client"
	"github.com/sukalov/lyricbot/internal/config"
	"github.com/sukalov/lyricbot/internal/logger"
	"github.com/sukalov/lyricbot/internal/state"
)

const pruneInterval = 10 * time.Minute

func main() {
	cfg := config.Load()
	if _, err := config.Require("BOT_TOKEN"); err != nil {
		log.Fatalf("required env missing: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogDevelopment); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, false)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer deps.Close()

	sessions := state.NewStateManager(cfg.DiceRolls, cfg.MaxCustomKeywords)

	clientBot, err := bot.New("client", cfg.BotToken)
	if err != nil {
		log.Fatalf("failed to create client bot: %v", err)
	}
	client.SetupHandlers(clientBot, client.NewClientHandlers(sessions, deps.Bank, deps.Generator,
		client.WithMaxKeywordLength(cfg.MaxKeywordLength),
	))

	bots := []*bot.Bot{clientBot}

	if cfg.AdminBotToken != "" {
		adminBot, err := bot.New("admin", cfg.AdminBotToken)
		if err != nil {
			log.Fatalf("failed to create admin bot: %v", err)
		}
		opts := []admin.Option{admin.WithClock(cfg.Clock)}
		if deps.Cache != nil {
			opts = append(opts, admin.WithRhymeCache(deps.Cache))
		}
		admin.SetupHandlers(adminBot, admin.NewAdminHandlers(sessions, deps.Bank, deps.Lookup, cfg.AdminUsernames, opts...))
		bots = append(bots, adminBot)

		if cfg.LogChannelID != 0 {
			logger.AttachChannel(adminBot, cfg.LogChannelID)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, b := range bots {
		g.Go(func() error { return b.Start(ctx) })
	}
	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := sessions.Prune(cfg.SessionIdleTimeout); n > 0 {
					logger.Debug("idle sessions pruned", zap.Int("count", n))
				}
			}
		}
	})

	logger.Success("lyricbot is running", zap.Int("bots", len(bots)))
	if err := g.Wait(); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
		return
	}
	logger.Info("lyricbot stopped")
}

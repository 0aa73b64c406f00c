package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/bot"
	"dompet/internal/cli"
	"dompet/internal/config"
	apphttp "dompet/internal/http"
	"dompet/internal/log"
	"dompet/internal/services"
	"dompet/internal/storage"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid time zone", log.FieldError, err)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()
	logger.Info("Database initialized", "path", cfg.SQLiteDBPath)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	srv := apphttp.NewServer(":"+cfg.Port, repo, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	var telegram *bot.Bot
	if cfg.BotEnabled() {
		publisher, closePublisher := cli.InitPublisher(logger, cfg)
		defer closePublisher()

		telegram, err = newBot(cfg, repo, publisher, loc, logger)
		if err != nil {
			logger.Error("Failed to start bot", log.FieldError, err)
			os.Exit(1)
		}
		if cfg.BotMode == config.ModeWebhook {
			srv.HandleWebhook(bot.WebhookPrefix+"{secret}", telegram.WebhookHandler(cfg.WebhookSecret))
		}
	} else {
		logger.Error("BOT_TOKEN not set, serving health checks only")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if telegram != nil {
		g.Go(func() error {
			switch cfg.BotMode {
			case config.ModeWebhook:
				url := bot.WebhookURL(cfg.WebhookURL, cfg.WebhookSecret)
				if err := telegram.SetWebhook(url); err != nil {
					return err
				}
				logger.Info("Webhook registered", "url", cfg.WebhookURL)
				return nil
			default:
				return telegram.RunPolling(gctx)
			}
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Stopped gracefully")
}

func newBot(cfg *config.Config, repo *storage.SQLiteRepository, publisher services.EventPublisher, loc *time.Location, logger *log.Logger) (*bot.Bot, error) {
	now := func() time.Time { return time.Now().In(loc) }

	router := bot.NewRouter(
		services.NewSavingsService(repo, publisher, now, cfg.HistoryLimit),
		services.NewExpenseService(repo, publisher, now),
		services.NewNotesService(repo, publisher, now),
		cfg.OwnerID,
	)
	if !cfg.OwnerRestricted() {
		logger.Warn("OWNER_ID not set, bot answers every user")
	}

	b, err := bot.NewBot(cfg.BotToken, router, logger.WithComponent(log.ComponentTelegram))
	if err != nil {
		return nil, err
	}

	if err := b.RegisterCommands(); err != nil {
		logger.Warn("Failed to register bot commands", log.FieldError, err)
	}
	return b, nil
}

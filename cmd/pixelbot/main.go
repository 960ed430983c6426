package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/pixelbot/core/bootstrap"
	corecmd "github.com/m3rciful/pixelbot/core/cmd"
	"github.com/m3rciful/pixelbot/core/logger"
	tg "github.com/m3rciful/pixelbot/core/telegram"
	"github.com/m3rciful/pixelbot/internal/bot"
	"github.com/m3rciful/pixelbot/internal/catalog"
	"github.com/m3rciful/pixelbot/internal/config"
	"github.com/m3rciful/pixelbot/internal/conversation"
	"github.com/m3rciful/pixelbot/internal/joke"
	"github.com/m3rciful/pixelbot/internal/records"
	"github.com/m3rciful/pixelbot/internal/translate"
	"github.com/m3rciful/pixelbot/internal/workflow"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			return build(cfg)
		},
	})
	if err != nil {
		log.Fatalf("pixelbot: %v", err)
	}
}

// app closes the database once the bot has stopped.
type app struct {
	*bot.App
	db *sqlx.DB
}

func (a app) TelegramRunOptions() (tg.RunOptions, error) {
	opts, err := a.App.TelegramRunOptions()
	if err != nil || a.db == nil {
		return opts, err
	}
	prev := opts.OnStop
	opts.OnStop = func(ctx context.Context, rt tg.Runtime) error {
		var stopErr error
		if prev != nil {
			stopErr = prev(ctx, rt)
		}
		if err := a.db.Close(); err != nil {
			logger.DB.LogAttrs(ctx, slog.LevelWarn, "db.close", slog.String("status", "fail"), slog.String("err", err.Error()))
		}
		return stopErr
	}
	return opts, nil
}

func build(cfg *config.Config) (corecmd.TelegramApp, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:       cfg.CoreConfig(),
		Database:     cfg.Database,
		SkipDatabase: !cfg.DatabaseEnabled(),
	})
	if err != nil {
		return nil, err
	}

	var store records.Store = records.NewMemory()
	if res.DB != nil {
		store = records.NewPostgres(res.DB)
	} else {
		logger.DB.Warn("no database configured, notes are kept in memory", slog.String("event", "store.memory"))
	}

	shop, err := catalog.New(catalog.Options{
		BaseURL:   cfg.Catalog.BaseURL,
		MaxPages:  cfg.Catalog.MaxPages,
		CacheTTL:  cfg.Catalog.CacheTTL,
		Timeout:   cfg.Catalog.Timeout,
		UserAgent: cfg.Catalog.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	svc := workflow.New(workflow.Options{
		Sessions: conversation.NewManager(conversation.Options{
			TTL:                 cfg.Sessions.TTL,
			MaxLanguageAttempts: cfg.Translate.MaxAttempts,
		}),
		Records: store,
		Catalog: shop,
		Translator: translate.NewLibre(translate.LibreOptions{
			BaseURL: cfg.Translate.URL,
			APIKey:  cfg.Translate.APIKey,
			Timeout: cfg.Translate.Timeout,
		}),
		Jokes: joke.New(joke.Options{URL: cfg.Jokes.URL, Timeout: cfg.Jokes.Timeout}),
		Delays: workflow.Delays{
			JokeSetup:     cfg.Delays.JokeSetup,
			JokePunchline: cfg.Delays.JokePunchline,
			Chain:         cfg.Delays.Chain,
		},
	})

	return app{App: bot.New(bot.Options{Config: cfg, Workflow: svc}), db: res.DB}, nil
}

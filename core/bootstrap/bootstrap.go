// Package bootstrap prepares shared infrastructure before the bot starts:
// logging first, then the schema, then the connection pool.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/pixelbot/core/config"
	coredatabase "github.com/m3rciful/pixelbot/core/database"
	"github.com/m3rciful/pixelbot/core/logger"
)

// Options control the generic bootstrap pipeline.
// Nil hooks fall back to the core implementations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	// SkipDatabase runs the bot without a record store connection.
	SkipDatabase bool

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

func (o *Options) fillDefaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
}

// Run initializes the logger and, unless SkipDatabase is set, migrates and
// connects the database. Migrations run first so the pool never sees an old schema.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.fillDefaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	if opts.SkipDatabase {
		stage("database", time.Now(), nil, slog.Bool("skipped", true))
		return &Result{}, nil
	}

	start := time.Now()
	if err := opts.Migrate(opts.Database); err != nil {
		stage("migrate", start, err)
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	stage("migrate", start, nil)

	start = time.Now()
	db, err := opts.Connect(opts.Database)
	stage("connect", start, err)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	return &Result{DB: db}, nil
}

func stage(name string, start time.Time, err error, extra ...slog.Attr) {
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("stage", name),
		slog.String("status", logger.Status(err)),
		slog.Duration("took", logger.Took(start)),
	}
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	logger.DB.LogAttrs(context.Background(), level, "bootstrap.stage", append(attrs, extra...)...)
}

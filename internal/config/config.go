// Package config is the pixelbot configuration: the reusable core settings
// plus the record store, the scraped catalog and the HTTP providers.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	coreconfig "github.com/m3rciful/pixelbot/core/config"
	coredatabase "github.com/m3rciful/pixelbot/core/database"
)

// CatalogConfig points the scraper at the product catalog.
type CatalogConfig struct {
	BaseURL   string        `yaml:"base_url" envconfig:"CATALOG_BASE_URL" validate:"omitempty,url"`
	MaxPages  int           `yaml:"max_pages" envconfig:"CATALOG_MAX_PAGES" validate:"gte=0"`
	CacheTTL  time.Duration `yaml:"cache_ttl" envconfig:"CATALOG_CACHE_TTL" validate:"gte=0"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"CATALOG_TIMEOUT" validate:"gte=0"`
	UserAgent string        `yaml:"user_agent" envconfig:"CATALOG_USER_AGENT"`
}

// TranslateConfig configures the LibreTranslate compatible endpoint.
type TranslateConfig struct {
	URL         string        `yaml:"url" envconfig:"TRANSLATE_URL" validate:"omitempty,url"`
	APIKey      string        `yaml:"api_key" envconfig:"TRANSLATE_API_KEY"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TRANSLATE_TIMEOUT" validate:"gte=0"`
	MaxAttempts int           `yaml:"max_attempts" envconfig:"TRANSLATE_MAX_ATTEMPTS" validate:"gte=0"`
}

type JokesConfig struct {
	URL     string        `yaml:"url" envconfig:"JOKES_URL" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" envconfig:"JOKES_TIMEOUT" validate:"gte=0"`
}

// SessionsConfig bounds how long an abandoned conversation is kept.
type SessionsConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"SESSION_TTL" validate:"gte=0"`
}

// DelaysConfig paces multi-message replies. Disable turns every pause off.
type DelaysConfig struct {
	Disable       bool          `yaml:"disable" envconfig:"DELAYS_DISABLE"`
	JokeSetup     time.Duration `yaml:"joke_setup" validate:"gte=0"`
	JokePunchline time.Duration `yaml:"joke_punchline" validate:"gte=0"`
	Chain         time.Duration `yaml:"chain" validate:"gte=0"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database  coredatabase.Config `yaml:"database"`
	Catalog   CatalogConfig       `yaml:"catalog"`
	Translate TranslateConfig     `yaml:"translate"`
	Jokes     JokesConfig         `yaml:"jokes"`
	Sessions  SessionsConfig      `yaml:"sessions"`
	Delays    DelaysConfig        `yaml:"delays"`
}

// CoreConfig exposes the embedded core settings to the process runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// DatabaseEnabled reports whether a PostgreSQL store is configured. Without
// one the bot keeps notes in memory.
func (c *Config) DatabaseEnabled() bool {
	return strings.TrimSpace(c.Database.URL) != "" || strings.TrimSpace(c.Database.Name) != ""
}

// Load reads an optional .env file, the optional YAML file at path and the
// environment, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	return LoadWithDotenv(path, ".env")
}

// LoadWithDotenv is Load with explicit .env files. Missing files are skipped.
func LoadWithDotenv(path string, dotenv ...string) (*Config, error) {
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := coreconfig.Validate(c); err != nil {
		return err
	}
	if c.DatabaseEnabled() {
		if err := c.Database.Normalize(); err != nil {
			return err
		}
	}
	if c.Translate.MaxAttempts == 0 {
		c.Translate.MaxAttempts = 3
	}
	if c.Delays.Disable {
		c.Delays.JokeSetup, c.Delays.JokePunchline, c.Delays.Chain = 0, 0, 0
		return nil
	}
	if c.Delays.JokeSetup == 0 {
		c.Delays.JokeSetup = time.Second
	}
	if c.Delays.JokePunchline == 0 {
		c.Delays.JokePunchline = 3 * time.Second
	}
	if c.Delays.Chain == 0 {
		c.Delays.Chain = time.Second
	}
	return nil
}

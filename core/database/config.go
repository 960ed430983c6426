package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds database connection settings.
// URL, when set, takes precedence over the individual connection parts.
type Config struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
}

// Normalize fills connection defaults and checks that a target database is named.
func (c *Config) Normalize() error {
	c.URL = strings.TrimSpace(c.URL)
	if c.URL == "" && strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("database: either url or name is required")
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 5
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = "migrations"
	}
	return nil
}

// ConnString returns a postgres:// URL usable by both lib/pq and golang-migrate.
func (c Config) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Target describes the database for logs without exposing credentials.
func (c Config) Target() (host, name string) {
	if c.URL == "" {
		return c.Host, c.Name
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "unparsed", ""
	}
	return u.Hostname(), strings.TrimPrefix(u.Path, "/")
}

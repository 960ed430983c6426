package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutDatabase(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")

	cfg, err := LoadWithDotenv(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.DatabaseEnabled())
	assert.Equal(t, "token", cfg.CoreConfig().Telegram.Token)
	assert.Equal(t, 3, cfg.Translate.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Delays.JokeSetup)
	assert.Equal(t, 3*time.Second, cfg.Delays.JokePunchline)
}

func TestLoadYAMLDotenvAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
telegram:
  token: file-token
database:
  name: pixel
catalog:
  base_url: https://e-catalog.md
  max_pages: 4
  cache_ttl: 30s
translate:
  url: http://translate.local
sessions:
  ttl: 1h
delays:
  disable: true
`)
	dotenv := writeFile(t, "test.env", "TRANSLATE_API_KEY=from-dotenv\n")
	t.Setenv("CATALOG_MAX_PAGES", "6")
	t.Cleanup(func() { _ = os.Unsetenv("TRANSLATE_API_KEY") })

	cfg, err := LoadWithDotenv(path, dotenv)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.True(t, cfg.DatabaseEnabled())
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
	assert.Equal(t, 6, cfg.Catalog.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.Catalog.CacheTTL)
	assert.Equal(t, "from-dotenv", cfg.Translate.APIKey)
	assert.Equal(t, time.Hour, cfg.Sessions.TTL)
	assert.Zero(t, cfg.Delays.Chain)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no token":      "catalog:\n  max_pages: 2\n",
		"bad url":       "telegram:\n  token: t\ncatalog:\n  base_url: not a url\n",
		"negative page": "telegram:\n  token: t\ncatalog:\n  max_pages: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWithDotenv(writeFile(t, "c.yaml", body))
			assert.Error(t, err)
		})
	}
}

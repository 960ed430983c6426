package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: " 123:abc "},
		Logging:   LoggingConfig{Dir: "logs", Level: "DEBUG"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Inline_Query ", ""}},
	}
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "bot.log", cfg.Logging.BotFile)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	assert.Equal(t, []string{UpdateInlineQuery}, cfg.RateLimit.ExcludeUpdates)
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	cases := map[string]Config{
		"missing token": {},
		"bad run mode":  {Telegram: TelegramConfig{Token: "t", RunMode: "carrier-pigeon"}},
		"webhook without url": {
			Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook},
		},
		"bad level":   {Telegram: TelegramConfig{Token: "t"}, Logging: LoggingConfig{Level: "loud"}},
		"bad exclude": {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := cfg
			assert.Error(t, Normalize(&cfg))
		})
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_RUN_MODE", "polling")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "telegram:\n  token: file-token\n  admin_id: 42\nlogging:\n  format: kv\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.EqualValues(t, 42, cfg.Telegram.AdminID)
	assert.Equal(t, "json", cfg.Logging.Format)
}

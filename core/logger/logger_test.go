package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	coreconfig "github.com/m3rciful/pixelbot/core/config"
)

func TestSettingsDefaults(t *testing.T) {
	s := settingsFrom(nil)
	assert.Equal(t, slog.LevelInfo, s.level)
	assert.Equal(t, formatJSON, s.format)
	assert.Equal(t, [2]int{1, 50}, [2]int{s.num, s.den})
	assert.Empty(t, s.file)
}

func TestSettingsFromConfig(t *testing.T) {
	s := settingsFrom(&coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "warning",
		Profile:     "Dev",
		DebugSample: "0",
		Dir:         "logs",
		BotFile:     "bot.log",
		MaxSizeMB:   10,
	}})
	assert.Equal(t, slog.LevelWarn, s.level)
	assert.Equal(t, formatKV, s.format, "dev profile prefers kv")
	assert.Equal(t, "dev", s.profile)
	assert.Equal(t, filepath.Join("logs", "bot.log"), s.file)

	writers, closers := s.outputs()
	assert.Len(t, writers, 2)
	assert.Len(t, closers, 1)
}

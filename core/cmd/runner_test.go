package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/pixelbot/core/config"
	coretelegram "github.com/m3rciful/pixelbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct{ stopped *bool }

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStop: func(context.Context, coretelegram.Runtime) error {
			*a.stopped = true
			return nil
		},
	}, nil
}

func TestRunWiresLifecycleHooks(t *testing.T) {
	t.Setenv("PIXELBOT_TEST_CONFIG", "test.yaml")
	var (
		loadedPath string
		stopped    bool
		shutdown   bool
	)
	err := Run(Options{
		ConfigEnvVar: "PIXELBOT_TEST_CONFIG",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app{stopped: &stopped}, nil },
		ShutdownLogger: func() error { shutdown = true; return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NotNil(t, opts.OnStart)
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "test.yaml", loadedPath)
	assert.True(t, stopped)
	assert.True(t, shutdown)
}

func TestRunPropagatesLoadError(t *testing.T) {
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return nil, errors.New("bad yaml") },
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return nil, nil },
	})
	assert.ErrorContains(t, err, "bad yaml")
}

func TestRunRequiresHooks(t *testing.T) {
	assert.Error(t, Run(Options{}))
}

func TestConfigPathPrefersEnv(t *testing.T) {
	t.Setenv(DefaultConfigEnvVar, "")
	assert.Equal(t, "config.yaml", Options{DefaultConfigPath: "config.yaml"}.configPath())
	assert.Empty(t, Options{}.configPath())

	t.Setenv(DefaultConfigEnvVar, "/etc/pixelbot.yaml")
	assert.Equal(t, "/etc/pixelbot.yaml", Options{DefaultConfigPath: "config.yaml"}.configPath())
}

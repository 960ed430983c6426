package bootstrap

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/pixelbot/core/config"
	coredatabase "github.com/m3rciful/pixelbot/core/database"
)

func TestRunOrder(t *testing.T) {
	var calls []string
	res, err := Run(Options{
		Config: &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error {
			calls = append(calls, "logger")
			return nil
		},
		Migrate: func(coredatabase.Config) error {
			calls = append(calls, "migrate")
			return nil
		},
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			calls = append(calls, "connect")
			return nil, nil
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []string{"logger", "migrate", "connect"}, calls)
}

func TestRunSkipDatabase(t *testing.T) {
	res, err := Run(Options{
		Config:       &coreconfig.Config{},
		SkipDatabase: true,
		LoggerInit:   func(*coreconfig.Config) error { return nil },
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect must not be called")
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
}

func TestRunPropagatesMigrationError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return nil },
		Migrate:    func(coredatabase.Config) error { return boom },
	})
	assert.ErrorIs(t, err, boom)
}

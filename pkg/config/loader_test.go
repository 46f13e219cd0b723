package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernmen/notifier/pkg/config"
)

type streamConfig struct {
	Heartbeat time.Duration `env:"TEST_NOTIFY_HEARTBEAT" envDefault:"30s"`
	Pending   int           `env:"TEST_NOTIFY_PENDING" envDefault:"100"`
}

type serviceConfig struct {
	Name   string `env:"TEST_NOTIFY_NAME,required"`
	Stream streamConfig
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_NOTIFY_NAME", "notifyd")
	t.Setenv("TEST_NOTIFY_PENDING", "8")

	cfg, err := config.Load[serviceConfig]()
	require.NoError(t, err)
	assert.Equal(t, "notifyd", cfg.Name)
	assert.Equal(t, 30*time.Second, cfg.Stream.Heartbeat)
	assert.Equal(t, 8, cfg.Stream.Pending)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("TEST_NOTIFY_NAME", "")
	require.NoError(t, os.Unsetenv("TEST_NOTIFY_NAME"))

	_, err := config.Load[serviceConfig]()
	assert.ErrorIs(t, err, config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad[serviceConfig]() })
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, ".env")
	second := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(first, []byte("TEST_NOTIFY_NAME=from-file\nTEST_NOTIFY_PENDING=16\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("TEST_NOTIFY_PENDING=32\nTEST_NOTIFY_HEARTBEAT=5s\n"), 0o600))

	// Registered with t.Setenv so the values are restored afterwards.
	t.Setenv("TEST_NOTIFY_NAME", "")
	t.Setenv("TEST_NOTIFY_PENDING", "")
	t.Setenv("TEST_NOTIFY_HEARTBEAT", "")
	for _, k := range []string{"TEST_NOTIFY_NAME", "TEST_NOTIFY_PENDING", "TEST_NOTIFY_HEARTBEAT"} {
		require.NoError(t, os.Unsetenv(k))
	}

	require.NoError(t, config.LoadEnv(first, second))

	cfg, err := config.Load[serviceConfig]()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, 16, cfg.Stream.Pending, "earlier file wins")
	assert.Equal(t, 5*time.Second, cfg.Stream.Heartbeat)

	assert.ErrorIs(t, config.LoadEnv(filepath.Join(dir, "missing.env")), config.ErrLoadingEnvFile)
}

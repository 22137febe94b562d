package config_test

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/rollcall/internal/config"
)

func parse(vars map[string]string) (config.Config, error) {
	return config.Parse(env.Options{Environment: vars})
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "local", cfg.LockBackend)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Empty(t, cfg.MQTTBroker)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parse(map[string]string{
		"ROLLCALL_STORE":         "postgres",
		"ROLLCALL_POSTGRES_DSN":  "postgres://localhost/rollcall",
		"ROLLCALL_LOCK_BACKEND":  "Redis",
		"ROLLCALL_TIMEZONE":      "Asia/Kolkata",
		"ROLLCALL_STORE_TIMEOUT": "750ms",
	})
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.LockBackend)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestParse_Invalid(t *testing.T) {
	for name, vars := range map[string]map[string]string{
		"env":          {"ROLLCALL_ENV": "staging"},
		"store":        {"ROLLCALL_STORE": "mongo"},
		"lock":         {"ROLLCALL_LOCK_BACKEND": "zookeeper"},
		"postgres dsn": {"ROLLCALL_STORE": "postgres"},
		"timezone":     {"ROLLCALL_TIMEZONE": "Mars/Olympus"},
		"duration":     {"ROLLCALL_STORE_TIMEOUT": "soon"},
	} {
		_, err := parse(vars)
		assert.Error(t, err, name)
	}
}

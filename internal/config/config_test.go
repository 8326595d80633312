package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Classifier.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Classifier.Timeout())
	assert.Equal(t, 5000, cfg.App.MaxComplaintLength)
	assert.True(t, cfg.Worker.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("CLASSIFIER_RATE_PER_SECOND", "2.5")
	t.Setenv("CLASSIFICATION_WORKER_ENABLED", "false")
	t.Setenv("CLASSIFICATION_RETRY_DELAY_SECONDS", "7")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.App.Addr())
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL())
	assert.Equal(t, 2.5, cfg.Classifier.RatePerSecond)
	assert.False(t, cfg.Worker.Enabled)
	assert.Equal(t, 7*time.Second, cfg.Worker.RetryDelay())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns, "invalid ints fall back to defaults")
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	_, err := Load()
	assert.Error(t, err)
}

func TestZeroTimeoutsDisable(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
	assert.Equal(t, time.Duration(0), GeocoderConfig{TimeoutSeconds: -1}.Timeout())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://localhost:9090", cfg.BaseURL)
	assert.Equal(t, time.Hour, cfg.ResetLifetime)
	assert.Equal(t, time.Hour, cfg.ResetThrottle)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.Equal(t, cfg.SessionSecret, cfg.CSRFSecret)
	assert.True(t, cfg.PwnedCheck)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("RATE_LIMIT_COMMENT", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "RATE_LIMIT_COMMENT")
}

func TestLoadRequiresSessionSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 60, cfg.Server.RateLimit)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, int64(2*1024*1024), cfg.Storage.MaxPictureSize)
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9090
	cfg.Server.RateLimit = 120
	cfg.setDefaults()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RateLimit)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_RATE_LIMIT", "30")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := &Config{}
	cfg.overrideFromEnv()
	cfg.setDefaults()

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.RateLimit)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
}

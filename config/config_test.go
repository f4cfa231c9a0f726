package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BL_CONSUMER_KEY", "ck")
	t.Setenv("BL_CONSUMER_SECRET", "cs")
	t.Setenv("BL_ACCESS_TOKEN", "at")
	t.Setenv("BL_TOKEN_SECRET", "ts")
	t.Setenv("REBRICKABLE_KEY", "rk")
	t.Setenv("BUCKET", "bricks")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.Equal(t, CacheSQLite, cfg.Cache.Backend)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "minifigures.csv", cfg.Storage.ObjectKey)
	assert.Equal(t, 2.0, cfg.BrickLink.RatePerSecond)
	assert.Equal(t, 5, cfg.BrickLink.Burst)
	assert.Equal(t, ":8080", cfg.HTTPAddr)

	missing, err := cfg.Validate()
	assert.NoError(t, err)
	assert.Empty(t, missing)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DEFAULT_CURRENCY", "USD")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("BL_RATE_PER_SECOND", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 0.5, cfg.BrickLink.RatePerSecond)
}

func TestValidate_Missing(t *testing.T) {
	cfg := &Config{
		BotToken:        "123:abc",
		DefaultCurrency: "EUR",
		Cache:           CacheConfig{Backend: CacheNone},
	}

	missing, err := cfg.Validate()
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"BL_CONSUMER_KEY", "BL_CONSUMER_SECRET", "BL_ACCESS_TOKEN", "BL_TOKEN_SECRET",
		"REBRICKABLE_KEY", "BUCKET",
	}, missing)
}

func TestValidate_Invalid(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Cache.Backend = "memcached"
	_, err = cfg.Validate()
	assert.ErrorContains(t, err, "CACHE_BACKEND")

	cfg.Cache.Backend = CacheSQLite
	cfg.DefaultCurrency = "EURO"
	_, err = cfg.Validate()
	assert.ErrorContains(t, err, "DEFAULT_CURRENCY")
}

func TestAdmins(t *testing.T) {
	admins := ParseAdmins("@Alice; bob,12345 ;")

	assert.Equal(t, 3, admins.Len())
	assert.True(t, admins.Contains(1, "alice"))
	assert.True(t, admins.Contains(1, "@BOB"))
	assert.True(t, admins.Contains(12345, ""))
	assert.False(t, admins.Contains(2, "carol"))
	assert.False(t, admins.Contains(2, ""))
	assert.False(t, ParseAdmins("").Contains(0, ""))
}

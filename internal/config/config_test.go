package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.OverpassURL)
	assert.Equal(t, 30*time.Second, cfg.OverpassTimeout)
	assert.Equal(t, 24*time.Hour, cfg.TileTTL)
	assert.Equal(t, 200, cfg.CacheCapacity)
	assert.Equal(t, 100, cfg.MaxResults)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("OVERPASS_URL", "http://localhost:8088/api/interpreter")
	t.Setenv("OVERPASS_TIMEOUT", "5s")
	t.Setenv("TILE_CACHE_TTL", "1h")
	t.Setenv("TILE_CACHE_CAPACITY", "50")
	t.Setenv("MAX_RESULTS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8088/api/interpreter", cfg.OverpassURL)
	assert.Equal(t, 5*time.Second, cfg.OverpassTimeout)
	assert.Equal(t, time.Hour, cfg.TileTTL)
	assert.Equal(t, 50, cfg.CacheCapacity)
	assert.Equal(t, 25, cfg.MaxResults)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("OVERPASS_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OVERPASS_TIMEOUT")
}

func TestLoad_NegativeDuration(t *testing.T) {
	t.Setenv("TILE_CACHE_TTL", "-1h")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidCapacity(t *testing.T) {
	t.Setenv("TILE_CACHE_CAPACITY", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TILE_CACHE_CAPACITY")
}

func TestLoad_UncappedResults(t *testing.T) {
	t.Setenv("MAX_RESULTS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxResults)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Overpass query service configuration.
	OverpassURL     string
	OverpassTimeout time.Duration

	// Tile cache configuration.
	TileTTL       time.Duration
	CacheCapacity int

	// Default cap on merged POIs per viewport; 0 disables the cap.
	MaxResults int
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	overpassTimeout, err := durationEnv("OVERPASS_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	tileTTL, err := durationEnv("TILE_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cacheCapacity, err := intEnv("TILE_CACHE_CAPACITY", 200)
	if err != nil {
		return nil, err
	}
	maxResults, err := intEnv("MAX_RESULTS", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		OverpassURL:     envOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassTimeout: overpassTimeout,
		TileTTL:         tileTTL,
		CacheCapacity:   cacheCapacity,
		MaxResults:      maxResults,
	}

	if cfg.OverpassURL == "" {
		return nil, fmt.Errorf("OVERPASS_URL is required")
	}
	if cfg.CacheCapacity <= 0 {
		return nil, fmt.Errorf("TILE_CACHE_CAPACITY must be positive")
	}
	if cfg.MaxResults < 0 {
		return nil, fmt.Errorf("MAX_RESULTS must not be negative")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

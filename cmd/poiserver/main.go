// Command poiserver serves tile-based point-of-interest queries over HTTP.
// It wraps the orchestrator library in a thin operational shell: config from
// the environment, structured logs, Prometheus metrics, graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/cartoscout/poi-tiles/internal/adapter/http"
	"github.com/cartoscout/poi-tiles/internal/adapter/overpass"
	"github.com/cartoscout/poi-tiles/internal/config"
	"github.com/cartoscout/poi-tiles/internal/observability"
	"github.com/cartoscout/poi-tiles/internal/orchestrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source := overpass.NewClient(cfg.OverpassURL, cfg.OverpassTimeout, metrics, logger)
	orch := orchestrator.New(source, orchestrator.Config{
		TileTTL:       cfg.TileTTL,
		CacheCapacity: cfg.CacheCapacity,
	}, metrics, logger)

	logger.Info("tile POI orchestrator ready",
		"overpass_url", cfg.OverpassURL,
		"tile_ttl", cfg.TileTTL,
		"cache_capacity", cfg.CacheCapacity,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, cfg.MaxResults, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

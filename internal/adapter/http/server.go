// Package http exposes the tile POI orchestrator over HTTP, along with
// health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartoscout/poi-tiles/internal/domain"
	"github.com/cartoscout/poi-tiles/internal/geo"
	"github.com/cartoscout/poi-tiles/internal/orchestrator"
)

// POIProvider resolves viewport queries. Implemented by orchestrator.Orchestrator.
type POIProvider interface {
	UpdateViewport(ctx context.Context, region geo.Region, opts orchestrator.Options) (orchestrator.Result, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the POI query, health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	provider   POIProvider
	defaultMax int
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /pois, /healthz, /readyz, and
// /metrics routes. defaultMax caps merged results when a request does not
// pass its own "max" parameter; 0 leaves results uncapped.
func NewServer(addr string, provider POIProvider, defaultMax int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider:   provider,
		defaultMax: defaultMax,
		logger:     logger,
	}

	mux.HandleFunc("GET /pois", s.handlePOIs)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// poisResponse is the JSON body returned by GET /pois.
type poisResponse struct {
	POIs        []domain.POI `json:"pois"`
	TileCount   int          `json:"tile_count"`
	FailedTiles []string     `json:"failed_tiles,omitempty"`
}

// handlePOIs resolves a viewport query:
//
//	GET /pois?lat=37.5665&lon=126.978&lat_span=0.02&lon_span=0.02
//	         &categories=museum,monument&name=palace&max=50
func (s *Server) handlePOIs(w http.ResponseWriter, r *http.Request) {
	region, opts, err := s.parseViewportQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.provider.UpdateViewport(r.Context(), region, opts)
	if err != nil && len(result.POIs) == 0 && len(result.FailedTiles) == len(result.Tiles) {
		s.logger.Error("viewport update failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream fetch failed"})
		return
	}
	if err != nil {
		s.logger.Warn("viewport update partially failed",
			"failed_tiles", len(result.FailedTiles), "error", err)
	}

	writeJSON(w, http.StatusOK, poisResponse{
		POIs:        result.POIs,
		TileCount:   len(result.Tiles),
		FailedTiles: result.FailedTiles,
	})
}

func (s *Server) parseViewportQuery(r *http.Request) (geo.Region, orchestrator.Options, error) {
	q := r.URL.Query()

	var region geo.Region
	var err error
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"lat", &region.CenterLat},
		{"lon", &region.CenterLon},
		{"lat_span", &region.LatSpan},
		{"lon_span", &region.LonSpan},
	} {
		*p.dst, err = strconv.ParseFloat(q.Get(p.name), 64)
		if err != nil {
			return geo.Region{}, orchestrator.Options{}, fmt.Errorf("invalid or missing %q parameter", p.name)
		}
	}
	if region.LatSpan <= 0 || region.LonSpan <= 0 {
		return geo.Region{}, orchestrator.Options{}, errors.New("spans must be positive")
	}

	opts := orchestrator.Options{NameFilter: q.Get("name"), MaxResults: s.defaultMax}
	if raw := q.Get("categories"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			opts.Categories = append(opts.Categories, domain.Category(strings.TrimSpace(c)))
		}
	}
	if raw := q.Get("max"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return geo.Region{}, orchestrator.Options{}, errors.New(`invalid "max" parameter`)
		}
		opts.MaxResults = limit
	}

	return region, opts, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// tile POI subsystem.
type Metrics struct {
	ViewportUpdates *prometheus.CounterVec // labels: outcome={success,partial,error}
	TilesPerUpdate  prometheus.Histogram
	MergedPOIs      prometheus.Histogram

	// Per-tile fetch metrics.
	TileFetches   *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram
	CacheLookups  *prometheus.CounterVec // labels: result={hit,miss}
	InflightJoins prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ViewportUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_tiles",
			Name:      "viewport_updates_total",
			Help:      "Viewport update requests by outcome.",
		}, []string{"outcome"}),
		TilesPerUpdate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poi_tiles",
			Name:      "tiles_per_update",
			Help:      "Number of tiles covering one viewport update.",
			Buckets:   []float64{1, 2, 4, 6, 9, 12, 16, 25},
		}),
		MergedPOIs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poi_tiles",
			Name:      "merged_pois",
			Help:      "Deduplicated POI count per viewport update.",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 200, 500},
		}),
		TileFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_tiles",
			Name:      "tile_fetches_total",
			Help:      "Upstream tile fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poi_tiles",
			Name:      "fetch_duration_seconds",
			Help:      "Overpass API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_tiles",
			Name:      "cache_lookups_total",
			Help:      "Tile cache lookups by result.",
		}, []string{"result"}),
		InflightJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "poi_tiles",
			Name:      "inflight_joins_total",
			Help:      "Fetches coalesced onto an already in-flight request.",
		}),
	}

	prometheus.MustRegister(
		m.ViewportUpdates,
		m.TilesPerUpdate,
		m.MergedPOIs,
		m.TileFetches,
		m.FetchDuration,
		m.CacheLookups,
		m.InflightJoins,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ViewportUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_tiles", Name: "viewport_updates_total"}, []string{"outcome"}),
		TilesPerUpdate:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "poi_tiles", Name: "tiles_per_update"}),
		MergedPOIs:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "poi_tiles", Name: "merged_pois"}),
		TileFetches:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_tiles", Name: "tile_fetches_total"}, []string{"outcome"}),
		FetchDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "poi_tiles", Name: "fetch_duration_seconds"}),
		CacheLookups:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_tiles", Name: "cache_lookups_total"}, []string{"result"}),
		InflightJoins:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "poi_tiles", Name: "inflight_joins_total"}),
	}
}

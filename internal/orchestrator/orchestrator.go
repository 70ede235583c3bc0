// Package orchestrator turns viewport updates into merged, deduplicated POI
// lists: it tiles the viewport, fetches each tile's data at most once
// concurrently, caches per-tile results, and merges across tiles.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/cartoscout/poi-tiles/internal/cache"
	"github.com/cartoscout/poi-tiles/internal/domain"
	"github.com/cartoscout/poi-tiles/internal/geo"
	"github.com/cartoscout/poi-tiles/internal/observability"
)

// DefaultTileTTL is how long a fetched tile stays valid in the cache.
const DefaultTileTTL = 24 * time.Hour

// DefaultCacheCapacity bounds the tile cache entry count.
const DefaultCacheCapacity = 200

// Options filter and cap one viewport update. A nil/empty Categories slice
// selects domain.DefaultCategories; MaxResults 0 means uncapped.
type Options struct {
	Categories []domain.Category
	NameFilter string
	MaxResults int
}

// Result is the observable output of one viewport update.
type Result struct {
	POIs  []domain.POI
	Tiles []geo.Tile
	// FailedTiles lists the tile keys whose fetch failed. POIs still holds
	// the merge of every tile that succeeded.
	FailedTiles []string
}

// Config carries construction parameters for an Orchestrator.
type Config struct {
	TileTTL       time.Duration // 0 -> DefaultTileTTL
	CacheCapacity int           // 0 -> DefaultCacheCapacity
	Clock         clockwork.Clock
}

// Orchestrator owns the tile cache and the in-flight fetch registry. Both
// are instance fields so sharing is explicit: construct one Orchestrator and
// hand it to every consumer.
type Orchestrator struct {
	source  domain.Source
	cache   *cache.Cache[domain.TileResult]
	tileTTL time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu            sync.Mutex
	inflight      map[string]*inflightFetch
	generation    uint64
	latest        Result
	latestGen     uint64
	lastFilterSig string

	ready atomic.Bool
}

// inflightFetch is a pending tile fetch other callers can await. result and
// err are written before done is closed, never after.
type inflightFetch struct {
	done   chan struct{}
	result domain.TileResult
	err    error
}

// New creates an Orchestrator around a POI source.
func New(source domain.Source, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Orchestrator {
	if cfg.TileTTL <= 0 {
		cfg.TileTTL = DefaultTileTTL
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = DefaultCacheCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Orchestrator{
		source:   source,
		cache:    cache.NewWithClock[domain.TileResult](cfg.TileTTL, cfg.CacheCapacity, cfg.Clock),
		tileTTL:  cfg.TileTTL,
		clock:    cfg.Clock,
		logger:   logger,
		metrics:  metrics,
		inflight: make(map[string]*inflightFetch),
	}
}

// UpdateViewport resolves the POIs visible in a region: it derives the
// covering tile set, fetches every tile concurrently (joining any fetch
// already in flight for the same key), merges the results by POI ID, and
// caps the merged list.
//
// Tile failures are isolated: the returned Result merges the tiles that
// succeeded and names the ones that did not, alongside a joined error.
// A request may also be superseded by a newer one while it runs; its Result
// is still returned, but Latest only ever advances to the newest generation.
func (o *Orchestrator) UpdateViewport(ctx context.Context, region geo.Region, opts Options) (Result, error) {
	sig := filterSignature(opts)

	o.mu.Lock()
	o.generation++
	gen := o.generation
	if sig != o.lastFilterSig {
		// Drop the previous output now so a consumer polling Latest never
		// sees stale-filter results while this fetch is outstanding. Bumping
		// latestGen past every request started under the old filters keeps
		// their late results from resurfacing.
		o.latest = Result{}
		o.latestGen = gen - 1
		o.lastFilterSig = sig
	}
	o.mu.Unlock()

	requestID := uuid.NewString()
	zoom := region.Zoom()
	tiles := geo.TilesCovering(region, zoom)
	o.metrics.TilesPerUpdate.Observe(float64(len(tiles)))

	logger := o.logger.With("request_id", requestID)
	logger.Debug("viewport update",
		"lat", region.CenterLat, "lon", region.CenterLon,
		"zoom", zoom, "tiles", len(tiles),
	)

	type tileOutcome struct {
		result domain.TileResult
		err    error
	}
	outcomes := make([]tileOutcome, len(tiles))

	var wg sync.WaitGroup
	for i, tile := range tiles {
		wg.Add(1)
		go func(i int, tile geo.Tile) {
			defer wg.Done()
			res, err := o.loadTile(ctx, tile, opts)
			outcomes[i] = tileOutcome{result: res, err: err}
		}(i, tile)
	}
	wg.Wait()

	merged := make([]domain.POI, 0)
	seen := make(map[string]bool)
	var failed []string
	var errs []error

	for i, out := range outcomes {
		if out.err != nil {
			failed = append(failed, tiles[i].Key())
			errs = append(errs, fmt.Errorf("tile %s: %w", tiles[i].Key(), out.err))
			logger.Warn("tile fetch failed", "tile", tiles[i].Key(), "error", out.err)
			continue
		}
		for _, poi := range out.result.POIs {
			if seen[poi.ID] {
				continue
			}
			seen[poi.ID] = true
			merged = append(merged, poi)
		}
	}

	// Truncation is by insertion order across tiles, not relevance.
	if opts.MaxResults > 0 && len(merged) > opts.MaxResults {
		merged = merged[:opts.MaxResults]
	}

	result := Result{POIs: merged, Tiles: tiles, FailedTiles: failed}

	o.mu.Lock()
	if gen > o.latestGen {
		o.latest = result
		o.latestGen = gen
	}
	o.mu.Unlock()

	o.metrics.MergedPOIs.Observe(float64(len(merged)))
	switch {
	case len(failed) == 0:
		o.metrics.ViewportUpdates.WithLabelValues("success").Inc()
		o.ready.Store(true)
	case len(failed) < len(tiles):
		o.metrics.ViewportUpdates.WithLabelValues("partial").Inc()
		o.ready.Store(true)
	default:
		o.metrics.ViewportUpdates.WithLabelValues("error").Inc()
	}

	return result, errors.Join(errs...)
}

// Latest returns the newest completed viewport result. Results from
// superseded requests never replace it, so a slow old fetch cannot clobber
// a newer one.
func (o *Orchestrator) Latest() Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

// ClearCache drops every cached tile and the latest observable output.
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
	o.mu.Lock()
	o.latest = Result{}
	o.mu.Unlock()
}

// CacheStats reports cache size and keys for diagnostics.
func (o *Orchestrator) CacheStats() (size int, keys []string) {
	return o.cache.Len(), o.cache.Keys()
}

// CheckReadiness reports ready once at least one viewport update has
// produced usable output.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("no viewport update has completed yet")
	}
	return nil
}

// loadTile returns the tile's result from, in order: an in-flight fetch for
// the same key, the cache, or a fresh upstream fetch. At most one fetch per
// key is ever outstanding; the in-flight marker is removed on completion
// whether the fetch succeeded or failed, so a failed tile can be retried.
func (o *Orchestrator) loadTile(ctx context.Context, tile geo.Tile, opts Options) (domain.TileResult, error) {
	key := cacheKey(tile, opts)

	o.mu.Lock()
	if f, ok := o.inflight[key]; ok {
		o.mu.Unlock()
		o.metrics.InflightJoins.Inc()
		<-f.done
		return f.result, f.err
	}

	if cached, ok := o.cache.Get(key); ok {
		o.mu.Unlock()
		o.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	o.metrics.CacheLookups.WithLabelValues("miss").Inc()

	f := &inflightFetch{done: make(chan struct{})}
	o.inflight[key] = f
	o.mu.Unlock()

	pois, err := o.source.FetchPOIs(ctx, tile.BoundingBox(), opts.Categories, opts.NameFilter)
	if err == nil {
		now := o.clock.Now()
		f.result = domain.TileResult{
			TileKey:   tile.Key(),
			POIs:      pois,
			FetchedAt: now,
			ExpiresAt: now.Add(o.tileTTL),
		}
		o.cache.SetTTL(key, f.result, o.tileTTL)
	}
	f.err = err

	o.mu.Lock()
	delete(o.inflight, key)
	o.mu.Unlock()
	close(f.done)

	return f.result, f.err
}

// cacheKey identifies one tile fetch: the tile plus the filters that shaped
// its query. The same key guards both the cache and the in-flight registry.
func cacheKey(tile geo.Tile, opts Options) string {
	return tile.Key() + "|" + filterSignature(opts)
}

// filterSignature canonicalizes the filter set so equivalent option values
// produce the same key regardless of category order.
func filterSignature(opts Options) string {
	cats := make([]string, len(opts.Categories))
	for i, c := range opts.Categories {
		cats[i] = string(c)
	}
	sort.Strings(cats)
	return strings.Join(cats, ",") + "|" + opts.NameFilter
}

// Command genfixtures queries the Overpass API for a viewport and writes the
// per-tile POI results as JSON fixture files, one file per tile key. It uses
// the actual adapter and geo packages so fixtures match real parsing
// behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -lat 37.5665 -lon 126.9780 -lat-span 0.02 -lon-span 0.02 \
//	  -categories museum,monument -out data/fixtures
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cartoscout/poi-tiles/internal/adapter/overpass"
	"github.com/cartoscout/poi-tiles/internal/domain"
	"github.com/cartoscout/poi-tiles/internal/geo"
	"github.com/cartoscout/poi-tiles/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 37.5665, "viewport center latitude")
	lon := flag.Float64("lon", 126.9780, "viewport center longitude")
	latSpan := flag.Float64("lat-span", 0.02, "viewport latitude span in degrees")
	lonSpan := flag.Float64("lon-span", 0.02, "viewport longitude span in degrees")
	categories := flag.String("categories", "", "comma-separated categories (empty = default set)")
	baseURL := flag.String("overpass-url", "", "Overpass endpoint (empty = public interpreter)")
	outDir := flag.String("out", "data/fixtures", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var cats []domain.Category
	if *categories != "" {
		for _, c := range strings.Split(*categories, ",") {
			cats = append(cats, domain.Category(strings.TrimSpace(c)))
		}
	}

	client := overpass.NewClient(*baseURL, 60*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(os.Stderr, nil)))

	region := geo.Region{CenterLat: *lat, CenterLon: *lon, LatSpan: *latSpan, LonSpan: *lonSpan}
	zoom := region.Zoom()
	tiles := geo.TilesCovering(region, zoom)
	fmt.Printf("viewport covers %d tile(s) at zoom %d\n", len(tiles), zoom)

	ctx := context.Background()
	for _, tile := range tiles {
		pois, err := client.FetchPOIs(ctx, tile.BoundingBox(), cats, "")
		if err != nil {
			return fmt.Errorf("fetch tile %s: %w", tile.Key(), err)
		}

		path := filepath.Join(*outDir, tile.Key()+".json")
		if err := writeJSON(path, pois); err != nil {
			return err
		}
		fmt.Printf("  %s: %d POIs -> %s\n", tile.Key(), len(pois), path)
	}

	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

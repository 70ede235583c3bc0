// Package geo provides coordinate transforms between map viewports,
// slippy-map tile coordinates, and geographic bounding boxes.
//
// Tiles follow the standard Web Mercator slippy-map scheme: a power-of-two
// grid at each zoom level, origin at the top-left (northwest), with the y
// axis projected through the Mercator formula. The projection is undefined
// beyond ±85.0511° latitude; latitudes outside that band are clamped.
//
// Viewports crossing the antimeridian (longitude ±180°) or covering a pole
// are not handled; tile enumeration for such viewports may over- or
// under-count. Callers are expected to stay within ordinary map extents.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// MaxMercatorLat is the latitude bound of the Web Mercator projection.
const MaxMercatorLat = 85.0511

// Region is a map viewport: a center point plus angular spans in degrees.
type Region struct {
	CenterLat float64
	CenterLon float64
	LatSpan   float64
	LonSpan   float64
}

// BoundingBox is the north/south/east/west degree extent of a region or tile.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Tile addresses one square of the slippy-map grid.
type Tile struct {
	X    int
	Y    int
	Zoom int
}

// Key returns the tile's identity string, used for cache keys and
// fetch deduplication.
func (t Tile) Key() string {
	return fmt.Sprintf("%d_%d_%d", t.Zoom, t.X, t.Y)
}

// BoundingBox returns the viewport extent: center ± half-span on each axis.
func (r Region) BoundingBox() BoundingBox {
	return BoundingBox{
		North: r.CenterLat + r.LatSpan/2,
		South: r.CenterLat - r.LatSpan/2,
		East:  r.CenterLon + r.LonSpan/2,
		West:  r.CenterLon - r.LonSpan/2,
	}
}

// Zoom derives an integer zoom level from the viewport's latitude span.
// This is an approximation: it assumes a square aspect and ignores the
// longitude span, which is fine for tile-granularity decisions but not
// for precise projection.
func (r Region) Zoom() int {
	return int(math.Round(math.Log2(360 / r.LatSpan)))
}

// SpanForZoom is the inverse of Region.Zoom: both spans of a viewport
// that would map back to the given zoom level.
func SpanForZoom(zoom int) (latSpan, lonSpan float64) {
	span := 360 / math.Pow(2, float64(zoom))
	return span, span
}

// LatLonToTile converts a coordinate to the tile containing it at the given
// zoom level. Latitude is clamped to the Mercator projection bound and the
// resulting indices are clamped to the grid.
func LatLonToTile(lat, lon float64, zoom int) Tile {
	lat = math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, lat))

	n := math.Pow(2, float64(zoom))
	x := int(math.Floor((lon + 180.0) / 360.0 * n))

	latRad := lat * math.Pi / 180.0
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

	maxIndex := int(n) - 1
	x = clampIndex(x, maxIndex)
	y = clampIndex(y, maxIndex)

	return Tile{X: x, Y: y, Zoom: zoom}
}

// BoundingBox returns the tile's geographic extent. Longitudes come from the
// linear x axis; latitudes from the inverse Mercator formula.
func (t Tile) BoundingBox() BoundingBox {
	n := math.Pow(2, float64(t.Zoom))

	west := float64(t.X)/n*360.0 - 180.0
	east := float64(t.X+1)/n*360.0 - 180.0

	northRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(t.Y)/n)))
	southRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(t.Y+1)/n)))

	return BoundingBox{
		North: northRad * 180.0 / math.Pi,
		South: southRad * 180.0 / math.Pi,
		East:  east,
		West:  west,
	}
}

// TilesCovering enumerates every tile in the inclusive rectangle between the
// tile containing the viewport's northwest corner and the tile containing its
// southeast corner. Order is not significant to callers.
func TilesCovering(r Region, zoom int) []Tile {
	box := r.BoundingBox()

	nw := LatLonToTile(box.North, box.West, zoom)
	se := LatLonToTile(box.South, box.East, zoom)

	tiles := make([]Tile, 0, (se.X-nw.X+1)*(se.Y-nw.Y+1))
	for x := nw.X; x <= se.X; x++ {
		for y := nw.Y; y <= se.Y; y++ {
			tiles = append(tiles, Tile{X: x, Y: y, Zoom: zoom})
		}
	}
	return tiles
}

// Bound converts to an orb.Bound (min/max corner points, lon/lat order).
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return b.Bound().Contains(orb.Point{lon, lat})
}

// Intersects reports whether two boxes overlap.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.Bound().Intersects(other.Bound())
}

func clampIndex(i, maxIndex int) int {
	if i < 0 {
		return 0
	}
	if i > maxIndex {
		return maxIndex
	}
	return i
}

package domain

import (
	"context"

	"github.com/cartoscout/poi-tiles/internal/geo"
)

// Source fetches point-of-interest data for a geographic extent.
type Source interface {
	// FetchPOIs queries the upstream service for every feature inside the
	// bounding box matching the category set and optional name filter.
	// An empty categories slice selects DefaultCategories; an empty
	// nameFilter matches all names. Returns a complete list or an error,
	// never a partial result.
	FetchPOIs(ctx context.Context, box geo.BoundingBox, categories []Category, nameFilter string) ([]POI, error)
}

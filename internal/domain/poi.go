package domain

import (
	"strings"
	"time"
)

// Category is the closed set of point-of-interest classifications.
type Category string

const (
	CategoryMuseum             Category = "museum"
	CategoryArtGallery         Category = "art_gallery"
	CategoryMonument           Category = "monument"
	CategoryMemorial           Category = "memorial"
	CategoryArchaeologicalSite Category = "archaeological_site"
	CategoryHistoric           Category = "historic"
	CategoryAttraction         Category = "attraction"
	CategoryViewpoint          Category = "viewpoint"
	CategoryRestaurant         Category = "restaurant"
	CategoryCafe               Category = "cafe"
	CategoryHotel              Category = "hotel"
	CategoryInformation        Category = "information"
	CategoryOther              Category = "other"
)

// DefaultCategories is the category set queried when the caller does not
// filter: the cultural-heritage subset the application centers on.
var DefaultCategories = []Category{
	CategoryMuseum,
	CategoryArtGallery,
	CategoryMonument,
	CategoryMemorial,
	CategoryArchaeologicalSite,
	CategoryHistoric,
	CategoryAttraction,
}

// PlaceholderName substitutes for OSM features that carry no name tag.
const PlaceholderName = "(unnamed)"

// POI is a named, categorized, geolocated feature. ID is derived from the
// upstream element type and numeric identifier ("node-123456789"), globally
// unique and stable across repeated queries, which is what backs
// cross-tile deduplication.
type POI struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	Category    Category          `json:"category"`
	Tags        map[string]string `json:"tags,omitempty"`
	Address     string            `json:"address,omitempty"`
	Description string            `json:"description,omitempty"`
}

// TileResult is one tile fetch's worth of POIs plus its cache lifetime.
// Immutable once created; a re-fetch replaces the whole value under the
// same key.
type TileResult struct {
	TileKey   string
	POIs      []POI
	FetchedAt time.Time
	ExpiresAt time.Time
}

// categoryRule maps one upstream tag key/value pair to a category.
type categoryRule struct {
	key      string
	value    string
	category Category
}

// categoryRules is the fixed decision list for classifying an element from
// its tags. Evaluated in order; the first matching rule wins, so a feature
// tagged both tourism=museum and historic=monument classifies as a museum.
var categoryRules = []categoryRule{
	{"tourism", "museum", CategoryMuseum},
	{"tourism", "gallery", CategoryArtGallery},
	{"tourism", "art_gallery", CategoryArtGallery},
	{"historic", "monument", CategoryMonument},
	{"historic", "memorial", CategoryMemorial},
	{"historic", "archaeological_site", CategoryArchaeologicalSite},
	{"historic", "yes", CategoryHistoric},
	{"tourism", "attraction", CategoryAttraction},
	{"tourism", "viewpoint", CategoryViewpoint},
	{"amenity", "restaurant", CategoryRestaurant},
	{"amenity", "cafe", CategoryCafe},
	{"tourism", "hotel", CategoryHotel},
	{"tourism", "information", CategoryInformation},
	{"amenity", "information", CategoryInformation},
}

// CategoryFromTags classifies an element by its OSM tags, returning
// CategoryOther when no rule matches.
func CategoryFromTags(tags map[string]string) Category {
	for _, rule := range categoryRules {
		if tags[rule.key] == rule.value {
			return rule.category
		}
	}
	return CategoryOther
}

// AssembleAddress builds a display address from OSM addr:* tags. A full
// address tag wins outright; otherwise the individual components are joined.
// Returns "" when no address tags are present.
func AssembleAddress(tags map[string]string) string {
	if full := tags["addr:full"]; full != "" {
		return full
	}

	parts := make([]string, 0, 4)
	for _, key := range []string{"addr:housenumber", "addr:street", "addr:city", "addr:postcode"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

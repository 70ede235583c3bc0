package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFromTags(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want Category
	}{
		{"museum", map[string]string{"tourism": "museum"}, CategoryMuseum},
		{"gallery", map[string]string{"tourism": "gallery"}, CategoryArtGallery},
		{"art_gallery variant", map[string]string{"tourism": "art_gallery"}, CategoryArtGallery},
		{"monument", map[string]string{"historic": "monument"}, CategoryMonument},
		{"memorial", map[string]string{"historic": "memorial"}, CategoryMemorial},
		{"archaeological site", map[string]string{"historic": "archaeological_site"}, CategoryArchaeologicalSite},
		{"generic historic", map[string]string{"historic": "yes"}, CategoryHistoric},
		{"attraction", map[string]string{"tourism": "attraction"}, CategoryAttraction},
		{"viewpoint", map[string]string{"tourism": "viewpoint"}, CategoryViewpoint},
		{"restaurant", map[string]string{"amenity": "restaurant"}, CategoryRestaurant},
		{"cafe", map[string]string{"amenity": "cafe"}, CategoryCafe},
		{"hotel", map[string]string{"tourism": "hotel"}, CategoryHotel},
		{"tourist information", map[string]string{"tourism": "information"}, CategoryInformation},
		{"amenity information", map[string]string{"amenity": "information"}, CategoryInformation},
		{"unclassified", map[string]string{"building": "yes"}, CategoryOther},
		{"no tags", nil, CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryFromTags(tt.tags))
		})
	}
}

func TestCategoryFromTags_FirstMatchWins(t *testing.T) {
	// A museum in a monument building: the museum rule is evaluated first.
	tags := map[string]string{
		"tourism":  "museum",
		"historic": "monument",
	}
	assert.Equal(t, CategoryMuseum, CategoryFromTags(tags))

	// historic=yes ranks below the specific historic values.
	tags = map[string]string{
		"historic": "yes",
		"amenity":  "restaurant",
	}
	assert.Equal(t, CategoryHistoric, CategoryFromTags(tags))
}

func TestAssembleAddress(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{
			"full address wins",
			map[string]string{
				"addr:full":   "1 Museum Row, Springfield",
				"addr:street": "Ignored St",
			},
			"1 Museum Row, Springfield",
		},
		{
			"joined components",
			map[string]string{
				"addr:housenumber": "12",
				"addr:street":      "High Street",
				"addr:city":        "Oxford",
				"addr:postcode":    "OX1 4AW",
			},
			"12, High Street, Oxford, OX1 4AW",
		},
		{
			"partial components skip gaps",
			map[string]string{
				"addr:street": "High Street",
				"addr:city":   "Oxford",
			},
			"High Street, Oxford",
		},
		{"no address tags", map[string]string{"name": "Somewhere"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssembleAddress(tt.tags))
		})
	}
}

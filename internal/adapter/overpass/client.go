// Package overpass implements domain.Source against the Overpass API,
// the public query service for OpenStreetMap data.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cartoscout/poi-tiles/internal/domain"
	"github.com/cartoscout/poi-tiles/internal/geo"
	"github.com/cartoscout/poi-tiles/internal/observability"
)

// DefaultBaseURL is the main public Overpass interpreter endpoint.
const DefaultBaseURL = "https://overpass-api.de/api/interpreter"

// queryTimeoutSec is the server-side execution budget embedded in each query.
const queryTimeoutSec = 25

// resultLimit caps how many elements the server returns per tile query.
const resultLimit = 100

// tagPredicates maps each category to its Overpass tag filter.
var tagPredicates = map[domain.Category]string{
	domain.CategoryMuseum:             `"tourism"="museum"`,
	domain.CategoryArtGallery:         `"tourism"="gallery"`,
	domain.CategoryMonument:           `"historic"="monument"`,
	domain.CategoryMemorial:           `"historic"="memorial"`,
	domain.CategoryArchaeologicalSite: `"historic"="archaeological_site"`,
	domain.CategoryHistoric:           `"historic"="yes"`,
	domain.CategoryAttraction:         `"tourism"="attraction"`,
	domain.CategoryViewpoint:          `"tourism"="viewpoint"`,
	domain.CategoryRestaurant:         `"amenity"="restaurant"`,
	domain.CategoryCafe:               `"amenity"="cafe"`,
	domain.CategoryHotel:              `"tourism"="hotel"`,
}

// Client implements domain.Source using the Overpass API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Overpass client. An empty baseURL selects the public
// interpreter endpoint.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchPOIs queries Overpass for every matching feature inside the bounding
// box. It either returns the complete parsed list or fails for the whole
// call; there are no retries and no partial results.
func (c *Client) FetchPOIs(ctx context.Context, box geo.BoundingBox, categories []domain.Category, nameFilter string) ([]domain.POI, error) {
	query := buildQuery(box, categories, nameFilter)
	body := "data=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.TileFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		c.metrics.TileFetches.WithLabelValues("error").Inc()
		rawBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, rawBody)
	}

	var overpassResp response
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		c.metrics.TileFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	pois := make([]domain.POI, 0, len(overpassResp.Elements))
	dropped := 0
	for _, el := range overpassResp.Elements {
		poi, ok := el.toPOI()
		if !ok {
			dropped++
			continue
		}
		pois = append(pois, poi)
	}

	c.metrics.TileFetches.WithLabelValues("success").Inc()
	c.logger.Debug("overpass fetch complete",
		"elements", len(overpassResp.Elements),
		"pois", len(pois),
		"dropped", dropped,
	)
	return pois, nil
}

// buildQuery renders the Overpass QL template for one bounding box.
// nwr selects nodes, ways, and relations in a single clause; `out center`
// gives ways and relations a representative coordinate.
func buildQuery(box geo.BoundingBox, categories []domain.Category, nameFilter string) string {
	if len(categories) == 0 {
		categories = domain.DefaultCategories
	}

	predicates := make([]string, 0, len(categories))
	for _, cat := range categories {
		pred, ok := tagPredicates[cat]
		if !ok {
			pred = fmt.Sprintf(`"tourism"=%q`, string(cat))
		}
		predicates = append(predicates, pred)
	}

	nameClause := ""
	if nameFilter != "" {
		escaped := strings.ReplaceAll(nameFilter, `"`, `\"`)
		nameClause = fmt.Sprintf(`["name"~"%s",i]`, escaped)
	}

	bbox := fmt.Sprintf("%f,%f,%f,%f", box.South, box.West, box.North, box.East)

	return fmt.Sprintf(
		"[out:json][timeout:%d];\n(\n  nwr[%s]%s(%s);\n);\nout center tags %d;",
		queryTimeoutSec,
		strings.Join(predicates, "|"),
		nameClause,
		bbox,
		resultLimit,
	)
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *center           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// toPOI maps an element to a POI. Reports false for elements with no
// resolvable coordinates (neither direct nor center), which are dropped.
func (el element) toPOI() (domain.POI, bool) {
	var lat, lon float64
	switch {
	case el.Lat != nil && el.Lon != nil:
		lat, lon = *el.Lat, *el.Lon
	case el.Center != nil:
		lat, lon = el.Center.Lat, el.Center.Lon
	default:
		return domain.POI{}, false
	}

	tags := el.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	name := tags["name"]
	if name == "" {
		name = domain.PlaceholderName
	}

	description := tags["description"]
	if description == "" {
		description = tags["note"]
	}

	return domain.POI{
		ID:          fmt.Sprintf("%s-%d", el.Type, el.ID),
		Name:        name,
		Lat:         lat,
		Lon:         lon,
		Category:    domain.CategoryFromTags(tags),
		Tags:        tags,
		Address:     domain.AssembleAddress(tags),
		Description: description,
	}, true
}

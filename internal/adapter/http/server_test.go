package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/cartoscout/poi-tiles/internal/adapter/http"
	"github.com/cartoscout/poi-tiles/internal/domain"
	"github.com/cartoscout/poi-tiles/internal/geo"
	"github.com/cartoscout/poi-tiles/internal/orchestrator"
)

type mockProvider struct {
	result     orchestrator.Result
	err        error
	readyErr   error
	gotRegion  geo.Region
	gotOptions orchestrator.Options
}

func (m *mockProvider) UpdateViewport(_ context.Context, region geo.Region, opts orchestrator.Options) (orchestrator.Result, error) {
	m.gotRegion = region
	m.gotOptions = opts
	return m.result, m.err
}

func (m *mockProvider) CheckReadiness(_ context.Context) error { return m.readyErr }

func newTestServer(p httpadapter.POIProvider) *httpadapter.Server {
	return httpadapter.NewServer(":0", p, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const viewportQuery = "/pois?lat=37.5665&lon=126.978&lat_span=0.02&lon_span=0.02"

func TestPOIs_Success(t *testing.T) {
	tiles := []geo.Tile{{X: 1, Y: 2, Zoom: 14}, {X: 2, Y: 2, Zoom: 14}}
	provider := &mockProvider{result: orchestrator.Result{
		POIs:  []domain.POI{{ID: "node-1", Name: "Museum", Category: domain.CategoryMuseum}},
		Tiles: tiles,
	}}
	srv := newTestServer(provider)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		viewportQuery+"&categories=museum,monument&name=palace&max=50", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		POIs      []domain.POI `json:"pois"`
		TileCount int          `json:"tile_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.POIs, 1)
	assert.Equal(t, "node-1", body.POIs[0].ID)
	assert.Equal(t, 2, body.TileCount)

	assert.Equal(t, geo.Region{CenterLat: 37.5665, CenterLon: 126.978, LatSpan: 0.02, LonSpan: 0.02}, provider.gotRegion)
	assert.Equal(t, []domain.Category{domain.CategoryMuseum, domain.CategoryMonument}, provider.gotOptions.Categories)
	assert.Equal(t, "palace", provider.gotOptions.NameFilter)
	assert.Equal(t, 50, provider.gotOptions.MaxResults)
}

func TestPOIs_DefaultMaxResultsApplies(t *testing.T) {
	provider := &mockProvider{}
	srv := httpadapter.NewServer(":0", provider, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, viewportQuery, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, provider.gotOptions.MaxResults)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, viewportQuery+"&max=3", nil))
	assert.Equal(t, 3, provider.gotOptions.MaxResults)
}

func TestPOIs_MissingParameters(t *testing.T) {
	srv := newTestServer(&mockProvider{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pois?lat=37.5", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPOIs_NonPositiveSpan(t *testing.T) {
	srv := newTestServer(&mockProvider{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/pois?lat=37.5&lon=126.9&lat_span=0&lon_span=0.02", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPOIs_TotalUpstreamFailure(t *testing.T) {
	tiles := []geo.Tile{{X: 1, Y: 2, Zoom: 14}}
	provider := &mockProvider{
		result: orchestrator.Result{Tiles: tiles, FailedTiles: []string{"14_1_2"}},
		err:    errors.New("overpass down"),
	}
	srv := newTestServer(provider)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, viewportQuery, nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPOIs_PartialFailureStillReturnsResults(t *testing.T) {
	tiles := []geo.Tile{{X: 1, Y: 2, Zoom: 14}, {X: 2, Y: 2, Zoom: 14}}
	provider := &mockProvider{
		result: orchestrator.Result{
			POIs:        []domain.POI{{ID: "node-1", Name: "Museum"}},
			Tiles:       tiles,
			FailedTiles: []string{"14_2_2"},
		},
		err: errors.New("tile 14_2_2: boom"),
	}
	srv := newTestServer(provider)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, viewportQuery, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		FailedTiles []string `json:"failed_tiles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"14_2_2"}, body.FailedTiles)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockProvider{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(&mockProvider{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(&mockProvider{readyErr: errors.New("not ready yet")})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
}

package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	results map[string]GeocodingResult
	errs    map[string]error
	calls   []string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, name, _ string) (GeocodingResult, error) {
	m.calls = append(m.calls, name)
	return m.results[name], m.errs[name]
}

// --- tests ---

func TestGeocodeAreas(t *testing.T) {
	geo := &mockGeocoder{
		results: map[string]GeocodingResult{
			"新宿区": {Lat: 35.6938, Lon: 139.7034, FormattedAddress: "新宿区, 東京都, 日本", Confidence: 1},
			"台東区": {Lat: 35.7126, Lon: 139.7800},
		},
		errs: map[string]error{"港区": errors.New("mapbox API error: status 500")},
	}

	rows, unresolved := GeocodeAreas(context.Background(), geo, []string{"新宿区", "港区", "架空区", "台東区"}, "東京都", discardLogger())

	assert.Equal(t, []AreaCoordinate{
		{Area: "新宿区", Latitude: 35.6938, Longitude: 139.7034},
		{Area: "台東区", Latitude: 35.7126, Longitude: 139.7800},
	}, rows)
	assert.Equal(t, []string{"港区", "架空区"}, unresolved)
	assert.Len(t, geo.calls, 4)
}

func TestGeocodeAreas_CancelledContext(t *testing.T) {
	geo := &mockGeocoder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, unresolved := GeocodeAreas(ctx, geo, []string{"新宿区", "港区"}, "東京都", discardLogger())

	assert.Empty(t, rows)
	assert.Equal(t, []string{"新宿区", "港区"}, unresolved)
	assert.Empty(t, geo.calls)
}

package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  map[string]int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, name, _ string) (domain.GeocodingResult, error) {
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
	return m.result, m.err
}

var shinjuku = domain.GeocodingResult{Lat: 35.6938, Lon: 139.7034, PlaceName: "新宿区", FormattedAddress: "新宿区, 東京都, 日本"}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_Hit(t *testing.T) {
	inner := &countingGeocoder{result: shinjuku}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ForwardGeocode(context.Background(), "新宿区", "東京都")
	require.NoError(t, err)
	r2, err := cached.ForwardGeocode(context.Background(), "新宿区", "東京都")
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls["新宿区"], "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MapboxCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MapboxCache.WithLabelValues("miss")))
}

func TestCachedGeocoder_RegionIsPartOfKey(t *testing.T) {
	inner := &countingGeocoder{result: shinjuku}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "新宿区", "東京都")
	_, _ = cached.ForwardGeocode(context.Background(), "新宿区", "")

	assert.Equal(t, 2, inner.calls["新宿区"])
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "架空区", "東京都")
	_, _ = cached.ForwardGeocode(context.Background(), "架空区", "東京都")

	assert.Equal(t, 2, inner.calls["架空区"])
	assert.Zero(t, cached.Len())
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{result: shinjuku, err: errors.New("timeout")}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.ForwardGeocode(context.Background(), "新宿区", "東京都")
	require.Error(t, err)
	assert.Zero(t, cached.Len())
}

func TestCachedGeocoder_Eviction(t *testing.T) {
	inner := &countingGeocoder{result: shinjuku}
	cached := NewCachedGeocoder(inner, 2, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, _ = cached.ForwardGeocode(ctx, "A", "")
	_, _ = cached.ForwardGeocode(ctx, "B", "")
	_, _ = cached.ForwardGeocode(ctx, "A", "") // A becomes most recent
	_, _ = cached.ForwardGeocode(ctx, "C", "") // evicts B

	assert.Equal(t, 2, cached.Len())

	_, _ = cached.ForwardGeocode(ctx, "A", "")
	_, _ = cached.ForwardGeocode(ctx, "B", "")

	assert.Equal(t, 1, inner.calls["A"])
	assert.Equal(t, 2, inner.calls["B"])
}

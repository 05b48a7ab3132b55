package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/pkg/geo"
)

func TestDistance(t *testing.T) {
	// Chennai Central to Marina Beach, roughly 5.9km
	a := geo.Point{Lat: 13.0827, Lon: 80.2707}
	b := geo.Point{Lat: 13.0398, Lon: 80.2342}

	d := geo.Distance(a, b)
	assert.InDelta(t, 6200, d, 400)

	// Symmetric
	assert.InDelta(t, d, geo.Distance(b, a), 0.001)

	// Zero for identical points
	assert.Equal(t, 0.0, geo.Distance(a, a))
}

func TestInterpolate(t *testing.T) {
	a := geo.Point{Lat: 13.0, Lon: 80.0}
	b := geo.Point{Lat: 13.1, Lon: 80.1}

	mid := geo.Interpolate(0.5, a, b)
	assert.InDelta(t, 13.05, mid.Lat, 0.001)
	assert.InDelta(t, 80.05, mid.Lon, 0.001)

	// Endpoints are preserved
	start := geo.Interpolate(0, a, b)
	assert.InDelta(t, a.Lat, start.Lat, 1e-6)
	assert.InDelta(t, a.Lon, start.Lon, 1e-6)
}

func TestLine(t *testing.T) {
	a := geo.Point{Lat: 13.0, Lon: 80.0}
	b := geo.Point{Lat: 13.1, Lon: 80.1}

	points := geo.Line(a, b, 5)
	require.Len(t, points, 5)

	// Intermediate points are strictly between the endpoints and ordered
	prev := a
	for _, p := range points {
		assert.Greater(t, p.Lat, prev.Lat)
		assert.Less(t, p.Lat, b.Lat)
		prev = p
	}

	assert.Nil(t, geo.Line(a, b, 0))
}

func TestPathLength(t *testing.T) {
	a := geo.Point{Lat: 13.0827, Lon: 80.2707}
	b := geo.Point{Lat: 13.0398, Lon: 80.2342}

	direct := geo.Distance(a, b)
	path := append([]geo.Point{a}, append(geo.Line(a, b, 5), b)...)

	// A great-circle path through interpolated points has the same length
	assert.InDelta(t, direct, geo.PathLength(path), 1.0)

	assert.Equal(t, 0.0, geo.PathLength([]geo.Point{a}))
	assert.Equal(t, 0.0, geo.PathLength(nil))
}

func TestPointValid(t *testing.T) {
	tests := []struct {
		name  string
		point geo.Point
		valid bool
	}{
		{"valid", geo.Point{Lat: 13.08, Lon: 80.27}, true},
		{"lat too high", geo.Point{Lat: 91, Lon: 0}, false},
		{"lat too low", geo.Point{Lat: -91, Lon: 0}, false},
		{"lon too high", geo.Point{Lat: 0, Lon: 181}, false},
		{"lon too low", geo.Point{Lat: 0, Lon: -181}, false},
		{"boundary", geo.Point{Lat: 90, Lon: 180}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.point.Valid())
		})
	}
}

func TestBoundingBox(t *testing.T) {
	center := geo.Point{Lat: 13.0827, Lon: 80.2707}
	dLat, dLon := geo.BoundingBox(center, 500)

	// 500m is roughly 0.0045 degrees of latitude
	assert.InDelta(t, 0.0045, dLat, 0.0005)
	// Longitude delta widens away from the equator
	assert.Greater(t, dLon, dLat)
}

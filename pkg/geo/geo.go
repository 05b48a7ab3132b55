// Package geo provides great-circle geometry helpers built on the S2 library.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the Earth's mean radius.
const EarthRadiusMeters = 6371000.0

// Point represents a geographic point in WGS84 degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point is within valid coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Interpolate returns the point at fraction t (0..1) along the great-circle
// arc from a to b.
func Interpolate(t float64, a, b Point) Point {
	p1 := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lon))
	p2 := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lon))
	mid := s2.LatLngFromPoint(s2.Interpolate(t, p1, p2))
	return Point{Lat: mid.Lat.Degrees(), Lon: mid.Lng.Degrees()}
}

// Line returns n evenly spaced intermediate points strictly between a and b.
// Used to synthesize a walkable path when no routing provider is available.
func Line(a, b Point, n int) []Point {
	if n <= 0 {
		return nil
	}
	points := make([]Point, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n+1)
		points = append(points, Interpolate(t, a, b))
	}
	return points
}

// PathLength returns the total length of a path in meters.
func PathLength(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// BoundingBox returns the lat/lon deltas covering radiusMeters around a point.
// The longitude delta widens with latitude; results are suitable for a
// coarse prefilter before an exact distance check.
func BoundingBox(center Point, radiusMeters float64) (dLat, dLon float64) {
	dLat = radiusMeters / EarthRadiusMeters * 180 / math.Pi
	cosLat := math.Cos(center.Lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLon = dLat / cosLat
	return dLat, dLon
}

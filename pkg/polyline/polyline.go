// Package polyline implements Google's polyline encoding at the standard
// 1e-5 precision used by OSRM.
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"math"

	"github.com/saferoute/saferoute/pkg/geo"
)

const precision = 1e5

// Decode converts a polyline-encoded string into a slice of points.
func Decode(encoded string) []geo.Point {
	if encoded == "" {
		return nil
	}

	var points []geo.Point
	var lat, lon, pos int

	for pos < len(encoded) {
		var latDelta, lonDelta int
		latDelta, pos = nextDelta(encoded, pos)
		lonDelta, pos = nextDelta(encoded, pos)

		lat += latDelta
		lon += lonDelta
		points = append(points, geo.Point{
			Lat: float64(lat) / precision,
			Lon: float64(lon) / precision,
		})
	}

	return points
}

// nextDelta reads one zigzag-encoded varint starting at pos.
func nextDelta(encoded string, pos int) (delta, next int) {
	var result, shift int
	for pos < len(encoded) {
		chunk := int(encoded[pos]) - 63
		pos++
		result |= (chunk & 0x1f) << shift
		shift += 5
		if chunk < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), pos
	}
	return result >> 1, pos
}

// Encode converts a slice of points into a polyline-encoded string.
func Encode(points []geo.Point) string {
	if len(points) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(points)*4)
	var prevLat, prevLon int

	for _, p := range points {
		lat := int(math.Round(p.Lat * precision))
		lon := int(math.Round(p.Lon * precision))

		buf = appendDelta(buf, lat-prevLat)
		buf = appendDelta(buf, lon-prevLon)

		prevLat, prevLon = lat, lon
	}

	return string(buf)
}

// appendDelta writes one value as a zigzag-encoded varint.
func appendDelta(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}

// Length returns the total length of a polyline in meters.
func Length(points []geo.Point) float64 {
	return geo.PathLength(points)
}

// Sample returns points spaced approximately intervalMeters apart along the
// polyline, always keeping the endpoints. This bounds per-waypoint safety
// scoring on long routes.
func Sample(points []geo.Point, intervalMeters float64) []geo.Point {
	if len(points) == 0 {
		return nil
	}
	if intervalMeters <= 0 {
		return points
	}

	sampled := []geo.Point{points[0]}
	accumulated := 0.0

	for i := 1; i < len(points); i++ {
		segmentDist := geo.Distance(points[i-1], points[i])

		for accumulated+segmentDist >= intervalMeters {
			remaining := intervalMeters - accumulated
			fraction := remaining / segmentDist

			sampled = append(sampled, geo.Point{
				Lat: points[i-1].Lat + fraction*(points[i].Lat-points[i-1].Lat),
				Lon: points[i-1].Lon + fraction*(points[i].Lon-points[i-1].Lon),
			})

			segmentDist -= remaining
			accumulated = 0
		}

		accumulated += segmentDist
	}

	if last := points[len(points)-1]; sampled[len(sampled)-1] != last {
		sampled = append(sampled, last)
	}

	return sampled
}

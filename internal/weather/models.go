// Package weather provides current-conditions data for safety scoring.
// Severe weather raises the hazard factor: flooded drains, low visibility
// and empty streets all make a walk riskier.
package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Observation represents current weather at a specific point.
type Observation struct {
	// Location coordinates
	Lat float64
	Lon float64

	// Temperature in Celsius
	Temperature float64

	// Precipitation in mm over the last hour
	Precipitation float64

	// WindSpeed in km/h
	WindSpeed float64

	// WMOCode is the WMO weather interpretation code (0-99).
	WMOCode int

	// IsDay reports whether the sun is up at the location.
	IsDay bool

	// Timestamps
	ObservedAt time.Time
	FetchedAt  time.Time
}

// Severity maps the observation onto a [0,1] hazard severity, 0 for clear
// conditions and 1 for conditions dangerous to pedestrians.
func (o *Observation) Severity() float64 {
	switch {
	case o.WMOCode >= 95: // thunderstorm, with or without hail
		return 1.0
	case o.WMOCode >= 85: // snow showers
		return 0.7
	case o.WMOCode >= 80: // rain showers
		return 0.6
	case o.WMOCode >= 71: // snow
		return 0.6
	case o.WMOCode >= 65: // heavy rain, freezing rain
		return 0.7
	case o.WMOCode >= 61: // rain
		return 0.5
	case o.WMOCode >= 51: // drizzle
		return 0.3
	case o.WMOCode >= 45: // fog
		return 0.3
	case o.WMOCode >= 1: // clouds
		return 0.05
	default: // clear
		return 0.0
	}
}

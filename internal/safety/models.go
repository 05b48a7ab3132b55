// Package safety computes pedestrian safety scores for geographic points by
// blending lighting, footfall, hazard and proximity-to-help factors.
package safety

import (
	"context"
	"errors"
	"time"

	"github.com/saferoute/saferoute/pkg/geo"
)

// Sentinel errors for safety scoring.
var (
	// ErrInvalidCoordinates indicates the provided coordinates are out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrScoreNotFound indicates no stored score exists for the location.
	ErrScoreNotFound = errors.New("safety score not found")
)

// UserType identifies the mode of travel the score is computed for.
type UserType string

const (
	UserTypePedestrian UserType = "pedestrian"
	UserTypeTwoWheeler UserType = "two_wheeler"
	UserTypeCyclist    UserType = "cyclist"
)

// Multiplier returns the final derating applied for this user type.
// Pedestrians are the baseline; faster modes have less time to react.
func (u UserType) Multiplier() float64 {
	switch u {
	case UserTypeTwoWheeler:
		return 0.95
	case UserTypeCyclist:
		return 0.90
	default:
		return 1.0
	}
}

// TimeOfDay identifies the time bucket the score is computed for.
type TimeOfDay string

const (
	TimeOfDayDay     TimeOfDay = "day"
	TimeOfDayEvening TimeOfDay = "evening"
	TimeOfDayNight   TimeOfDay = "night"
)

// lightingFactor returns the lighting derate for this time bucket.
func (t TimeOfDay) lightingFactor() float64 {
	switch t {
	case TimeOfDayNight:
		return 0.70
	case TimeOfDayEvening:
		return 0.85
	default:
		return 1.0
	}
}

// Weights holds the blend weights for the four safety factors. A fixed-key
// struct rather than a map, so a misspelled factor cannot be silently dropped.
// Weights are expected to sum to 1.0 by convention; this is not enforced.
type Weights struct {
	Lighting  float64 `json:"lighting"`
	Footfall  float64 `json:"footfall"`
	Hazards   float64 `json:"hazards"`
	Proximity float64 `json:"proximity"`
}

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		Lighting:  0.30,
		Footfall:  0.25,
		Hazards:   0.20,
		Proximity: 0.25,
	}
}

// Factor is a single scored safety factor.
type Factor struct {
	// Score is the factor value in [0,100]. For the hazards factor a higher
	// score means more hazardous; it is inverted before blending.
	Score int `json:"score"`

	// Weight is the blend weight this factor carried.
	Weight float64 `json:"weight"`

	// Description explains what the factor measured.
	Description string `json:"description,omitempty"`
}

// FactorSet holds the four factors that went into a score.
type FactorSet struct {
	Lighting  Factor `json:"lighting"`
	Footfall  Factor `json:"footfall"`
	Hazards   Factor `json:"hazards"`
	Proximity Factor `json:"proximity"`
}

// Result is an immutable safety score for a single location. Every request
// produces a fresh Result; prior results are never mutated.
type Result struct {
	// OverallScore is the blended safety score in [0,100], higher is safer.
	OverallScore int

	// Factors are the four factor values used in the blend.
	Factors FactorSet

	// Weights are the blend weights used.
	Weights Weights

	// Confidence is the fraction of factor sources that answered, in [0,1].
	Confidence float64

	// Degraded is true when confidence fell below the reliable threshold
	// because one or more factor sources failed or timed out.
	Degraded bool

	// Location is the point the score was computed for.
	Location geo.Point

	// UserType is the travel mode the score applies to.
	UserType UserType

	// TimeOfDay is the time bucket the score applies to.
	TimeOfDay TimeOfDay

	// ComputedAt is when the score was computed.
	ComputedAt time.Time
}

// Request describes a single score computation.
type Request struct {
	Location  geo.Point
	UserType  UserType
	TimeOfDay TimeOfDay

	// Weights overrides the default blend weights when non-nil.
	Weights *Weights
}

// POICategory selects the class of points of interest to count.
type POICategory string

const (
	// POICategoryAll counts every amenity, shop and tourism POI.
	POICategoryAll POICategory = "all"
	// POICategoryEmergency counts police stations, hospitals and fire stations.
	POICategoryEmergency POICategory = "emergency"
)

// LightingSource supplies normalized satellite night-light brightness.
type LightingSource interface {
	// Brightness returns the normalized brightness in [0,1] at a point.
	Brightness(ctx context.Context, lat, lon float64) (float64, error)
}

// POISource supplies point-of-interest counts around a point.
type POISource interface {
	// Count returns the number of POIs of the category within radiusMeters.
	Count(ctx context.Context, lat, lon, radiusMeters float64, category POICategory) (int, error)
}

// DarkSpotSource supplies counts of reported poorly lit locations.
type DarkSpotSource interface {
	// CountWithin returns the number of known dark spots within radiusMeters.
	CountWithin(ctx context.Context, lat, lon, radiusMeters float64) (int, error)
}

// WeatherSource supplies current weather severity.
type WeatherSource interface {
	// Severity returns the current weather severity in [0,1] at a point,
	// where 0 is clear and 1 is dangerous (storm, heavy rain).
	Severity(ctx context.Context, lat, lon float64) (float64, error)
}

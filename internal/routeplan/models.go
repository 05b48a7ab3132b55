// Package routeplan plans pedestrian routes that trade travel time against
// safety. It combines road-network routes with per-waypoint safety scores
// and offers safest, balanced and fastest options.
package routeplan

import (
	"errors"
	"time"

	"github.com/saferoute/saferoute/internal/safety"
	"github.com/saferoute/saferoute/pkg/geo"
)

// Route plan errors.
var (
	// ErrInvalidCoordinates indicates a start or end point is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrInvalidPreference indicates the safety preference is outside [0,100].
	ErrInvalidPreference = errors.New("safety preference must be in [0,100]")
	// ErrPlanNotFound indicates no stored plan exists for the ID.
	ErrPlanNotFound = errors.New("route plan not found")
)

// OptionKind names the three route options a plan offers.
type OptionKind string

const (
	OptionSafest   OptionKind = "safest"
	OptionBalanced OptionKind = "balanced"
	OptionFastest  OptionKind = "fastest"
)

// Request describes a route planning request.
type Request struct {
	Start geo.Point
	End   geo.Point

	// UserType is the travel mode. Default: pedestrian.
	UserType safety.UserType

	// TimeOfDay is the time bucket scores are computed for. Default: day.
	TimeOfDay safety.TimeOfDay

	// SafetyPreference expresses how much the user values safety over speed,
	// in [0,100]. 0 means fastest possible, 100 means safest possible.
	SafetyPreference int
}

// Option is a single route option within a plan.
type Option struct {
	Kind OptionKind `json:"kind"`

	// GeometryPolyline is the route geometry, precision-5 encoded. Empty for
	// synthesized fallback routes, which carry Waypoints instead.
	GeometryPolyline string `json:"geometry_polyline,omitempty"`

	// Waypoints are the route points for synthesized routes.
	Waypoints []geo.Point `json:"waypoints,omitempty"`

	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`

	// SafetyScore is the averaged waypoint safety score in [0,100].
	SafetyScore int `json:"safety_score"`

	// Cost is the weighted planning cost; lower is better. Comparable only
	// within the same plan.
	Cost float64 `json:"cost"`
}

// Plan is the result of a route planning request.
type Plan struct {
	ID string `json:"id"`

	Start geo.Point `json:"start"`
	End   geo.Point `json:"end"`

	// Options holds the safest, balanced and fastest routes.
	Options []Option `json:"options"`

	// Recommended is the kind of the lowest-cost option.
	Recommended OptionKind `json:"recommended"`

	// TimeWeight and SafetyWeight are the blend weights derived from the
	// safety preference. They sum to 1.
	TimeWeight   float64 `json:"time_weight"`
	SafetyWeight float64 `json:"safety_weight"`

	// Fallback is true when no road-network route was available and the
	// geometry was synthesized as a straight line.
	Fallback bool `json:"fallback"`

	// SampledWaypoints is how many points were safety-scored.
	SampledWaypoints int `json:"sampled_waypoints"`

	// Confidence is the minimum confidence across sampled safety scores.
	Confidence float64 `json:"confidence"`

	UserType   safety.UserType  `json:"user_type"`
	TimeOfDay  safety.TimeOfDay `json:"time_of_day"`
	ComputedAt time.Time        `json:"computed_at"`
}

// Option returns the plan option of the given kind, or nil.
func (p *Plan) Option(kind OptionKind) *Option {
	for i := range p.Options {
		if p.Options[i].Kind == kind {
			return &p.Options[i]
		}
	}
	return nil
}

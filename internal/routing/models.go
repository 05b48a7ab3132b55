// Package routing provides road-network route computation for pedestrian
// and cyclist modes.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/saferoute/saferoute/pkg/geo"
	"github.com/saferoute/saferoute/pkg/polyline"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// GetDirections retrieves route directions between two points.
	// Returns multiple route alternatives when available.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
	// SupportedProfiles returns the list of route profiles this provider supports.
	SupportedProfiles() []RouteProfile
}

// RouteProfile represents a routing profile (mode of transport).
type RouteProfile string

const (
	// ProfileFoot is the walking profile for pedestrian routing.
	ProfileFoot RouteProfile = "foot"
	// ProfileBike is the cycling profile.
	ProfileBike RouteProfile = "bike"
)

// DirectionsRequest is the request for computing routes.
type DirectionsRequest struct {
	Origin      geo.Point
	Destination geo.Point
	Profile     RouteProfile

	// Alternatives requests alternative routes when the provider has them.
	Alternatives bool
}

// DirectionsResponse is the response containing route alternatives.
type DirectionsResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route represents a single route option.
type Route struct {
	GeometryPolyline string  // Encoded polyline (precision 5)
	DistanceMeters   float64 // Total distance in meters
	DurationSeconds  float64 // Total duration in seconds
	Summary          string  // Human-readable route summary
}

// Waypoints decodes the route geometry into points.
func (r *Route) Waypoints() []geo.Point {
	return polyline.Decode(r.GeometryPolyline)
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}

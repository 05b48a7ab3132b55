// Package poi provides point-of-interest counts used as a proxy for street
// activity, lighting and nearby help.
package poi

import "errors"

// POI errors.
var (
	ErrProviderUnavailable = errors.New("poi provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrInvalidRadius       = errors.New("invalid radius")
)

// Category selects which POIs a query counts.
type Category string

const (
	// CategoryAll counts amenities, shops and tourism POIs.
	CategoryAll Category = "all"

	// CategoryEmergency counts police stations, hospitals, clinics and fire
	// stations.
	CategoryEmergency Category = "emergency"
)

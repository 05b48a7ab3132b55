// Package lighting provides satellite night-light brightness for safety
// scoring. Brightness is normalized to [0,1], where 0 is unlit and 1 matches
// a brightly lit commercial district.
package lighting

import "errors"

// Lighting errors.
var (
	ErrProviderUnavailable = errors.New("lighting provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

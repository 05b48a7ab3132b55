package models

// RouteCalculateRequest is the request body for calculating safe routes.
type RouteCalculateRequest struct {
	Start *Point `json:"start"`
	End   *Point `json:"end"`

	UserType  UserType  `json:"userType,omitempty"`
	TimeOfDay TimeOfDay `json:"timeOfDay,omitempty"`

	// SafetyPreference trades travel time for safety, 0 (fastest) to
	// 100 (safest). Defaults to 50.
	SafetyPreference *int `json:"safetyPreference,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// RouteCalculateResponse is the response for route calculation.
type RouteCalculateResponse struct {
	ID               string        `json:"id"`
	Start            Point         `json:"start"`
	End              Point         `json:"end"`
	Options          []RouteOption `json:"options"`
	Recommended      RouteKind     `json:"recommended"`
	TimeWeight       float64       `json:"timeWeight"`
	SafetyWeight     float64       `json:"safetyWeight"`
	Fallback         bool          `json:"fallback,omitempty"`
	SampledWaypoints int           `json:"sampledWaypoints"`
	Confidence       float64       `json:"confidence"`
	ComputedAt       Timestamp     `json:"computedAt"`
}

// RouteOption represents a single route alternative.
type RouteOption struct {
	Kind             RouteKind `json:"kind"`
	GeometryPolyline string    `json:"geometryPolyline,omitempty"`
	Waypoints        []Point   `json:"waypoints,omitempty"`
	DistanceMeters   float64   `json:"distanceMeters"`
	DurationSeconds  float64   `json:"durationSeconds"`
	SafetyScore      int       `json:"safetyScore"`
	Cost             float64   `json:"cost"`
}

package models

// SafetyScoreResponse is the response for a point safety score.
type SafetyScoreResponse struct {
	OverallScore int           `json:"overallScore"`
	Factors      SafetyFactors `json:"factors"`
	Weights      SafetyWeights `json:"weights"`
	Confidence   float64       `json:"confidence"`
	Degraded     bool          `json:"degraded,omitempty"`
	Location     Point         `json:"location"`
	UserType     UserType      `json:"userType"`
	TimeOfDay    TimeOfDay     `json:"timeOfDay"`
	ComputedAt   Timestamp     `json:"computedAt"`
}

// SafetyFactors holds the four factor values behind a score.
type SafetyFactors struct {
	Lighting  SafetyFactor `json:"lighting"`
	Footfall  SafetyFactor `json:"footfall"`
	Hazards   SafetyFactor `json:"hazards"`
	Proximity SafetyFactor `json:"proximity"`
}

// SafetyFactor is a single scored factor.
type SafetyFactor struct {
	Score       int     `json:"score"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// SafetyScoreSnapshot is a persisted safety score returned by the
// latest-score endpoint.
type SafetyScoreSnapshot struct {
	ID             string    `json:"id"`
	Location       Point     `json:"location"`
	OverallScore   int       `json:"overallScore"`
	LightingScore  int       `json:"lightingScore"`
	FootfallScore  int       `json:"footfallScore"`
	HazardsScore   int       `json:"hazardsScore"`
	ProximityScore int       `json:"proximityScore"`
	Confidence     float64   `json:"confidence"`
	UserType       UserType  `json:"userType"`
	TimeOfDay      TimeOfDay `json:"timeOfDay"`
	ComputedAt     Timestamp `json:"computedAt"`
}

// SafetyWeights holds the blend weights used for a score.
type SafetyWeights struct {
	Lighting  float64 `json:"lighting"`
	Footfall  float64 `json:"footfall"`
	Hazards   float64 `json:"hazards"`
	Proximity float64 `json:"proximity"`
}

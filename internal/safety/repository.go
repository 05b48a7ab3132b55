package safety

import (
	"context"
	"time"
)

// Record is a persisted safety score snapshot.
type Record struct {
	ID             string
	Lat            float64
	Lon            float64
	OverallScore   int
	LightingScore  int
	FootfallScore  int
	HazardsScore   int
	ProximityScore int
	Confidence     float64
	UserType       UserType
	TimeOfDay      TimeOfDay
	ComputedAt     time.Time
}

// Repository stores computed safety scores for later retrieval and analysis.
type Repository interface {
	// Save persists a score snapshot.
	Save(ctx context.Context, record *Record) error

	// LatestNear returns the most recent score within radiusMeters of the
	// point, or ErrScoreNotFound if none exists.
	LatestNear(ctx context.Context, lat, lon, radiusMeters float64) (*Record, error)
}

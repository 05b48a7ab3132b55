package safety

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saferoute/saferoute/pkg/geo"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL safety score repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save persists a score snapshot.
func (r *PostgresRepository) Save(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO safety_scores (
			id, lat, lon, overall_score,
			lighting_score, footfall_score, hazards_score, proximity_score,
			confidence, user_type, time_of_day, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Lat,
		record.Lon,
		record.OverallScore,
		record.LightingScore,
		record.FootfallScore,
		record.HazardsScore,
		record.ProximityScore,
		record.Confidence,
		record.UserType,
		record.TimeOfDay,
		record.ComputedAt,
	)
	return err
}

// LatestNear returns the most recent score within radiusMeters of the point.
// Candidates are narrowed with a bounding box on the lat/lon index.
func (r *PostgresRepository) LatestNear(ctx context.Context, lat, lon, radiusMeters float64) (*Record, error) {
	dLat, dLon := geo.BoundingBox(geo.Point{Lat: lat, Lon: lon}, radiusMeters)

	query := `
		SELECT
			id, lat, lon, overall_score,
			lighting_score, footfall_score, hazards_score, proximity_score,
			confidence, user_type, time_of_day, computed_at
		FROM safety_scores
		WHERE lat BETWEEN $1 AND $2
		  AND lon BETWEEN $3 AND $4
		ORDER BY computed_at DESC
		LIMIT 1
	`

	var record Record
	err := r.pool.QueryRow(ctx, query, lat-dLat, lat+dLat, lon-dLon, lon+dLon).Scan(
		&record.ID,
		&record.Lat,
		&record.Lon,
		&record.OverallScore,
		&record.LightingScore,
		&record.FootfallScore,
		&record.HazardsScore,
		&record.ProximityScore,
		&record.Confidence,
		&record.UserType,
		&record.TimeOfDay,
		&record.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, err
	}

	return &record, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

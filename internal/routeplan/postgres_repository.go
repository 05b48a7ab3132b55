package routeplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Options are stored as JSONB; the scalar columns carry what queries filter
// on.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL route plan repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save persists a plan.
func (r *PostgresRepository) Save(ctx context.Context, plan *Plan) error {
	options, err := json.Marshal(plan.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	query := `
		INSERT INTO route_plans (
			id, start_lat, start_lon, end_lat, end_lon,
			options, recommended, time_weight, safety_weight,
			fallback, sampled_waypoints, confidence,
			user_type, time_of_day, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.pool.Exec(ctx, query,
		plan.ID,
		plan.Start.Lat,
		plan.Start.Lon,
		plan.End.Lat,
		plan.End.Lon,
		options,
		plan.Recommended,
		plan.TimeWeight,
		plan.SafetyWeight,
		plan.Fallback,
		plan.SampledWaypoints,
		plan.Confidence,
		plan.UserType,
		plan.TimeOfDay,
		plan.ComputedAt,
	)
	return err
}

// Get retrieves a plan by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Plan, error) {
	query := `
		SELECT
			id, start_lat, start_lon, end_lat, end_lon,
			options, recommended, time_weight, safety_weight,
			fallback, sampled_waypoints, confidence,
			user_type, time_of_day, computed_at
		FROM route_plans
		WHERE id = $1
	`

	var plan Plan
	var options []byte

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&plan.ID,
		&plan.Start.Lat,
		&plan.Start.Lon,
		&plan.End.Lat,
		&plan.End.Lon,
		&options,
		&plan.Recommended,
		&plan.TimeWeight,
		&plan.SafetyWeight,
		&plan.Fallback,
		&plan.SampledWaypoints,
		&plan.Confidence,
		&plan.UserType,
		&plan.TimeOfDay,
		&plan.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(options, &plan.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}

	return &plan, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

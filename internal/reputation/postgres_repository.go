package reputation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL reputation repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a user's reputation.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*Reputation, error) {
	query := `
		SELECT user_id, positive_events, total_events, score, standing, updated_at
		FROM user_reputations
		WHERE user_id = $1
	`

	var rep Reputation
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rep.UserID,
		&rep.PositiveEvents,
		&rep.TotalEvents,
		&rep.Score,
		&rep.Standing,
		&rep.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReputationNotFound
		}
		return nil, err
	}

	return &rep, nil
}

// Upsert creates or replaces a user's reputation.
func (r *PostgresRepository) Upsert(ctx context.Context, rep *Reputation) error {
	query := `
		INSERT INTO user_reputations (
			user_id, positive_events, total_events, score, standing, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			positive_events = EXCLUDED.positive_events,
			total_events = EXCLUDED.total_events,
			score = EXCLUDED.score,
			standing = EXCLUDED.standing,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		rep.UserID,
		rep.PositiveEvents,
		rep.TotalEvents,
		rep.Score,
		rep.Standing,
		rep.UpdatedAt,
	)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

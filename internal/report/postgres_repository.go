package report

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

// NewPostgresRepository creates a new PostgreSQL report repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `
	id, user_id, lat, lon, hazard_type, description, status,
	resolved_by, created_at, resolved_at
`

// Create persists a new report.
func (r *PostgresRepository) Create(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO hazard_reports (
			id, user_id, lat, lon, hazard_type, description, status,
			resolved_by, created_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.UserID,
		report.Location.Lat,
		report.Location.Lon,
		report.HazardType,
		report.Description,
		report.Status,
		nullable(report.ResolvedBy),
		report.CreatedAt,
		report.ResolvedAt,
	)
	return err
}

// Get retrieves a report by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM hazard_reports WHERE id = $1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// Update replaces a report's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, report *Report) error {
	query := `
		UPDATE hazard_reports SET
			status = $2,
			resolved_by = $3,
			resolved_at = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		report.ID,
		report.Status,
		nullable(report.ResolvedBy),
		report.ResolvedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ListNear returns reports within radiusMeters of the point, newest first.
// Candidates are narrowed with a bounding box and filtered precisely in Go.
func (r *PostgresRepository) ListNear(ctx context.Context, lat, lon, radiusMeters float64, filter ListFilter) ([]*Report, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	center := geo.Point{Lat: lat, Lon: lon}
	dLat, dLon := geo.BoundingBox(center, radiusMeters)

	query := `SELECT ` + reportColumns + `
		FROM hazard_reports
		WHERE lat BETWEEN $1 AND $2
		  AND lon BETWEEN $3 AND $4
		  AND ($5 = '' OR status = $5)
		  AND ($6 = '' OR hazard_type = $6)
		ORDER BY created_at DESC
		LIMIT $7
	`

	rows, err := r.pool.Query(ctx, query,
		lat-dLat, lat+dLat,
		lon-dLon, lon+dLon,
		string(filter.Status),
		string(filter.HazardType),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		// Bounding box overshoots at the corners; keep the true circle.
		if geo.Distance(center, report.Location) > radiusMeters {
			continue
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var report Report
	var resolvedBy *string

	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.Location.Lat,
		&report.Location.Lon,
		&report.HazardType,
		&report.Description,
		&report.Status,
		&resolvedBy,
		&report.CreatedAt,
		&report.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if resolvedBy != nil {
		report.ResolvedBy = *resolvedBy
	}
	return &report, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

package darkspot

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saferoute/saferoute/pkg/geo"
)

// PostgresStore counts verified poor-lighting reports straight from the
// hazard_reports table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL dark spot store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CountWithin returns the number of dark spots within radiusMeters. The
// bounding box narrows candidates on the lat/lon index; the exact circle is
// applied in Go.
func (s *PostgresStore) CountWithin(ctx context.Context, lat, lon, radiusMeters float64) (int, error) {
	center := geo.Point{Lat: lat, Lon: lon}
	dLat, dLon := geo.BoundingBox(center, radiusMeters)

	query := `
		SELECT lat, lon
		FROM hazard_reports
		WHERE hazard_type = 'poor_lighting'
		  AND status = 'verified'
		  AND lat BETWEEN $1 AND $2
		  AND lon BETWEEN $3 AND $4
	`

	rows, err := s.pool.Query(ctx, query, lat-dLat, lat+dLat, lon-dLon, lon+dLon)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var p geo.Point
		if err := rows.Scan(&p.Lat, &p.Lon); err != nil {
			return 0, err
		}
		if geo.Distance(center, p) <= radiusMeters {
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return count, nil
}

// Ensure PostgresStore implements Store interface.
var _ Store = (*PostgresStore)(nil)

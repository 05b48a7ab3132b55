package safety

import (
	"context"
	"sync"

	"github.com/saferoute/saferoute/pkg/geo"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []*Record
}

// NewInMemoryRepository creates a new in-memory safety score repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Save persists a score snapshot.
func (r *InMemoryRepository) Save(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *record
	r.records = append(r.records, &cpy)
	return nil
}

// LatestNear returns the most recent score within radiusMeters of the point.
func (r *InMemoryRepository) LatestNear(_ context.Context, lat, lon, radiusMeters float64) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	center := geo.Point{Lat: lat, Lon: lon}

	var latest *Record
	for _, rec := range r.records {
		if geo.Distance(center, geo.Point{Lat: rec.Lat, Lon: rec.Lon}) > radiusMeters {
			continue
		}
		if latest == nil || rec.ComputedAt.After(latest.ComputedAt) {
			latest = rec
		}
	}

	if latest == nil {
		return nil, ErrScoreNotFound
	}

	cpy := *latest
	return &cpy, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

package report

import (
	"context"
	"sort"
	"sync"

	"github.com/saferoute/saferoute/pkg/geo"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

// NewInMemoryRepository creates a new in-memory report repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reports: make(map[string]*Report),
	}
}

// Create persists a new report.
func (r *InMemoryRepository) Create(_ context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *report
	r.reports[report.ID] = &cpy
	return nil
}

// Get retrieves a report by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}

	cpy := *report
	return &cpy, nil
}

// Update replaces a report's mutable fields.
func (r *InMemoryRepository) Update(_ context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[report.ID]; !ok {
		return ErrReportNotFound
	}

	cpy := *report
	r.reports[report.ID] = &cpy
	return nil
}

// ListNear returns reports within radiusMeters of the point, newest first.
func (r *InMemoryRepository) ListNear(_ context.Context, lat, lon, radiusMeters float64, filter ListFilter) ([]*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	center := geo.Point{Lat: lat, Lon: lon}

	var reports []*Report
	for _, report := range r.reports {
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if filter.HazardType != "" && report.HazardType != filter.HazardType {
			continue
		}
		if geo.Distance(center, report.Location) > radiusMeters {
			continue
		}
		cpy := *report
		reports = append(reports, &cpy)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	if len(reports) > limit {
		reports = reports[:limit]
	}

	return reports, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

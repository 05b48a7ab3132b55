package report

import "context"

// ListFilter narrows report queries.
type ListFilter struct {
	// Status filters by lifecycle status when non-empty.
	Status Status

	// HazardType filters by hazard type when non-empty.
	HazardType HazardType

	// Limit caps the number of returned reports. Default: 50.
	Limit int
}

// Repository stores hazard reports.
type Repository interface {
	// Create persists a new report.
	Create(ctx context.Context, report *Report) error

	// Get retrieves a report by ID, or ErrReportNotFound.
	Get(ctx context.Context, id string) (*Report, error)

	// Update replaces a report's mutable fields (status, resolver).
	Update(ctx context.Context, report *Report) error

	// ListNear returns reports within radiusMeters of the point, newest
	// first, subject to the filter.
	ListNear(ctx context.Context, lat, lon, radiusMeters float64, filter ListFilter) ([]*Report, error)
}

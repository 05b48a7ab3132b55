package darkspot

import (
	"context"

	"github.com/saferoute/saferoute/internal/report"
)

// ReportStore adapts a report repository into a dark spot store. Used when
// running without PostgreSQL, where the in-memory report repository holds
// the data.
type ReportStore struct {
	reports report.Repository
}

// NewReportStore creates a dark spot store over a report repository.
func NewReportStore(reports report.Repository) *ReportStore {
	return &ReportStore{reports: reports}
}

// CountWithin returns the number of dark spots within radiusMeters.
func (s *ReportStore) CountWithin(ctx context.Context, lat, lon, radiusMeters float64) (int, error) {
	matches, err := s.reports.ListNear(ctx, lat, lon, radiusMeters, report.ListFilter{
		Status:     report.StatusVerified,
		HazardType: report.HazardPoorLighting,
		Limit:      500,
	})
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// Ensure ReportStore implements Store interface.
var _ Store = (*ReportStore)(nil)

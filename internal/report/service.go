package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/reputation"
)

// ServiceConfig holds configuration for the report service.
type ServiceConfig struct {
	Repository Repository
	Reputation *reputation.Service
	Logger     zerolog.Logger
}

// Service manages the hazard report lifecycle. Verifying or rejecting a
// report records a reputation event for the original reporter.
type Service struct {
	repo       Repository
	reputation *reputation.Service
	logger     zerolog.Logger
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:       cfg.Repository,
		reputation: cfg.Reputation,
		logger:     cfg.Logger.With().Str("component", "report_service").Logger(),
	}
}

// Create files a new pending hazard report.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Report, error) {
	if !req.Location.Valid() {
		return nil, ErrInvalidCoordinates
	}
	if !req.HazardType.Valid() {
		return nil, ErrInvalidHazardType
	}

	report := &Report{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Location:    req.Location,
		HazardType:  req.HazardType,
		Description: req.Description,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("hazard_type", string(report.HazardType)).
		Float64("lat", report.Location.Lat).
		Float64("lon", report.Location.Lon).
		Msg("hazard report created")

	return report, nil
}

// Get retrieves a report by ID.
func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// ListNear returns reports around a point, newest first.
func (s *Service) ListNear(ctx context.Context, lat, lon, radiusMeters float64, filter ListFilter) ([]*Report, error) {
	return s.repo.ListNear(ctx, lat, lon, radiusMeters, filter)
}

// Resolve verifies or rejects a pending report and applies the outcome to
// the reporter's reputation. Reporters cannot resolve their own reports, and
// a report is resolved at most once.
func (s *Service) Resolve(ctx context.Context, reportID, resolverID string, verified bool) (*Report, error) {
	report, err := s.repo.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if report.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}
	if report.UserID == resolverID {
		return nil, ErrSelfVerification
	}

	now := time.Now().UTC()
	if verified {
		report.Status = StatusVerified
	} else {
		report.Status = StatusRejected
	}
	report.ResolvedBy = resolverID
	report.ResolvedAt = &now

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	// The reputation event is best-effort: the resolution itself stands even
	// if the reputation store is briefly unavailable.
	if _, err := s.reputation.ApplyEvent(ctx, report.UserID, verified); err != nil {
		s.logger.Error().
			Err(err).
			Str("report_id", report.ID).
			Str("user_id", report.UserID).
			Msg("failed to apply reputation event")
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("status", string(report.Status)).
		Str("resolved_by", resolverID).
		Msg("hazard report resolved")

	return report, nil
}

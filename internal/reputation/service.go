package reputation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the reputation service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Z is the z-score used for the Wilson interval. Default: DefaultZ.
	Z float64
}

// Service applies verification outcomes to user reputations and answers
// standing queries. Reputation records are created lazily on first event.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	z      float64
}

// NewService creates a new reputation service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Z == 0 {
		cfg.Z = DefaultZ
	}
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger.With().Str("component", "reputation_service").Logger(),
		z:      cfg.Z,
	}
}

// Get returns a user's reputation. Users with no history get a zero-valued
// "new" reputation rather than an error, so callers need no special case.
func (s *Service) Get(ctx context.Context, userID string) (*Reputation, error) {
	rep, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrReputationNotFound) {
			return newReputation(userID), nil
		}
		return nil, err
	}
	return rep, nil
}

// ApplyEvent records one resolved report outcome for a user and returns the
// updated reputation. positive is true when the report was verified.
func (s *Service) ApplyEvent(ctx context.Context, userID string, positive bool) (*Reputation, error) {
	rep, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrReputationNotFound) {
			return nil, err
		}
		rep = newReputation(userID)
	}

	rep.TotalEvents++
	if positive {
		rep.PositiveEvents++
	}
	rep.recompute(s.z)
	rep.UpdatedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, rep); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Bool("positive", positive).
		Int("total_events", rep.TotalEvents).
		Float64("score", rep.Score).
		Str("standing", string(rep.Standing)).
		Msg("reputation updated")

	return rep, nil
}

// Compute returns the Wilson score lower bound for arbitrary counts without
// touching stored state. Counts must be non-negative with positive <= total.
func (s *Service) Compute(positive, total int) (float64, error) {
	if positive < 0 || total < 0 || positive > total {
		return 0, ErrInvalidEventCounts
	}
	return WilsonLowerBound(positive, total, s.z), nil
}

func newReputation(userID string) *Reputation {
	return &Reputation{
		UserID:   userID,
		Score:    0,
		Standing: StandingNew,
	}
}

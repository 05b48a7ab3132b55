// Package reputation tracks per-user trust based on how their hazard reports
// hold up under community verification.
package reputation

import (
	"errors"
	"time"
)

// Sentinel errors for reputation operations.
var (
	// ErrReputationNotFound indicates no reputation record exists for the user.
	ErrReputationNotFound = errors.New("reputation not found")
	// ErrInvalidEventCounts indicates negative or inconsistent event counts.
	ErrInvalidEventCounts = errors.New("invalid event counts")
)

// Standing is the coarse trust tier derived from a user's score and history.
type Standing string

const (
	StandingNew      Standing = "new"
	StandingTrusted  Standing = "trusted"
	StandingVerified Standing = "verified"
	StandingExpert   Standing = "expert"
)

// StandingFor maps a Wilson score and event history onto a standing tier.
// A short history pins a user to "new" regardless of score, so a couple of
// lucky reports cannot buy trust.
func StandingFor(score float64, totalEvents int) Standing {
	switch {
	case totalEvents < 10:
		return StandingNew
	case score > 0.8 && totalEvents > 50:
		return StandingExpert
	case score > 0.6 && totalEvents > 20:
		return StandingVerified
	case score > 0.4:
		return StandingTrusted
	default:
		return StandingNew
	}
}

// Reputation is a user's accumulated trust state.
type Reputation struct {
	UserID string `json:"user_id"`

	// PositiveEvents counts reports that were verified by the community.
	PositiveEvents int `json:"positive_events"`

	// TotalEvents counts all resolved reports, verified or rejected.
	TotalEvents int `json:"total_events"`

	// Score is the Wilson score lower bound over the event history, in [0,1].
	Score float64 `json:"score"`

	// Standing is the trust tier derived from Score and TotalEvents.
	Standing Standing `json:"standing"`

	UpdatedAt time.Time `json:"updated_at"`
}

// recompute refreshes the derived fields after the counters change.
func (r *Reputation) recompute(z float64) {
	r.Score = WilsonLowerBound(r.PositiveEvents, r.TotalEvents, z)
	r.Standing = StandingFor(r.Score, r.TotalEvents)
}

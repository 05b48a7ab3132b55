package reputation

import "context"

// Repository stores user reputation state.
type Repository interface {
	// Get retrieves a user's reputation, or ErrReputationNotFound.
	Get(ctx context.Context, userID string) (*Reputation, error)

	// Upsert creates or replaces a user's reputation.
	Upsert(ctx context.Context, rep *Reputation) error
}

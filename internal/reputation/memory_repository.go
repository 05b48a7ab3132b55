package reputation

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu          sync.RWMutex
	reputations map[string]*Reputation
}

// NewInMemoryRepository creates a new in-memory reputation repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reputations: make(map[string]*Reputation),
	}
}

// Get retrieves a user's reputation.
func (r *InMemoryRepository) Get(_ context.Context, userID string) (*Reputation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.reputations[userID]
	if !ok {
		return nil, ErrReputationNotFound
	}

	// Return a copy
	cpy := *rep
	return &cpy, nil
}

// Upsert creates or replaces a user's reputation.
func (r *InMemoryRepository) Upsert(_ context.Context, rep *Reputation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *rep
	r.reputations[rep.UserID] = &cpy
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

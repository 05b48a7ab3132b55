package routeplan

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	plans map[string]*Plan
}

// NewInMemoryRepository creates a new in-memory route plan repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		plans: make(map[string]*Plan),
	}
}

// Save persists a plan.
func (r *InMemoryRepository) Save(_ context.Context, plan *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *plan
	r.plans[plan.ID] = &cpy
	return nil
}

// Get retrieves a plan by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, ok := r.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}

	cpy := *plan
	return &cpy, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

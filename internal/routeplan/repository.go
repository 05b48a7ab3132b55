package routeplan

import "context"

// Repository stores computed route plans for later retrieval.
type Repository interface {
	// Save persists a plan.
	Save(ctx context.Context, plan *Plan) error

	// Get retrieves a plan by ID, or ErrPlanNotFound.
	Get(ctx context.Context, id string) (*Plan, error)
}

package reputation

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(ServiceConfig{
		Repository: NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
}

func TestService_Get_UnknownUserIsNew(t *testing.T) {
	svc := newTestService()

	rep, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", rep.UserID)
	assert.Equal(t, 0, rep.TotalEvents)
	assert.Equal(t, 0.0, rep.Score)
	assert.Equal(t, StandingNew, rep.Standing)
}

func TestService_ApplyEvent_CreatesLazily(t *testing.T) {
	svc := newTestService()

	rep, err := svc.ApplyEvent(context.Background(), "user-1", true)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.TotalEvents)
	assert.Equal(t, 1, rep.PositiveEvents)
	assert.Greater(t, rep.Score, 0.0)
	assert.Equal(t, StandingNew, rep.Standing)
	assert.False(t, rep.UpdatedAt.IsZero())
}

func TestService_ApplyEvent_AccumulatesHistory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := svc.ApplyEvent(ctx, "user-1", true)
		require.NoError(t, err)
	}
	rep, err := svc.ApplyEvent(ctx, "user-1", false)
	require.NoError(t, err)

	assert.Equal(t, 21, rep.TotalEvents)
	assert.Equal(t, 20, rep.PositiveEvents)
	assert.Equal(t, WilsonLowerBound(20, 21, DefaultZ), rep.Score)
	// ~0.95 rate over 21 events: wilson ~0.77, verified tier.
	assert.Equal(t, StandingVerified, rep.Standing)
}

func TestService_ApplyEvent_NegativeOnlyStaysNew(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var rep *Reputation
	var err error
	for i := 0; i < 15; i++ {
		rep, err = svc.ApplyEvent(ctx, "user-1", false)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, rep.PositiveEvents)
	assert.Equal(t, 0.0, rep.Score)
	assert.Equal(t, StandingNew, rep.Standing)
}

func TestService_ApplyEvent_Persists(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(ServiceConfig{Repository: repo, Logger: zerolog.Nop()})
	ctx := context.Background()

	_, err := svc.ApplyEvent(ctx, "user-1", true)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalEvents)
}

func TestService_Compute(t *testing.T) {
	svc := newTestService()

	score, err := svc.Compute(45, 90)
	require.NoError(t, err)
	assert.InDelta(t, 0.399, score, 0.005)

	score, err = svc.Compute(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestService_Compute_InvalidCounts(t *testing.T) {
	svc := newTestService()

	for _, tc := range []struct{ positive, total int }{
		{-1, 5}, {5, -1}, {6, 5},
	} {
		_, err := svc.Compute(tc.positive, tc.total)
		assert.ErrorIs(t, err, ErrInvalidEventCounts, "positive=%d total=%d", tc.positive, tc.total)
	}
}

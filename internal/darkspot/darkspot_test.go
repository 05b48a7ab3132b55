package darkspot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/report"
	"github.com/saferoute/saferoute/pkg/geo"
)

type stubStore struct {
	count int
	err   error
	calls int
}

func (s *stubStore) CountWithin(_ context.Context, _, _, _ float64) (int, error) {
	s.calls++
	return s.count, s.err
}

func TestService_CountWithin_Caches(t *testing.T) {
	store := &stubStore{count: 3}
	svc := NewService(ServiceConfig{Store: store, Logger: zerolog.Nop()})
	ctx := context.Background()

	count, err := svc.CountWithin(ctx, 13.0827, 80.2707, 300)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = svc.CountWithin(ctx, 13.0828, 80.2708, 300)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)

	// Different radius misses the cache.
	_, err = svc.CountWithin(ctx, 13.0827, 80.2707, 500)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestService_CountWithin_CacheExpires(t *testing.T) {
	store := &stubStore{count: 1}
	svc := NewService(ServiceConfig{
		Store:    store,
		Logger:   zerolog.Nop(),
		CacheTTL: 1 * time.Millisecond,
	})
	ctx := context.Background()

	_, err := svc.CountWithin(ctx, 13.0827, 80.2707, 300)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = svc.CountWithin(ctx, 13.0827, 80.2707, 300)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestService_CountWithin_Validation(t *testing.T) {
	svc := NewService(ServiceConfig{Store: &stubStore{}, Logger: zerolog.Nop()})

	_, err := svc.CountWithin(context.Background(), -91, 0, 300)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestService_CountWithin_StoreError(t *testing.T) {
	svc := NewService(ServiceConfig{
		Store:  &stubStore{err: errors.New("db down")},
		Logger: zerolog.Nop(),
	})

	_, err := svc.CountWithin(context.Background(), 13.0827, 80.2707, 300)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestReportStore_CountsVerifiedPoorLightingOnly(t *testing.T) {
	repo := report.NewInMemoryRepository()
	ctx := context.Background()
	loc := geo.Point{Lat: 13.0827, Lon: 80.2707}

	seed := func(hazard report.HazardType, status report.Status) {
		now := time.Now().UTC()
		rec := &report.Report{
			ID:         string(hazard) + "-" + string(status),
			UserID:     "reporter-1",
			Location:   loc,
			HazardType: hazard,
			Status:     status,
			CreatedAt:  now,
		}
		require.NoError(t, repo.Create(ctx, rec))
	}

	seed(report.HazardPoorLighting, report.StatusVerified)
	seed(report.HazardPoorLighting, report.StatusPending)
	seed(report.HazardOpenDrain, report.StatusVerified)

	store := NewReportStore(repo)
	count, err := store.CountWithin(ctx, loc.Lat, loc.Lon, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

package poi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	count int
	err   error
	calls int
}

func (p *stubProvider) CountPOIs(_ context.Context, _, _, _ float64, _ Category) (int, error) {
	p.calls++
	return p.count, p.err
}

func (p *stubProvider) Name() string { return "stub" }

func TestService_Count_Caches(t *testing.T) {
	provider := &stubProvider{count: 12}
	svc := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})
	ctx := context.Background()

	count, err := svc.Count(ctx, 13.0827, 80.2707, 200, CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	// Same grid cell and query shape, served from cache.
	_, err = svc.Count(ctx, 13.0828, 80.2708, 200, CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	// Different radius misses the cache.
	_, err = svc.Count(ctx, 13.0827, 80.2707, 300, CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)

	// Different category misses the cache.
	_, err = svc.Count(ctx, 13.0827, 80.2707, 200, CategoryEmergency)
	require.NoError(t, err)
	assert.Equal(t, 3, provider.calls)
}

func TestService_Count_Validation(t *testing.T) {
	svc := NewService(ServiceConfig{Provider: &stubProvider{}, Logger: zerolog.Nop()})
	ctx := context.Background()

	_, err := svc.Count(ctx, 91, 0, 200, CategoryAll)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = svc.Count(ctx, 13.0827, 80.2707, 0, CategoryAll)
	assert.ErrorIs(t, err, ErrInvalidRadius)
}

func TestService_Count_StaleIfError(t *testing.T) {
	provider := &stubProvider{count: 7}
	svc := NewService(ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: 1 * time.Millisecond,
	})
	ctx := context.Background()

	_, err := svc.Count(ctx, 13.0827, 80.2707, 200, CategoryAll)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	provider.err = errors.New("overpass timeout")

	count, err := svc.Count(ctx, 13.0827, 80.2707, 200, CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestService_Count_ErrorWithoutCache(t *testing.T) {
	provider := &stubProvider{err: errors.New("overpass timeout")}
	svc := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.Count(context.Background(), 13.0827, 80.2707, 200, CategoryAll)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

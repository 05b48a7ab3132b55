package lighting

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
	brightness float64
	err        error
	calls      int
}

func (p *stubProvider) Brightness(_ context.Context, _, _ float64) (float64, error) {
	p.calls++
	return p.brightness, p.err
}

func (p *stubProvider) Name() string { return "stub" }

func TestService_Brightness_Caches(t *testing.T) {
	provider := &stubProvider{brightness: 0.6}
	svc := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})
	ctx := context.Background()

	brightness, err := svc.Brightness(ctx, 13.0827, 80.2707)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, brightness, 1e-9)

	_, err = svc.Brightness(ctx, 13.0828, 80.2708)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	_, err = svc.Brightness(ctx, 13.2, 80.2707)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestService_Brightness_InvalidCoordinates(t *testing.T) {
	svc := NewService(ServiceConfig{Provider: &stubProvider{}, Logger: zerolog.Nop()})

	_, err := svc.Brightness(context.Background(), 13.0827, 181)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestService_Brightness_StaleIfError(t *testing.T) {
	provider := &stubProvider{brightness: 0.4}
	svc := NewService(ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: 1 * time.Millisecond,
	})
	ctx := context.Background()

	_, err := svc.Brightness(ctx, 13.0827, 80.2707)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	provider.err = errors.New("wms down")

	brightness, err := svc.Brightness(ctx, 13.0827, 80.2707)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, brightness, 1e-9)
}

func TestService_Brightness_ErrorWithoutCache(t *testing.T) {
	provider := &stubProvider{err: errors.New("wms down")}
	svc := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.Brightness(context.Background(), 13.0827, 80.2707)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

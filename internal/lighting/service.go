package lighting

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for night-light data providers.
type Provider interface {
	// Brightness returns the normalized brightness in [0,1] at a point.
	Brightness(ctx context.Context, lat, lon float64) (float64, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the lighting service.
type ServiceConfig struct {
	// Provider is the night-light data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache brightness (default: 24 hours). The
	// composite imagery updates daily at most.
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.005,
	// roughly 500m, matching the imagery resolution).
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 7 days).
	StaleIfErrorTTL time.Duration
}

// Service provides night-light brightness with caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedBrightness
	lastCleanup time.Time
}

type cachedBrightness struct {
	brightness float64
	fetchedAt  time.Time
	expiresAt  time.Time
}

const cleanupInterval = 30 * time.Minute

// NewService creates a new lighting service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.005
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 7 * 24 * time.Hour
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cache:           make(map[string]*cachedBrightness),
	}
}

// Brightness returns the normalized brightness in [0,1] at a point.
// Uses cached data if available and not expired.
func (s *Service) Brightness(ctx context.Context, lat, lon float64) (float64, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, ErrInvalidCoordinates
	}

	cacheKey := s.cacheKey(lat, lon)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.brightness, nil
	}
	s.mu.RUnlock()

	return s.fetchBrightness(ctx, lat, lon, cacheKey)
}

func (s *Service) fetchBrightness(ctx context.Context, lat, lon float64, cacheKey string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.brightness, nil
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("provider", s.provider.Name()).
		Msg("fetching brightness from provider")

	brightness, err := s.provider.Brightness(ctx, lat, lon)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch brightness")

		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale brightness due to provider error")
				return cached.brightness, nil
			}
		}

		return 0, ErrProviderUnavailable
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedBrightness{
		brightness: brightness,
		fetchedAt:  now,
		expiresAt:  now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded(now)

	return brightness, nil
}

// cacheKey groups nearby points into grid cells matching imagery resolution.
func (s *Service) cacheKey(lat, lon float64) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.4f:%.4f", gridLat, gridLon)
}

func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < cleanupInterval {
		return
	}
	s.lastCleanup = now

	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
		}
	}
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedBrightness)
}

package weather

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCurrentWeather fetches current weather for a location.
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long observations stay fresh (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the cache grid cell size in degrees (default: 0.1,
	// about 11 km). Weather barely varies at that scale, so nearby points
	// share an observation.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale observations when the provider
	// is down (default: 1 hour).
	StaleIfErrorTTL time.Duration
}

// Service fronts a weather provider with a grid-quantized cache. The safety
// engine consumes it through the Severity method.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration

	mu              sync.RWMutex
	cache           map[string]*cacheEntry
	lastCleanup     time.Time
	cleanupInterval time.Duration
}

type cacheEntry struct {
	observation *Observation
	fetchedAt   time.Time
	expiresAt   time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cfg.CacheTTL,
		cacheGridSize:   cfg.CacheGridSize,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
		cache:           make(map[string]*cacheEntry),
		cleanupInterval: 5 * time.Minute,
	}
	if s.cacheTTL == 0 {
		s.cacheTTL = 10 * time.Minute
	}
	if s.cacheGridSize == 0 {
		s.cacheGridSize = 0.1
	}
	if s.staleIfErrorTTL == 0 {
		s.staleIfErrorTTL = 1 * time.Hour
	}
	return s
}

// GetCurrentWeather returns the current weather at a location, served from
// cache when a fresh observation exists.
func (s *Service) GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}

	key := s.cacheKey(lat, lon)

	s.mu.RLock()
	if entry, ok := s.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		s.mu.RUnlock()
		return entry.observation, nil
	}
	s.mu.RUnlock()

	return s.fetchWeather(ctx, lat, lon, key)
}

// Severity returns the current weather hazard severity in [0,1] at a point.
func (s *Service) Severity(ctx context.Context, lat, lon float64) (float64, error) {
	obs, err := s.GetCurrentWeather(ctx, lat, lon)
	if err != nil {
		return 0, err
	}
	return obs.Severity(), nil
}

// fetchWeather asks the provider and updates the cache. Concurrent misses
// for the same cell collapse into one provider call.
func (s *Service) fetchWeather(ctx context.Context, lat, lon float64, key string) (*Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		return entry.observation, nil
	}

	s.logger.Debug().
		Str("provider", s.provider.Name()).
		Str("cache_key", key).
		Msg("fetching weather")

	obs, err := s.provider.GetCurrentWeather(ctx, lat, lon)
	if err != nil {
		s.logger.Error().Err(err).
			Str("cache_key", key).
			Msg("weather fetch failed")

		if entry, ok := s.cache[key]; ok && time.Now().Before(entry.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", entry.fetchedAt).
				Msg("serving stale weather observation")
			return entry.observation, nil
		}

		return nil, ErrProviderUnavailable
	}

	now := time.Now()
	s.cache[key] = &cacheEntry{
		observation: obs,
		fetchedAt:   now,
		expiresAt:   now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded(now)

	return obs, nil
}

// cacheKey snaps a location onto the cache grid.
func (s *Service) cacheKey(lat, lon float64) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.2f:%.2f", gridLat, gridLon)
}

// cleanupIfNeeded drops entries past the stale window. Caller holds the
// write lock.
func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	removed := 0
	for key, entry := range s.cache {
		if now.After(entry.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("swept weather cache")
	}
}

// InvalidateCache clears all cached observations.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cacheEntry)
}

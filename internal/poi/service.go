package poi

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for POI data providers.
type Provider interface {
	// CountPOIs returns the number of POIs of the category within
	// radiusMeters of the point.
	CountPOIs(ctx context.Context, lat, lon, radiusMeters float64, category Category) (int, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the POI service.
type ServiceConfig struct {
	// Provider is the POI data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache counts (default: 1 hour). POIs churn
	// slowly, so a long cache keeps Overpass load down.
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.005,
	// roughly 500m). Points within the same cell share cached counts.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 24 hours).
	StaleIfErrorTTL time.Duration
}

// Service provides POI counts with caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedCount
	lastCleanup time.Time
}

type cachedCount struct {
	count     int
	fetchedAt time.Time
	expiresAt time.Time
}

const cleanupInterval = 10 * time.Minute

// NewService creates a new POI service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 1 * time.Hour
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.005
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 24 * time.Hour
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cache:           make(map[string]*cachedCount),
	}
}

// Count returns the number of POIs of the category within radiusMeters.
// Uses cached data if available and not expired.
func (s *Service) Count(ctx context.Context, lat, lon, radiusMeters float64, category Category) (int, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, ErrInvalidCoordinates
	}
	if radiusMeters <= 0 {
		return 0, ErrInvalidRadius
	}

	cacheKey := s.cacheKey(lat, lon, radiusMeters, category)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.count, nil
	}
	s.mu.RUnlock()

	return s.fetchCount(ctx, lat, lon, radiusMeters, category, cacheKey)
}

func (s *Service) fetchCount(ctx context.Context, lat, lon, radiusMeters float64, category Category, cacheKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.count, nil
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Float64("radius_m", radiusMeters).
		Str("category", string(category)).
		Str("provider", s.provider.Name()).
		Msg("fetching poi count from provider")

	count, err := s.provider.CountPOIs(ctx, lat, lon, radiusMeters, category)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch poi count")

		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale poi count due to provider error")
				return cached.count, nil
			}
		}

		return 0, ErrProviderUnavailable
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedCount{
		count:     count,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded(now)

	return count, nil
}

// cacheKey groups nearby queries of the same shape into grid cells.
func (s *Service) cacheKey(lat, lon, radiusMeters float64, category Category) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.4f:%.4f:%.0f:%s", gridLat, gridLon, radiusMeters, category)
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
	s.cache = make(map[string]*cachedCount)
}

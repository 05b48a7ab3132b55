package routing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the routing data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long directions stay fresh (default: 5 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the cache grid cell size in degrees (default: 0.01,
	// about 1.1 km). Requests whose endpoints land in the same cells share
	// a cached response.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale directions when the provider is
	// down (default: 15 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often expired entries are swept (default: 5 minutes).
	CleanupInterval time.Duration
}

// Service fronts a directions provider with a grid-quantized cache.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cacheEntry
	lastCleanup time.Time
}

type cacheEntry struct {
	response  *DirectionsResponse
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cfg.CacheTTL,
		cacheGridSize:   cfg.CacheGridSize,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
		cleanupInterval: cfg.CleanupInterval,
		cache:           make(map[string]*cacheEntry),
	}
	if s.cacheTTL == 0 {
		s.cacheTTL = 5 * time.Minute
	}
	if s.cacheGridSize == 0 {
		s.cacheGridSize = 0.01
	}
	if s.staleIfErrorTTL == 0 {
		s.staleIfErrorTTL = 15 * time.Minute
	}
	if s.cleanupInterval == 0 {
		s.cleanupInterval = 5 * time.Minute
	}
	return s
}

// GetDirections returns route directions between two points, served from
// cache when a fresh entry exists.
func (s *Service) GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	if !req.Origin.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if !req.Destination.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}

	key := s.cacheKey(req)

	s.mu.RLock()
	if entry, ok := s.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().Str("cache_key", key).Msg("directions cache hit")
		return entry.response, nil
	}
	s.mu.RUnlock()

	return s.fetchDirections(ctx, req, key)
}

// fetchDirections asks the provider and updates the cache. The write lock is
// held across the fetch so concurrent misses for the same key collapse into
// one provider call.
func (s *Service) fetchDirections(ctx context.Context, req DirectionsRequest, key string) (*DirectionsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		return entry.response, nil
	}

	s.logger.Debug().
		Str("provider", s.provider.Name()).
		Str("profile", string(req.Profile)).
		Str("cache_key", key).
		Msg("fetching directions")

	resp, err := s.provider.GetDirections(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Str("profile", string(req.Profile)).
			Str("cache_key", key).
			Msg("directions fetch failed")

		// Stale-if-error: an expired entry still within the stale window
		// beats no route at all.
		if entry, ok := s.cache[key]; ok && time.Now().Before(entry.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", entry.fetchedAt).
				Str("cache_key", key).
				Msg("serving stale directions")
			return entry.response, nil
		}

		return nil, err
	}

	now := time.Now()
	s.cache[key] = &cacheEntry{
		response:  resp,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded(now)

	return resp, nil
}

// cacheKey quantizes both endpoints onto the cache grid.
func (s *Service) cacheKey(req DirectionsRequest) string {
	snap := func(v float64) float64 {
		return math.Floor(v/s.cacheGridSize) * s.cacheGridSize
	}
	return fmt.Sprintf("%s:%t:%.4f,%.4f:%.4f,%.4f",
		req.Profile,
		req.Alternatives,
		snap(req.Origin.Lat), snap(req.Origin.Lon),
		snap(req.Destination.Lat), snap(req.Destination.Lon),
	)
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
		s.logger.Debug().Int("removed", removed).Msg("swept routing cache")
	}
}

// InvalidateCache clears all cached directions.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cacheEntry)
}

// CacheStats contains cache statistics.
type CacheStats struct {
	TotalEntries int
	FreshEntries int
	StaleEntries int
	Provider     string
}

// CacheStats returns a snapshot of the cache state.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := CacheStats{
		TotalEntries: len(s.cache),
		Provider:     s.provider.Name(),
	}

	for _, entry := range s.cache {
		switch {
		case now.Before(entry.expiresAt):
			stats.FreshEntries++
		case now.Before(entry.fetchedAt.Add(s.staleIfErrorTTL)):
			stats.StaleEntries++
		}
	}

	return stats
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

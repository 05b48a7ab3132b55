// Package darkspot answers "how many known poorly lit locations are near
// this point". Dark spots are community hazard reports of type poor_lighting
// that survived verification.
package darkspot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dark spot errors.
var (
	ErrStoreUnavailable   = errors.New("dark spot store unavailable")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Store supplies raw dark spot counts.
type Store interface {
	// CountWithin returns the number of dark spots within radiusMeters.
	CountWithin(ctx context.Context, lat, lon, radiusMeters float64) (int, error)
}

// ServiceConfig holds configuration for the dark spot service.
type ServiceConfig struct {
	Store  Store
	Logger zerolog.Logger

	// CacheTTL is how long to cache counts (default: 5 minutes). Fresh
	// verifications should show up in scores quickly.
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.005).
	CacheGridSize float64
}

// Service provides dark spot counts with a short-lived cache in front of the
// store.
type Service struct {
	store         Store
	logger        zerolog.Logger
	cacheTTL      time.Duration
	cacheGridSize float64

	mu    sync.RWMutex
	cache map[string]*cachedCount
}

type cachedCount struct {
	count     int
	expiresAt time.Time
}

// NewService creates a new dark spot service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.005
	}

	return &Service{
		store:         cfg.Store,
		logger:        cfg.Logger,
		cacheTTL:      cacheTTL,
		cacheGridSize: cacheGridSize,
		cache:         make(map[string]*cachedCount),
	}
}

// CountWithin returns the number of dark spots within radiusMeters.
func (s *Service) CountWithin(ctx context.Context, lat, lon, radiusMeters float64) (int, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, ErrInvalidCoordinates
	}

	cacheKey := s.cacheKey(lat, lon, radiusMeters)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.count, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.count, nil
	}

	count, err := s.store.CountWithin(ctx, lat, lon, radiusMeters)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to count dark spots")
		return 0, ErrStoreUnavailable
	}

	s.cache[cacheKey] = &cachedCount{
		count:     count,
		expiresAt: time.Now().Add(s.cacheTTL),
	}

	return count, nil
}

// InvalidateCache clears all cached counts.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedCount)
}

func (s *Service) cacheKey(lat, lon, radiusMeters float64) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.4f:%.4f:%.0f", gridLat, gridLon, radiusMeters)
}

package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/darkspot"
	"github.com/saferoute/saferoute/internal/lighting"
	"github.com/saferoute/saferoute/internal/poi"
	"github.com/saferoute/saferoute/internal/weather"
)

// Radii the safety scorer queries with. Warming the same keys means the
// next score request hits the cache instead of the upstream provider.
const (
	footfallRadius  = 200.0
	lightingRadius  = 300.0
	emergencyRadius = 1000.0
)

// RefreshJob warms the factor source caches for the configured targets.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	// nil services are skipped
	lightingService *lighting.Service
	poiService      *poi.Service
	weatherService  *weather.Service
	darkSpotService *darkspot.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	LightingRefresh   int64
	POIRefresh        int64
	WeatherRefresh    int64
	DarkSpotFlushes   int64

	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config          RefreshConfig
	Logger          zerolog.Logger
	LightingService *lighting.Service
	POIService      *poi.Service
	WeatherService  *weather.Service
	DarkSpotService *darkspot.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultRefreshConfig()
	}

	return &RefreshJob{
		config:          config,
		logger:          cfg.Logger,
		lightingService: cfg.LightingService,
		poiService:      cfg.POIService,
		weatherService:  cfg.WeatherService,
		darkSpotService: cfg.DarkSpotService,
		metrics:         &RefreshMetrics{},
	}
}

// RefreshResult contains the outcome of one refresh pass.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	Successful  int
	Failed      int
	Errors      []RefreshError
}

// RefreshError records one failed source refresh at a point.
type RefreshError struct {
	Source string
	Point  Point
	Error  string
}

type pointResult struct {
	point   Point
	success bool
	errors  []RefreshError
}

// Run refreshes every configured point, fanning the work out over
// config.Concurrency workers.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	result := &RefreshResult{
		StartTime:   time.Now(),
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting factor source refresh job")

	points := j.config.AllPoints()
	pointsChan := make(chan Point, len(points))
	resultsChan := make(chan pointResult, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for point := range pointsChan {
				select {
				case <-ctx.Done():
					return
				default:
					resultsChan <- j.refreshPoint(ctx, point)
				}
			}
		}()
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		if pr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, pr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("factor source refresh job completed")

	return result
}

// refreshPoint warms every enabled source at one point. Weather failures do
// not fail the point; the scorer treats a missing observation as zero
// severity penalty anyway.
func (j *RefreshJob) refreshPoint(ctx context.Context, point Point) pointResult {
	pr := pointResult{point: point, success: true}

	pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	sources := []struct {
		name    string
		enabled bool
		fatal   bool
		counter *int64
		refresh func(context.Context, Point) error
	}{
		{"lighting", j.config.RefreshLighting && j.lightingService != nil, true, &j.metrics.LightingRefresh, j.refreshLighting},
		{"poi", j.config.RefreshPOI && j.poiService != nil, true, &j.metrics.POIRefresh, j.refreshPOI},
		{"weather", j.config.RefreshWeather && j.weatherService != nil, false, &j.metrics.WeatherRefresh, j.refreshWeather},
	}

	for _, src := range sources {
		if !src.enabled {
			continue
		}
		if err := src.refresh(pointCtx, point); err != nil {
			pr.errors = append(pr.errors, RefreshError{
				Source: src.name,
				Point:  point,
				Error:  err.Error(),
			})
			if src.fatal {
				pr.success = false
			}
			continue
		}
		atomic.AddInt64(src.counter, 1)
	}

	return pr
}

func (j *RefreshJob) refreshLighting(ctx context.Context, point Point) error {
	_, err := j.lightingService.Brightness(ctx, point.Lat, point.Lon)
	return err
}

// refreshPOI warms the three POI queries the scorer makes per point:
// street activity at footfall and lighting radii, and emergency services
// within walking distance.
func (j *RefreshJob) refreshPOI(ctx context.Context, point Point) error {
	for _, radius := range []float64{footfallRadius, lightingRadius} {
		if _, err := j.poiService.Count(ctx, point.Lat, point.Lon, radius, poi.CategoryAll); err != nil {
			return err
		}
	}
	_, err := j.poiService.Count(ctx, point.Lat, point.Lon, emergencyRadius, poi.CategoryEmergency)
	return err
}

func (j *RefreshJob) refreshWeather(ctx context.Context, point Point) error {
	_, err := j.weatherService.GetCurrentWeather(ctx, point.Lat, point.Lon)
	return err
}

// FlushDarkSpots invalidates the dark spot cache so recently verified
// hazard reports start counting against scores.
func (j *RefreshJob) FlushDarkSpots(_ context.Context) error {
	if !j.config.InvalidateDarkSpots || j.darkSpotService == nil {
		return nil
	}

	j.logger.Debug().Msg("invalidating dark spot cache")

	j.darkSpotService.InvalidateCache()
	atomic.AddInt64(&j.metrics.DarkSpotFlushes, 1)
	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		LightingRefresh:     atomic.LoadInt64(&j.metrics.LightingRefresh),
		POIRefresh:          atomic.LoadInt64(&j.metrics.POIRefresh),
		WeatherRefresh:      atomic.LoadInt64(&j.metrics.WeatherRefresh),
		DarkSpotFlushes:     atomic.LoadInt64(&j.metrics.DarkSpotFlushes),
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns the current metrics as a loggable map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":       m.TotalRefreshes,
		"successful_refreshes":  m.SuccessfulRefresh,
		"failed_refreshes":      m.FailedRefreshes,
		"lighting_refreshes":    m.LightingRefresh,
		"poi_refreshes":         m.POIRefresh,
		"weather_refreshes":     m.WeatherRefresh,
		"darkspot_flushes":      m.DarkSpotFlushes,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}

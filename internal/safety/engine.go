package safety

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Query radii in meters for the individual factor signals.
const (
	lightingPOIRadius    = 300.0
	lightingDarkRadius   = 500.0
	footfallPOIRadius    = 200.0
	hazardDarkRadius     = 300.0
	roadQualityPOIRadius = 100.0
	emergencyPOIRadius   = 1000.0
)

const (
	// neutralFactorScore is substituted when a factor source fails or times
	// out, so a flaky upstream degrades a single factor instead of the score.
	neutralFactorScore = 50

	// reliableConfidence is the fraction of factor sources that must answer
	// before a score is considered fully reliable.
	reliableConfidence = 0.75

	factorCount = 4
)

// EngineConfig holds the factor sources and tuning for the scoring engine.
type EngineConfig struct {
	Lighting  LightingSource
	POI       POISource
	DarkSpots DarkSpotSource

	// Weather contributes a severity term to the hazards factor. Optional;
	// when nil or failing, the term is zero and confidence is unaffected.
	Weather WeatherSource

	// FactorTimeout bounds each factor computation. Default: 5 seconds.
	FactorTimeout time.Duration

	Logger zerolog.Logger
}

// Engine computes safety scores by fanning out to the factor sources
// concurrently and blending the results.
type Engine struct {
	lighting      LightingSource
	poi           POISource
	darkSpots     DarkSpotSource
	weather       WeatherSource
	factorTimeout time.Duration
	logger        zerolog.Logger
}

// NewEngine creates a scoring engine from the given sources.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.FactorTimeout == 0 {
		cfg.FactorTimeout = 5 * time.Second
	}
	return &Engine{
		lighting:      cfg.Lighting,
		poi:           cfg.POI,
		darkSpots:     cfg.DarkSpots,
		weather:       cfg.Weather,
		factorTimeout: cfg.FactorTimeout,
		logger:        cfg.Logger.With().Str("component", "safety_engine").Logger(),
	}
}

// factorResult carries a single factor computation back from its goroutine.
type factorResult struct {
	score       int
	description string
	failed      bool
}

// Score computes the safety score for a single location. The four factors are
// computed concurrently, each bounded by the factor timeout. A failed factor
// falls back to a neutral score and lowers the result confidence; Score only
// returns an error for invalid input.
func (e *Engine) Score(ctx context.Context, req Request) (*Result, error) {
	if !req.Location.Valid() {
		return nil, ErrInvalidCoordinates
	}
	if req.UserType == "" {
		req.UserType = UserTypePedestrian
	}
	if req.TimeOfDay == "" {
		req.TimeOfDay = TimeOfDayDay
	}

	weights := DefaultWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}

	lat, lon := req.Location.Lat, req.Location.Lon

	var (
		wg        sync.WaitGroup
		lighting  factorResult
		footfall  factorResult
		hazards   factorResult
		proximity factorResult
	)

	compute := func(out *factorResult, name string, fn func(ctx context.Context) (int, string, error)) {
		defer wg.Done()
		fctx, cancel := context.WithTimeout(ctx, e.factorTimeout)
		defer cancel()

		score, desc, err := fn(fctx)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("factor", name).
				Float64("lat", lat).
				Float64("lon", lon).
				Msg("factor source failed, using neutral score")
			*out = factorResult{score: neutralFactorScore, description: "unavailable", failed: true}
			return
		}
		*out = factorResult{score: score, description: desc}
	}

	wg.Add(factorCount)
	go compute(&lighting, "lighting", func(fctx context.Context) (int, string, error) {
		return e.lightingScore(fctx, lat, lon, req.TimeOfDay)
	})
	go compute(&footfall, "footfall", func(fctx context.Context) (int, string, error) {
		return e.footfallScore(fctx, lat, lon)
	})
	go compute(&hazards, "hazards", func(fctx context.Context) (int, string, error) {
		return e.hazardScore(fctx, lat, lon)
	})
	go compute(&proximity, "proximity", func(fctx context.Context) (int, string, error) {
		return e.proximityScore(fctx, lat, lon)
	})
	wg.Wait()

	answered := factorCount
	for _, r := range []factorResult{lighting, footfall, hazards, proximity} {
		if r.failed {
			answered--
		}
	}
	confidence := float64(answered) / factorCount

	// Hazards measures badness, so it enters the blend inverted.
	weighted := float64(lighting.score)*weights.Lighting +
		float64(footfall.score)*weights.Footfall +
		float64(100-hazards.score)*weights.Hazards +
		float64(proximity.score)*weights.Proximity

	overall := clampScore(int(math.Round(weighted * req.UserType.Multiplier())))

	return &Result{
		OverallScore: overall,
		Factors: FactorSet{
			Lighting:  Factor{Score: lighting.score, Weight: weights.Lighting, Description: lighting.description},
			Footfall:  Factor{Score: footfall.score, Weight: weights.Footfall, Description: footfall.description},
			Hazards:   Factor{Score: hazards.score, Weight: weights.Hazards, Description: hazards.description},
			Proximity: Factor{Score: proximity.score, Weight: weights.Proximity, Description: proximity.description},
		},
		Weights:    weights,
		Confidence: confidence,
		Degraded:   confidence < reliableConfidence,
		Location:   req.Location,
		UserType:   req.UserType,
		TimeOfDay:  req.TimeOfDay,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// lightingScore combines satellite brightness with street-level POI presence
// and known dark spots, then derates for the time of day.
func (e *Engine) lightingScore(ctx context.Context, lat, lon float64, timeOfDay TimeOfDay) (int, string, error) {
	brightness, err := e.lighting.Brightness(ctx, lat, lon)
	if err != nil {
		return 0, "", err
	}

	poiCount, err := e.poi.Count(ctx, lat, lon, lightingPOIRadius, POICategoryAll)
	if err != nil {
		return 0, "", err
	}

	darkSpots, err := e.darkSpots.CountWithin(ctx, lat, lon, lightingDarkRadius)
	if err != nil {
		return 0, "", err
	}

	score := brightness * 100

	// Dense commercial activity implies street lighting the satellite
	// composite underrepresents.
	switch {
	case poiCount > 50:
		score += 20
	case poiCount > 20:
		score += 10
	case poiCount > 5:
		score += 5
	}

	score -= float64(darkSpots) * 10
	score = math.Min(100, math.Max(0, score))
	score *= timeOfDay.lightingFactor()

	return clampScore(int(math.Round(score))), "satellite brightness with POI and dark spot adjustments", nil
}

// footfallScore estimates how busy an area is from POI density nearby.
func (e *Engine) footfallScore(ctx context.Context, lat, lon float64) (int, string, error) {
	count, err := e.poi.Count(ctx, lat, lon, footfallPOIRadius, POICategoryAll)
	if err != nil {
		return 0, "", err
	}

	var score int
	switch {
	case count > 100:
		score = 95
	case count > 50:
		score = 80
	case count > 20:
		score = 65
	case count > 5:
		score = 45
	default:
		score = 25
	}

	return score, "estimated activity from POI density", nil
}

// hazardScore measures reported hazards near the location; higher is worse.
// Weather severity is a supplemental term and never fails the factor.
func (e *Engine) hazardScore(ctx context.Context, lat, lon float64) (int, string, error) {
	darkSpots, err := e.darkSpots.CountWithin(ctx, lat, lon, hazardDarkRadius)
	if err != nil {
		return 0, "", err
	}

	roadPOIs, err := e.poi.Count(ctx, lat, lon, roadQualityPOIRadius, POICategoryAll)
	if err != nil {
		return 0, "", err
	}

	score := darkSpots * 15

	// Well-developed frontage correlates with maintained pavement.
	switch {
	case roadPOIs > 30:
		score -= 20
	case roadPOIs > 15:
		score -= 10
	case roadPOIs > 5:
		score -= 5
	}

	if e.weather != nil {
		severity, werr := e.weather.Severity(ctx, lat, lon)
		if werr != nil {
			e.logger.Debug().Err(werr).Msg("weather severity unavailable, skipping term")
		} else {
			score += int(math.Round(severity * 20))
		}
	}

	return clampScore(score), "reported hazards and current weather", nil
}

// proximityScore measures how close help is, from emergency-service POIs.
func (e *Engine) proximityScore(ctx context.Context, lat, lon float64) (int, string, error) {
	count, err := e.poi.Count(ctx, lat, lon, emergencyPOIRadius, POICategoryEmergency)
	if err != nil {
		return 0, "", err
	}

	var score int
	switch {
	case count > 10:
		score = 90
	case count > 5:
		score = 75
	case count > 2:
		score = 60
	case count > 0:
		score = 40
	default:
		score = 20
	}

	return score, "emergency services within walking distance", nil
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

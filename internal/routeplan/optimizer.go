package routeplan

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/routing"
	"github.com/saferoute/saferoute/internal/safety"
	"github.com/saferoute/saferoute/pkg/geo"
	"github.com/saferoute/saferoute/pkg/polyline"
)

const (
	// walkSpeedMetersPerSecond is the assumed pace for synthesized routes, 5 km/h.
	walkSpeedMetersPerSecond = 5000.0 / 3600.0

	// fallbackWaypoints is how many points a synthesized straight-line route
	// carries, endpoints included.
	fallbackWaypoints = 5

	// Safest option: detours around trouble cost time but buy safety.
	safestScoreFactor    = 1.2
	safestDurationFactor = 1.3

	// Fastest option: the direct line cuts corners through worse areas.
	fastestScoreFactor    = 0.8
	fastestDurationFactor = 0.7
)

// DirectionsProvider supplies road-network routes.
type DirectionsProvider interface {
	GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error)
}

// SafetyScorer supplies safety scores for single points.
type SafetyScorer interface {
	Score(ctx context.Context, req safety.Request) (*safety.Result, error)
}

// OptimizerConfig holds configuration for the route optimizer.
type OptimizerConfig struct {
	Directions DirectionsProvider
	Scorer     SafetyScorer
	Logger     zerolog.Logger

	// SampleIntervalMeters is the spacing between safety-scored waypoints
	// (default: 400).
	SampleIntervalMeters float64

	// MaxSamples caps the number of scored waypoints per route (default: 10).
	MaxSamples int
}

// Optimizer plans routes by blending travel time and waypoint safety.
type Optimizer struct {
	directions     DirectionsProvider
	scorer         SafetyScorer
	logger         zerolog.Logger
	sampleInterval float64
	maxSamples     int
}

// NewOptimizer creates a new route optimizer.
func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	sampleInterval := cfg.SampleIntervalMeters
	if sampleInterval == 0 {
		sampleInterval = 400
	}

	maxSamples := cfg.MaxSamples
	if maxSamples == 0 {
		maxSamples = 10
	}

	return &Optimizer{
		directions:     cfg.Directions,
		scorer:         cfg.Scorer,
		logger:         cfg.Logger.With().Str("component", "route_optimizer").Logger(),
		sampleInterval: sampleInterval,
		maxSamples:     maxSamples,
	}
}

// Weights derives the time/safety blend weights from a safety preference in
// [0,100]. Time weight spans [0.3, 0.7]: even a pure speed-seeker keeps some
// safety in the mix, and vice versa.
func Weights(safetyPreference int) (timeWeight, safetyWeight float64) {
	timeWeight = 0.3 + float64(safetyPreference)/100.0*0.4
	return timeWeight, 1 - timeWeight
}

// Plan computes a route plan with safest, balanced and fastest options.
// When the road network has no answer, the plan falls back to a synthesized
// straight-line route rather than failing the request.
func (o *Optimizer) Plan(ctx context.Context, req Request) (*Plan, error) {
	if !req.Start.Valid() || !req.End.Valid() {
		return nil, ErrInvalidCoordinates
	}
	if req.SafetyPreference < 0 || req.SafetyPreference > 100 {
		return nil, ErrInvalidPreference
	}
	if req.UserType == "" {
		req.UserType = safety.UserTypePedestrian
	}
	if req.TimeOfDay == "" {
		req.TimeOfDay = safety.TimeOfDayDay
	}

	timeWeight, safetyWeight := Weights(req.SafetyPreference)

	base, fallback := o.baseRoute(ctx, req)

	samples := o.sampleWaypoints(base.waypoints)
	score, confidence := o.scoreWaypoints(ctx, samples, req)

	balanced := Option{
		Kind:             OptionBalanced,
		GeometryPolyline: base.polyline,
		DistanceMeters:   base.distanceMeters,
		DurationSeconds:  base.durationSeconds,
		SafetyScore:      score,
	}
	if fallback {
		balanced.Waypoints = base.waypoints
	}

	safest := balanced
	safest.Kind = OptionSafest
	safest.SafetyScore = clampScore(int(math.Round(float64(score) * safestScoreFactor)))
	safest.DurationSeconds = base.durationSeconds * safestDurationFactor

	fastest := balanced
	fastest.Kind = OptionFastest
	fastest.SafetyScore = clampScore(int(math.Round(float64(score) * fastestScoreFactor)))
	fastest.DurationSeconds = base.durationSeconds * fastestDurationFactor

	options := []Option{safest, balanced, fastest}

	// Cost normalizes duration against the slowest option so the weights
	// compare like against like.
	maxDuration := safest.DurationSeconds
	for i := range options {
		opt := &options[i]
		durationNorm := 0.0
		if maxDuration > 0 {
			durationNorm = opt.DurationSeconds / maxDuration
		}
		opt.Cost = timeWeight*durationNorm + safetyWeight*(1-float64(opt.SafetyScore)/100.0)
	}

	recommended := options[0]
	for _, opt := range options[1:] {
		if opt.Cost < recommended.Cost {
			recommended = opt
		}
	}

	plan := &Plan{
		ID:               uuid.NewString(),
		Start:            req.Start,
		End:              req.End,
		Options:          options,
		Recommended:      recommended.Kind,
		TimeWeight:       timeWeight,
		SafetyWeight:     safetyWeight,
		Fallback:         fallback,
		SampledWaypoints: len(samples),
		Confidence:       confidence,
		UserType:         req.UserType,
		TimeOfDay:        req.TimeOfDay,
		ComputedAt:       time.Now().UTC(),
	}

	o.logger.Info().
		Str("plan_id", plan.ID).
		Bool("fallback", fallback).
		Int("safety_score", score).
		Float64("time_weight", timeWeight).
		Int("sampled_waypoints", len(samples)).
		Msg("route plan computed")

	return plan, nil
}

type baseRoute struct {
	polyline        string
	waypoints       []geo.Point
	distanceMeters  float64
	durationSeconds float64
}

// baseRoute fetches the road-network route, or synthesizes a straight line
// when the provider has nothing.
func (o *Optimizer) baseRoute(ctx context.Context, req Request) (baseRoute, bool) {
	resp, err := o.directions.GetDirections(ctx, routing.DirectionsRequest{
		Origin:      req.Start,
		Destination: req.End,
		Profile:     profileFor(req.UserType),
	})
	if err == nil && len(resp.Routes) > 0 {
		route := resp.Routes[0]
		return baseRoute{
			polyline:        route.GeometryPolyline,
			waypoints:       route.Waypoints(),
			distanceMeters:  route.DistanceMeters,
			durationSeconds: route.DurationSeconds,
		}, false
	}

	if err != nil {
		o.logger.Warn().
			Err(err).
			Float64("start_lat", req.Start.Lat).
			Float64("start_lon", req.Start.Lon).
			Msg("routing provider failed, synthesizing straight-line route")
	}

	waypoints := make([]geo.Point, 0, fallbackWaypoints)
	for i := 0; i < fallbackWaypoints; i++ {
		t := float64(i) / float64(fallbackWaypoints-1)
		waypoints = append(waypoints, geo.Interpolate(t, req.Start, req.End))
	}

	distance := geo.Distance(req.Start, req.End)
	return baseRoute{
		waypoints:       waypoints,
		distanceMeters:  distance,
		durationSeconds: distance / walkSpeedMetersPerSecond,
	}, true
}

// sampleWaypoints thins the route geometry down to a bounded set of points
// to score, always keeping the endpoints.
func (o *Optimizer) sampleWaypoints(points []geo.Point) []geo.Point {
	samples := polyline.Sample(points, o.sampleInterval)
	if len(samples) <= o.maxSamples {
		return samples
	}

	thinned := make([]geo.Point, 0, o.maxSamples)
	step := float64(len(samples)-1) / float64(o.maxSamples-1)
	for i := 0; i < o.maxSamples; i++ {
		thinned = append(thinned, samples[int(math.Round(float64(i)*step))])
	}
	return thinned
}

// scoreWaypoints scores the sampled points concurrently and averages them.
// Order is preserved; a waypoint that cannot be scored contributes a neutral
// score. Returns the averaged score and the minimum per-point confidence.
func (o *Optimizer) scoreWaypoints(ctx context.Context, points []geo.Point, req Request) (int, float64) {
	if len(points) == 0 {
		return 50, 0
	}

	scores := make([]int, len(points))
	confidences := make([]float64, len(points))

	var wg sync.WaitGroup
	wg.Add(len(points))
	for i, p := range points {
		go func(i int, p geo.Point) {
			defer wg.Done()
			result, err := o.scorer.Score(ctx, safety.Request{
				Location:  p,
				UserType:  req.UserType,
				TimeOfDay: req.TimeOfDay,
			})
			if err != nil {
				o.logger.Warn().
					Err(err).
					Float64("lat", p.Lat).
					Float64("lon", p.Lon).
					Msg("waypoint scoring failed, using neutral score")
				scores[i] = 50
				confidences[i] = 0
				return
			}
			scores[i] = result.OverallScore
			confidences[i] = result.Confidence
		}(i, p)
	}
	wg.Wait()

	sum := 0
	minConfidence := 1.0
	for i := range scores {
		sum += scores[i]
		if confidences[i] < minConfidence {
			minConfidence = confidences[i]
		}
	}

	return int(math.Round(float64(sum) / float64(len(scores)))), minConfidence
}

func profileFor(userType safety.UserType) routing.RouteProfile {
	if userType == safety.UserTypeCyclist {
		return routing.ProfileBike
	}
	return routing.ProfileFoot
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

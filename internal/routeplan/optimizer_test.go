package routeplan

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/routing"
	"github.com/saferoute/saferoute/internal/safety"
	"github.com/saferoute/saferoute/pkg/geo"
	"github.com/saferoute/saferoute/pkg/polyline"
)

var (
	chennaiStart = geo.Point{Lat: 13.0827, Lon: 80.2707}
	chennaiEnd   = geo.Point{Lat: 13.0398, Lon: 80.2342}
)

type stubDirections struct {
	response *routing.DirectionsResponse
	err      error
	calls    int
}

func (s *stubDirections) GetDirections(_ context.Context, _ routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	s.calls++
	return s.response, s.err
}

type stubScorer struct {
	score      int
	confidence float64
	err        error
}

func (s *stubScorer) Score(_ context.Context, req safety.Request) (*safety.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &safety.Result{
		OverallScore: s.score,
		Confidence:   s.confidence,
		Location:     req.Location,
	}, nil
}

func chennaiRoute() *routing.DirectionsResponse {
	points := append([]geo.Point{chennaiStart}, geo.Line(chennaiStart, chennaiEnd, 8)...)
	points = append(points, chennaiEnd)
	return &routing.DirectionsResponse{
		Routes: []routing.Route{
			{
				GeometryPolyline: polyline.Encode(points),
				DistanceMeters:   6200,
				DurationSeconds:  4464,
			},
		},
		Provider: "osrm",
	}
}

func newTestOptimizer(directions DirectionsProvider, scorer SafetyScorer) *Optimizer {
	return NewOptimizer(OptimizerConfig{
		Directions: directions,
		Scorer:     scorer,
		Logger:     zerolog.Nop(),
	})
}

func TestWeights(t *testing.T) {
	tests := []struct {
		preference int
		timeWeight float64
	}{
		{0, 0.3},
		{25, 0.4},
		{50, 0.5},
		{80, 0.62},
		{100, 0.7},
	}

	for _, tt := range tests {
		timeWeight, safetyWeight := Weights(tt.preference)
		assert.InDelta(t, tt.timeWeight, timeWeight, 1e-9, "preference=%d", tt.preference)
		assert.InDelta(t, 1-tt.timeWeight, safetyWeight, 1e-9, "preference=%d", tt.preference)
	}
}

func TestOptimizer_Plan(t *testing.T) {
	directions := &stubDirections{response: chennaiRoute()}
	scorer := &stubScorer{score: 70, confidence: 1.0}
	optimizer := newTestOptimizer(directions, scorer)

	plan, err := optimizer.Plan(context.Background(), Request{
		Start:            chennaiStart,
		End:              chennaiEnd,
		SafetyPreference: 80,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.62, plan.TimeWeight, 1e-9)
	assert.InDelta(t, 0.38, plan.SafetyWeight, 1e-9)
	assert.False(t, plan.Fallback)
	assert.Greater(t, plan.SampledWaypoints, 0)
	assert.InDelta(t, 1.0, plan.Confidence, 1e-9)
	assert.NotEmpty(t, plan.ID)

	require.Len(t, plan.Options, 3)
	safest := plan.Option(OptionSafest)
	balanced := plan.Option(OptionBalanced)
	fastest := plan.Option(OptionFastest)
	require.NotNil(t, safest)
	require.NotNil(t, balanced)
	require.NotNil(t, fastest)

	// Safer costs time; faster costs safety.
	assert.Greater(t, safest.DurationSeconds, balanced.DurationSeconds)
	assert.Greater(t, balanced.DurationSeconds, fastest.DurationSeconds)
	assert.Greater(t, safest.SafetyScore, balanced.SafetyScore)
	assert.Greater(t, balanced.SafetyScore, fastest.SafetyScore)

	assert.Equal(t, 70, balanced.SafetyScore)
	assert.Equal(t, 84, safest.SafetyScore)
	assert.Equal(t, 56, fastest.SafetyScore)
	assert.InDelta(t, 4464*1.3, safest.DurationSeconds, 1e-9)
	assert.InDelta(t, 4464*0.7, fastest.DurationSeconds, 1e-9)
}

func TestOptimizer_Plan_ScoreClamping(t *testing.T) {
	directions := &stubDirections{response: chennaiRoute()}
	optimizer := newTestOptimizer(directions, &stubScorer{score: 95, confidence: 1.0})

	plan, err := optimizer.Plan(context.Background(), Request{
		Start:            chennaiStart,
		End:              chennaiEnd,
		SafetyPreference: 50,
	})
	require.NoError(t, err)

	// 95 * 1.2 caps at 100.
	assert.Equal(t, 100, plan.Option(OptionSafest).SafetyScore)
}

func TestOptimizer_Plan_RecommendationFollowsPreference(t *testing.T) {
	directions := &stubDirections{response: chennaiRoute()}
	scorer := &stubScorer{score: 70, confidence: 1.0}

	speedy, err := newTestOptimizer(directions, scorer).Plan(context.Background(), Request{
		Start:            chennaiStart,
		End:              chennaiEnd,
		SafetyPreference: 0,
	})
	require.NoError(t, err)

	cautious, err := newTestOptimizer(directions, scorer).Plan(context.Background(), Request{
		Start:            chennaiStart,
		End:              chennaiEnd,
		SafetyPreference: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, OptionFastest, speedy.Recommended)
	assert.Equal(t, OptionSafest, cautious.Recommended)
}

func TestOptimizer_Plan_FallbackRoute(t *testing.T) {
	directions := &stubDirections{err: errors.New("osrm unreachable")}
	optimizer := newTestOptimizer(directions, &stubScorer{score: 60, confidence: 1.0})

	plan, err := optimizer.Plan(context.Background(), Request{
		Start:            chennaiStart,
		End:              chennaiEnd,
		SafetyPreference: 50,
	})
	require.NoError(t, err)

	assert.True(t, plan.Fallback)

	balanced := plan.Option(OptionBalanced)
	require.NotNil(t, balanced)
	assert.Empty(t, balanced.GeometryPolyline)
	require.Len(t, balanced.Waypoints, 5)
	assert.InDelta(t, chennaiStart.Lat, balanced.Waypoints[0].Lat, 1e-6)
	assert.InDelta(t, chennaiStart.Lon, balanced.Waypoints[0].Lon, 1e-6)
	assert.InDelta(t, chennaiEnd.Lat, balanced.Waypoints[4].Lat, 1e-6)
	assert.InDelta(t, chennaiEnd.Lon, balanced.Waypoints[4].Lon, 1e-6)

	// Straight-line distance at 5 km/h walking pace.
	directDistance := geo.Distance(chennaiStart, chennaiEnd)
	assert.InDelta(t, directDistance, balanced.DistanceMeters, 1)
	assert.InDelta(t, directDistance/(5000.0/3600.0), balanced.DurationSeconds, 1)
	assert.Greater(t, balanced.DistanceMeters, 0.0)
}

func TestOptimizer_Plan_ScoringFailureNeutral(t *testing.T) {
	directions := &stubDirections{response: chennaiRoute()}
	optimizer := newTestOptimizer(directions, &stubScorer{err: errors.New("sources down")})

	plan, err := optimizer.Plan(context.Background(), Request{
		Start:            chennaiStart,
		End:              chennaiEnd,
		SafetyPreference: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, 50, plan.Option(OptionBalanced).SafetyScore)
	assert.Equal(t, 0.0, plan.Confidence)
}

func TestOptimizer_Plan_SampleCap(t *testing.T) {
	// Dense geometry with a point every ~50m.
	points := append([]geo.Point{chennaiStart}, geo.Line(chennaiStart, chennaiEnd, 120)...)
	points = append(points, chennaiEnd)
	directions := &stubDirections{response: &routing.DirectionsResponse{
		Routes: []routing.Route{{
			GeometryPolyline: polyline.Encode(points),
			DistanceMeters:   6200,
			DurationSeconds:  4464,
		}},
	}}

	optimizer := NewOptimizer(OptimizerConfig{
		Directions:           directions,
		Scorer:               &stubScorer{score: 70, confidence: 1.0},
		Logger:               zerolog.Nop(),
		SampleIntervalMeters: 100,
		MaxSamples:           5,
	})

	plan, err := optimizer.Plan(context.Background(), Request{
		Start:            chennaiStart,
		End:              chennaiEnd,
		SafetyPreference: 50,
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, plan.SampledWaypoints, 5)
}

func TestOptimizer_Plan_Validation(t *testing.T) {
	optimizer := newTestOptimizer(&stubDirections{}, &stubScorer{})
	ctx := context.Background()

	_, err := optimizer.Plan(ctx, Request{
		Start:            geo.Point{Lat: 91, Lon: 0},
		End:              chennaiEnd,
		SafetyPreference: 50,
	})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = optimizer.Plan(ctx, Request{
		Start:            chennaiStart,
		End:              chennaiEnd,
		SafetyPreference: 101,
	})
	assert.ErrorIs(t, err, ErrInvalidPreference)
}

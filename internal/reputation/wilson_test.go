package reputation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWilsonLowerBound_ZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, WilsonLowerBound(0, 0, DefaultZ))
}

func TestWilsonLowerBound_KnownValues(t *testing.T) {
	// 45/90 with z=1.96: the interval around 0.5 has a lower bound near 0.4.
	assert.InDelta(t, 0.399, WilsonLowerBound(45, 90, DefaultZ), 0.005)

	// All positive, small sample stays well below the raw rate.
	assert.InDelta(t, 0.4385, WilsonLowerBound(3, 3, DefaultZ), 0.005)

	// Large sample converges toward the raw rate.
	assert.InDelta(t, 0.88, WilsonLowerBound(900, 1000, DefaultZ), 0.01)
	assert.Less(t, WilsonLowerBound(900, 1000, DefaultZ), 0.9)
}

func TestWilsonLowerBound_PenalizesSmallSamples(t *testing.T) {
	// Same raw rate, more evidence, higher bound.
	assert.Less(t, WilsonLowerBound(3, 3, DefaultZ), WilsonLowerBound(30, 30, DefaultZ))
	assert.Less(t, WilsonLowerBound(30, 30, DefaultZ), WilsonLowerBound(300, 300, DefaultZ))

	// A perfect short history loses to a near-perfect long one.
	assert.Less(t, WilsonLowerBound(3, 3, DefaultZ), WilsonLowerBound(90, 100, DefaultZ))
}

func TestWilsonLowerBound_MonotonicInPositives(t *testing.T) {
	prev := -1.0
	for positive := 0; positive <= 50; positive += 5 {
		score := WilsonLowerBound(positive, 50, DefaultZ)
		assert.Greater(t, score, prev)
		prev = score
	}
}

func TestWilsonLowerBound_Bounds(t *testing.T) {
	for _, tc := range []struct{ positive, total int }{
		{0, 1}, {1, 1}, {0, 100}, {100, 100}, {50, 100}, {1, 1000},
	} {
		score := WilsonLowerBound(tc.positive, tc.total, DefaultZ)
		assert.GreaterOrEqual(t, score, 0.0, "positive=%d total=%d", tc.positive, tc.total)
		assert.LessOrEqual(t, score, 1.0, "positive=%d total=%d", tc.positive, tc.total)
	}
}

func TestWilsonLowerBound_HigherZLowersBound(t *testing.T) {
	// 99% confidence demands more evidence than 95%.
	assert.Less(t, WilsonLowerBound(40, 50, 2.58), WilsonLowerBound(40, 50, 1.96))
}

func TestStandingFor_Ladder(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		total    int
		expected Standing
	}{
		{"no history", 0.0, 0, StandingNew},
		{"short history pins to new even with perfect score", 0.95, 9, StandingNew},
		{"low score stays new", 0.35, 100, StandingNew},
		{"moderate score is trusted", 0.45, 15, StandingTrusted},
		{"good score but short history is trusted", 0.7, 15, StandingTrusted},
		{"good score with history is verified", 0.65, 25, StandingVerified},
		{"great score but not enough events for expert", 0.85, 40, StandingVerified},
		{"great score with long history is expert", 0.85, 60, StandingExpert},
		{"boundary: exactly 0.4 is new", 0.4, 100, StandingNew},
		{"boundary: exactly 10 events can rank", 0.5, 10, StandingTrusted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StandingFor(tt.score, tt.total))
		})
	}
}

func TestStandingFor_WilsonIntegration(t *testing.T) {
	// 45 verified out of 90: wilson ~0.399, a hair under the trusted bar.
	score := WilsonLowerBound(45, 90, DefaultZ)
	assert.Equal(t, StandingNew, StandingFor(score, 90))

	// 50 verified out of 90 clears it.
	score = WilsonLowerBound(50, 90, DefaultZ)
	assert.Equal(t, StandingTrusted, StandingFor(score, 90))
}

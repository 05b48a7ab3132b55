package reputation

import "math"

// DefaultZ is the z-score for a 95% confidence interval.
const DefaultZ = 1.96

// WilsonLowerBound returns the lower bound of the Wilson score confidence
// interval for a Bernoulli success rate, given positive outcomes out of total
// trials. It penalizes small samples: 3/3 scores well below 90/100 even
// though the raw rate is higher. Returns 0 when total is zero. Pass DefaultZ
// for a 95% interval.
func WilsonLowerBound(positive, total int, z float64) float64 {
	if total <= 0 {
		return 0.0
	}

	n := float64(total)
	p := float64(positive) / n
	z2 := z * z

	denominator := 1 + z2/n
	center := p + z2/(2*n)
	margin := z * math.Sqrt((p*(1-p)+z2/(4*n))/n)

	return (center - margin) / denominator
}

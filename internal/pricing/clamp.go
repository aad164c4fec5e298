package pricing

import "math"

// Clamp bounds value to [floor, ceiling] and reports whether a bound was
// hit. Pass math.Inf(1) as ceiling when no competitor average is known so
// the floor still applies.
func Clamp(value, floor, ceiling float64) (float64, bool) {
	if value < floor {
		return floor, true
	}
	if value > ceiling {
		return ceiling, true
	}
	return value, false
}

// NormalizeMargin accepts both fractional (0.3) and percentage (30) margin
// notation and returns the fractional form.
func NormalizeMargin(margin float64) float64 {
	if margin > 1 {
		return margin / 100
	}
	return margin
}

// FloorPrice computes the minimum admissible price: cost plus margin.
func FloorPrice(costPrice, margin float64) float64 {
	return costPrice * (1 + NormalizeMargin(margin))
}

// CeilingPrice computes the competitor-relative maximum. Unknown competitor
// average yields +Inf.
func CeilingPrice(competitorAvg float64, hasCompetitor bool, ceilingPct float64) float64 {
	if !hasCompetitor || competitorAvg <= 0 {
		return math.Inf(1)
	}
	return competitorAvg * (1 + ceilingPct)
}

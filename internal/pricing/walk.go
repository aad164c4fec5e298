package pricing

import (
	"fmt"
	"math/rand"
)

// Step applies one bounded multiplicative walk step: value × (1 ± δ) with
// δ drawn uniformly from [minPct, maxPct] and a uniform sign.
func Step(r *rand.Rand, value, minPct, maxPct float64) float64 {
	if minPct > maxPct {
		panic(fmt.Sprintf("walk: minPct %v exceeds maxPct %v", minPct, maxPct))
	}
	delta := minPct + r.Float64()*(maxPct-minPct)
	if r.Intn(2) == 0 {
		delta = -delta
	}
	return value * (1 + delta)
}

// StepClamped applies one bounded additive walk step and hard-clamps the
// result to [lo, hi]. Used for the demand factor.
func StepClamped(r *rand.Rand, value, maxDelta, lo, hi float64) float64 {
	if lo > hi {
		panic(fmt.Sprintf("walk: lo %v exceeds hi %v", lo, hi))
	}
	v := value + (r.Float64()*2-1)*maxDelta
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

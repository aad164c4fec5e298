package signals

import (
	"math"
	"sort"
)

// trimThreshold is the minimum sample size before tail trimming kicks in.
const trimThreshold = 10

// TrimmedMean averages values after dropping the top and bottom 10% of the
// sorted sample. Samples below the threshold are averaged untrimmed. The
// second return is false for an empty sample.
func TrimmedMean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	trim := 0
	if len(sorted) >= trimThreshold {
		trim = len(sorted) / 10
	}
	kept := sorted[trim : len(sorted)-trim]
	if len(kept) == 0 {
		return 0, false
	}

	var sum float64
	for _, v := range kept {
		sum += v
	}
	return sum / float64(len(kept)), true
}

// SalesToDemand maps an aggregate sales figure onto [0,1] via a saturating
// curve: 1 - e^(-sales/scale).
func SalesToDemand(sales, scale float64) float64 {
	if sales <= 0 || scale <= 0 {
		return 0
	}
	d := 1 - math.Exp(-sales/scale)
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

package pricing

// EMA applies one exponential moving average step:
// alpha×value + (1-alpha)×prevEMA. Damps tick-to-tick flicker.
func EMA(prevEMA, value, alpha float64) float64 {
	return alpha*value + (1-alpha)*prevEMA
}

package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// PricingMetadata is the wire-level pricing block attached to every
// updated product. Prices carry two decimals, demand four.
type PricingMetadata struct {
	OldPrice         decimal.Decimal  `json:"old_price"`
	NewPrice         decimal.Decimal  `json:"new_price"`
	EMAPrice         decimal.Decimal  `json:"ema_price"`
	CompetitorAvg    decimal.Decimal  `json:"competitor_avg"`
	DemandFactor     decimal.Decimal  `json:"demand_factor"`
	RecommendedPrice decimal.Decimal  `json:"recommended_price"`
	Confidence       float64          `json:"confidence"`
	ModelVersion     string           `json:"model_version"`
	Savings          decimal.Decimal  `json:"savings"`
	CostEstimate     decimal.Decimal  `json:"cost_estimate"`
	Floor            decimal.Decimal  `json:"floor"`
	Ceiling          *decimal.Decimal `json:"ceiling,omitempty"`
	EMAApplied       bool             `json:"ema_applied"`
	ClampApplied     bool             `json:"clamp_applied"`
	Tick             int64            `json:"tick"`
}

// UpdatedProduct is one product advanced by a tick.
type UpdatedProduct struct {
	ID       string          `json:"id"`
	Platform string          `json:"platform"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
	Pricing  PricingMetadata `json:"pricing"`
}

// MarketSnapshot is the full output of one simulated tick.
type MarketSnapshot struct {
	Tick      int64            `json:"tick"`
	Timestamp time.Time        `json:"timestamp"`
	Updated   []UpdatedProduct `json:"updated"`
}

// Price rounds a float price to the two-decimal wire form. Non-finite
// inputs collapse to zero so conversion never panics.
func Price(v float64) decimal.Decimal {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

// PriceBound converts an upper price bound for the wire, where an
// unbounded (infinite) ceiling is represented as absent.
func PriceBound(v float64) *decimal.Decimal {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	d := Price(v)
	return &d
}

// Demand rounds a demand factor to the four-decimal wire form.
func Demand(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(4)
}

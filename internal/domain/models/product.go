package models

// ProductSnapshot is a catalog entry used to seed the price walk.
// Optional fields are absent for products the catalog has no data for.
type ProductSnapshot struct {
	ID            string
	Platform      string
	Name          string
	Price         float64
	OriginalPrice *float64
	CompetitorAvg *float64
	DemandFactor  *float64
	Currency      string
}

// Original returns the list price, falling back to the current price.
func (p *ProductSnapshot) Original() float64 {
	if p.OriginalPrice != nil {
		return *p.OriginalPrice
	}
	return p.Price
}

// EntityState is the per-product walk state carried between ticks.
type EntityState struct {
	Price         float64 `json:"price"`
	EMAPrice      float64 `json:"ema_price"`
	CompetitorAvg float64 `json:"competitor_avg"`
	DemandFactor  float64 `json:"demand_factor"`
	LastTick      int64   `json:"last_tick"`
}

// Listing is a single marketplace search hit.
type Listing struct {
	ID       string
	Platform string
	Title    string
	Price    float64
	Sold     int64
}

package models

import "time"

// PlatformStats is the per-platform slice of a market aggregate.
type PlatformStats struct {
	Platform   string  `json:"platform"`
	AvgPrice   float64 `json:"avg_price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	TotalSales int64   `json:"total_sales"`
	SampleSize int     `json:"sample_size"`
}

// MarketStats is a consolidated multi-platform view for one query.
// Platforms that failed during collection are recorded in Errors and
// excluded from the aggregate.
type MarketStats struct {
	Query       string                   `json:"query"`
	AvgPrice    float64                  `json:"avg_price"`
	MinPrice    float64                  `json:"min_price"`
	MaxPrice    float64                  `json:"max_price"`
	TrimmedMean float64                  `json:"trimmed_mean"`
	DemandScore float64                  `json:"demand_score"`
	TotalSales  int64                    `json:"total_sales"`
	SampleSize  int                      `json:"sample_size"`
	Platforms   map[string]PlatformStats `json:"platforms"`
	Errors      map[string]string        `json:"errors,omitempty"`
	FetchedAt   time.Time                `json:"fetched_at"`
}

package models

// Recommendation is the pricing engine output for one product.
type Recommendation struct {
	RecommendedPrice float64
	Confidence       float64
	ModelVersion     string
	Savings          float64
}

// RecommendationInput carries everything the engine needs for one product.
type RecommendationInput struct {
	ProductID     string
	Platform      string
	CostPrice     float64
	CurrentPrice  float64
	CompetitorAvg float64
	HasCompetitor bool
	DemandFactor  float64
	SampleSize    int
}

// ScoreRequest is sent to the remote scoring service.
type ScoreRequest struct {
	ProductID     string  `json:"product_id"`
	Platform      string  `json:"platform"`
	CurrentPrice  float64 `json:"current_price"`
	CompetitorAvg float64 `json:"competitor_avg"`
	DemandFactor  float64 `json:"demand_factor"`
	MinPrice      float64 `json:"min_price"`
}

// ScoreResponse is the remote scoring service reply.
type ScoreResponse struct {
	RecommendedPrice float64 `json:"recommended_price"`
	Confidence       float64 `json:"confidence"`
	ModelVersion     string  `json:"model_version"`
}

// Explanation is the step-by-step breakdown of one recommendation. The
// ceiling is absent when no competitor average bounds the price.
type Explanation struct {
	ProductID        string   `json:"product_id"`
	Platform         string   `json:"platform"`
	CurrentPrice     float64  `json:"current_price"`
	CompetitorAvg    float64  `json:"competitor_avg"`
	DemandFactor     float64  `json:"demand_factor"`
	CostPrice        float64  `json:"cost_price"`
	FloorPrice       float64  `json:"floor_price"`
	CeilingPrice     *float64 `json:"ceiling_price,omitempty"`
	CompetitorTerm   float64  `json:"competitor_term"`
	FloorTerm        float64  `json:"floor_term"`
	DemandTerm       float64  `json:"demand_term"`
	RawPrice         float64  `json:"raw_price"`
	RecommendedPrice float64  `json:"recommended_price"`
	Clamped          bool     `json:"clamped"`
	Confidence       float64  `json:"confidence"`
	ModelVersion     string   `json:"model_version"`
	Rationale        string   `json:"rationale"`
}

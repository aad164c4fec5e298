package models

// Requests for live pricing HTTP endpoints. Defined in domain for consistency and reuse.

type StreamRequest struct {
	Platform string `query:"platform" json:"platform" default:"all" validate:"omitempty,oneof=all shopee lazada tiktok"`
	Products int    `query:"products" json:"products" default:"20" validate:"gte=1,lte=100"`
	Demo     bool   `query:"demo" json:"demo"`
}

type PollRequest struct {
	Platform  string `query:"platform" json:"platform" default:"all" validate:"omitempty,oneof=all shopee lazada tiktok"`
	Products  int    `query:"products" json:"products" default:"20" validate:"gte=1,lte=100"`
	SinceTick int64  `query:"since_tick" json:"since_tick" validate:"gte=0"`
	Demo      bool   `query:"demo" json:"demo"`
}

type SignalsRequest struct {
	Query string `query:"q" json:"q" validate:"required,min=1,max=128"`
}

type ToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type PollResponse struct {
	Tick       int64            `json:"tick"`
	HasUpdates bool             `json:"has_updates"`
	Products   []UpdatedProduct `json:"products"`
	NextPollMS int              `json:"next_poll_ms"`
}

type StatusResponse struct {
	Enabled          bool     `json:"enabled"`
	Tick             int64    `json:"tick"`
	TickQuantumMS    int      `json:"tick_quantum_ms"`
	Platforms        []string `json:"platforms"`
	MaxProducts      int      `json:"max_products"`
	ScorerConfigured bool     `json:"scorer_configured"`
}

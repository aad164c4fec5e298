package repository

import (
	"context"

	"PricePulse/internal/domain/models"
)

// EntityStateStore persists per-product walk state between ticks.
// A miss is reported as found=false, not as an error.
type EntityStateStore interface {
	Get(ctx context.Context, platform, id string) (*models.EntityState, bool, error)
	Put(ctx context.Context, platform, id string, state *models.EntityState) error
}

// SignalCache memoizes market aggregates per normalized query.
type SignalCache interface {
	Get(ctx context.Context, query string) (*models.MarketStats, bool, error)
	Put(ctx context.Context, query string, stats *models.MarketStats) error
}

// SnapshotSink receives tick snapshots and market aggregates for durable
// export. Both calls are best-effort from the caller's point of view.
type SnapshotSink interface {
	Emit(ctx context.Context, snap *models.MarketSnapshot) error
	EmitStats(ctx context.Context, stats *models.MarketStats) error
	Close() error
}

// ProductSource serves the catalog the simulator walks over.
type ProductSource interface {
	Products(ctx context.Context, platform string, limit int) ([]models.ProductSnapshot, error)
	Lookup(ctx context.Context, platform, id string) (*models.ProductSnapshot, error)
}

// SearchClient searches one marketplace platform.
type SearchClient interface {
	Platform() string
	Search(ctx context.Context, query string, limit int) ([]models.Listing, error)
}

// Scorer produces a price recommendation, possibly remotely.
type Scorer interface {
	Score(ctx context.Context, req *models.ScoreRequest) (*models.ScoreResponse, error)
	Health(ctx context.Context) error
}

// Metrics records operational counters for the pricing pipeline.
type Metrics interface {
	RecordTick(transport string, updated int)
	RecordClamp(bound string)
	RecordFallback(reason string)
	RecordSignalFetch(platform string, ok bool)
	StreamOpened()
	StreamClosed()
	RecordLatency(op string, seconds float64)
}

// NoopSink discards snapshots. Used when no durable backend is configured.
type NoopSink struct{}

func (NoopSink) Emit(context.Context, *models.MarketSnapshot) error   { return nil }
func (NoopSink) EmitStats(context.Context, *models.MarketStats) error { return nil }
func (NoopSink) Close() error                                         { return nil }

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) RecordTick(string, int)         {}
func (NopMetrics) RecordClamp(string)             {}
func (NopMetrics) RecordFallback(string)          {}
func (NopMetrics) RecordSignalFetch(string, bool) {}
func (NopMetrics) StreamOpened()                  {}
func (NopMetrics) StreamClosed()                  {}
func (NopMetrics) RecordLatency(string, float64)  {}

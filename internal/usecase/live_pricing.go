package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"PricePulse/internal/domain/models"
	"PricePulse/internal/domain/repository"
	"PricePulse/internal/pricing"
	"PricePulse/internal/signals"
	"PricePulse/pkg/config"
	applogger "PricePulse/pkg/logger"
	"PricePulse/pkg/util"
)

// LivePricing drives the tick simulation for both delivery transports
// and serves the explain/status/toggle surface around it.
type LivePricing struct {
	cfg        *config.Config
	simulator  *pricing.Simulator
	engine     *pricing.Engine
	catalog    repository.ProductSource
	stateStore repository.EntityStateStore
	aggregator *signals.Aggregator
	sink       repository.SnapshotSink
	scorer     repository.Scorer
	metrics    repository.Metrics
	logger     *applogger.Logger

	enabled atomic.Bool
}

// LivePricingOption configures LivePricing.
type LivePricingOption func(*LivePricing)

// WithSink attaches a durable snapshot export.
func WithSink(sink repository.SnapshotSink) LivePricingOption {
	return func(u *LivePricing) { u.sink = sink }
}

// WithScorer records the remote scorer for health reporting.
func WithScorer(s repository.Scorer) LivePricingOption {
	return func(u *LivePricing) { u.scorer = s }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m repository.Metrics) LivePricingOption {
	return func(u *LivePricing) { u.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l *applogger.Logger) LivePricingOption {
	return func(u *LivePricing) { u.logger = l }
}

// NewLivePricing wires the pricing use case.
func NewLivePricing(
	cfg *config.Config,
	simulator *pricing.Simulator,
	engine *pricing.Engine,
	catalog repository.ProductSource,
	stateStore repository.EntityStateStore,
	aggregator *signals.Aggregator,
	opts ...LivePricingOption,
) *LivePricing {
	u := &LivePricing{
		cfg:        cfg,
		simulator:  simulator,
		engine:     engine,
		catalog:    catalog,
		stateStore: stateStore,
		aggregator: aggregator,
		sink:       repository.NoopSink{},
		metrics:    repository.NopMetrics{},
	}
	u.enabled.Store(true)
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CurrentTick exposes the simulation clock.
func (u *LivePricing) CurrentTick() int64 {
	return u.simulator.CurrentTick()
}

// Enabled reports whether ticks currently produce updates.
func (u *LivePricing) Enabled() bool {
	return u.enabled.Load()
}

// SetEnabled flips the simulation on or off and returns the new value.
func (u *LivePricing) SetEnabled(enabled bool) bool {
	u.enabled.Store(enabled)
	if u.logger != nil {
		u.logger.Info("live pricing toggled", applogger.Bool("enabled", enabled))
	}
	return enabled
}

// RunTick advances the simulation for one transport request. When the
// feature is toggled off it returns an empty snapshot at the current tick.
func (u *LivePricing) RunTick(ctx context.Context, platform string, limit int, demo bool, transport string) (*models.MarketSnapshot, error) {
	start := time.Now()

	if !u.enabled.Load() {
		return &models.MarketSnapshot{
			Tick:      u.simulator.CurrentTick(),
			Timestamp: time.Now().UTC(),
			Updated:   []models.UpdatedProduct{},
		}, nil
	}

	limit = clampLimit(limit, u.cfg.Stream.MaxProducts)
	products, err := u.catalog.Products(ctx, platform, limit)
	if err != nil {
		return nil, err
	}

	sim := u.simulator
	if demo {
		sim = sim.WithSource(pricing.NewSeededSource(u.cfg.Pricing.DemoSeed))
	}

	snap := sim.Tick(ctx, products)
	u.metrics.RecordTick(transport, len(snap.Updated))
	u.metrics.RecordLatency("tick", time.Since(start).Seconds())

	if len(snap.Updated) > 0 {
		if err := u.sink.Emit(ctx, snap); err != nil && u.logger != nil {
			u.logger.Warn("snapshot emit failed", applogger.Error(err))
		}
	}
	return snap, nil
}

// Poll serves the stateless delta transport. A caller already at the
// current tick gets an immediate no-update reply without touching any
// entity state.
func (u *LivePricing) Poll(ctx context.Context, req *models.PollRequest) (*models.PollResponse, error) {
	tick := u.simulator.CurrentTick()
	nextPoll := int(u.cfg.Stream.PollInterval / time.Millisecond)

	if req.SinceTick >= tick {
		return &models.PollResponse{
			Tick:       tick,
			HasUpdates: false,
			Products:   []models.UpdatedProduct{},
			NextPollMS: nextPoll,
		}, nil
	}

	snap, err := u.RunTick(ctx, req.Platform, req.Products, req.Demo, "poll")
	if err != nil {
		return nil, err
	}
	return &models.PollResponse{
		Tick:       snap.Tick,
		HasUpdates: len(snap.Updated) > 0,
		Products:   snap.Updated,
		NextPollMS: nextPoll,
	}, nil
}

// Explain returns the formula breakdown for one product based on its
// current walk state, falling back to snapshot-derived seeds when the
// state has expired.
func (u *LivePricing) Explain(ctx context.Context, platform, id string) (*models.Explanation, error) {
	product, err := u.catalog.Lookup(ctx, platform, id)
	if err != nil {
		return nil, err
	}

	in := &models.RecommendationInput{
		ProductID:     product.ID,
		Platform:      product.Platform,
		CostPrice:     product.Original() * u.cfg.Pricing.CostRatio,
		CurrentPrice:  product.Price,
		CompetitorAvg: product.Price * 1.05,
		HasCompetitor: true,
		DemandFactor:  signals.DefaultDemand,
	}
	if product.CompetitorAvg != nil && *product.CompetitorAvg > 0 {
		in.CompetitorAvg = *product.CompetitorAvg
	}
	if product.DemandFactor != nil {
		in.DemandFactor = *product.DemandFactor
	}

	if state, found, err := u.stateStore.Get(ctx, platform, id); err == nil && found {
		in.CurrentPrice = state.Price
		in.CompetitorAvg = state.CompetitorAvg
		in.DemandFactor = state.DemandFactor
	}

	return u.engine.Explain(in), nil
}

// Signals exposes the market aggregate for a query.
func (u *LivePricing) Signals(ctx context.Context, query string) (*models.MarketStats, error) {
	return u.aggregator.Signals(ctx, query)
}

// Status summarizes the engine for operators.
func (u *LivePricing) Status() *models.StatusResponse {
	return &models.StatusResponse{
		Enabled:          u.enabled.Load(),
		Tick:             u.simulator.CurrentTick(),
		TickQuantumMS:    int(u.cfg.Pricing.TickQuantum / time.Millisecond),
		Platforms:        u.cfg.Signals.Platforms,
		MaxProducts:      u.cfg.Stream.MaxProducts,
		ScorerConfigured: u.scorer != nil,
	}
}

// ScorerHealth probes the remote scorer; nil scorer reports healthy since
// the formula path needs no external service.
func (u *LivePricing) ScorerHealth(ctx context.Context) error {
	if u.scorer == nil {
		return nil
	}
	return u.scorer.Health(ctx)
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return 20
	}
	return util.ClampInt(limit, 1, max)
}

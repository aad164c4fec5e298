package pricing

import (
	"context"
	"time"

	"PricePulse/internal/domain/models"
	"PricePulse/internal/domain/repository"
	"PricePulse/pkg/config"
	applogger "PricePulse/pkg/logger"
)

// Simulator advances per-product walk state once per tick for a caller
// supplied working set. It composes the walk, the EMA smoother, the
// floor/ceiling clamp and the recommendation engine. Tick never fails:
// store errors degrade to re-seeding from the snapshot.
type Simulator struct {
	cfg     config.PricingConfig
	clock   *Clock
	store   repository.EntityStateStore
	engine  *Engine
	source  DrawSource
	metrics repository.Metrics
	logger  *applogger.Logger
}

// SimulatorOption configures Simulator.
type SimulatorOption func(*Simulator)

// WithDrawSource sets the random stream source.
func WithDrawSource(src DrawSource) SimulatorOption {
	return func(s *Simulator) { s.source = src }
}

// WithSimMetrics attaches a metrics recorder.
func WithSimMetrics(m repository.Metrics) SimulatorOption {
	return func(s *Simulator) { s.metrics = m }
}

// WithSimLogger attaches a logger.
func WithSimLogger(l *applogger.Logger) SimulatorOption {
	return func(s *Simulator) { s.logger = l }
}

// NewSimulator creates a simulator.
func NewSimulator(cfg config.PricingConfig, clock *Clock, store repository.EntityStateStore, engine *Engine, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		cfg:     cfg,
		clock:   clock,
		store:   store,
		engine:  engine,
		source:  NewSystemSource(),
		metrics: repository.NopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSource returns a shallow copy using the given source. Demo requests
// swap in a fixed-seed source without touching concurrent callers.
func (s *Simulator) WithSource(src DrawSource) *Simulator {
	cp := *s
	cp.source = src
	return &cp
}

// CurrentTick exposes the clock reading.
func (s *Simulator) CurrentTick() int64 {
	return s.clock.CurrentTick()
}

// Tick advances a subset of the given products for the current tick and
// returns the resulting snapshot. The subset is 5-15% of the input
// (minimum one product); in deterministic mode both the subset and the
// walk draws are pure functions of (seed, tick, ordinal).
func (s *Simulator) Tick(ctx context.Context, products []models.ProductSnapshot) *models.MarketSnapshot {
	tick := s.clock.CurrentTick()
	snap := &models.MarketSnapshot{
		Tick:      tick,
		Timestamp: time.Now().UTC(),
		Updated:   []models.UpdatedProduct{},
	}
	if len(products) == 0 {
		return snap
	}

	for _, idx := range s.selectIndices(tick, len(products)) {
		p := &products[idx]
		if up := s.advance(ctx, tick, idx, p); up != nil {
			snap.Updated = append(snap.Updated, *up)
		}
	}
	return snap
}

// selectIndices picks the working subset for this call. Indices are
// deduplicated so each entity is advanced at most once per invocation.
func (s *Simulator) selectIndices(tick int64, n int) []int {
	r := s.source.Stream(tick, -1)
	frac := s.cfg.UpdatePercentMin + r.Float64()*(s.cfg.UpdatePercentMax-s.cfg.UpdatePercentMin)
	count := int(frac * float64(n))
	if count < 1 {
		count = 1
	}
	if count > n {
		count = n
	}

	if !s.source.Deterministic() {
		return r.Perm(n)[:count]
	}

	seen := make(map[int]struct{}, count)
	indices := make([]int, 0, count)
	for i := 0; i < count; i++ {
		idx := int((tick*7 + int64(i)*13) % int64(n))
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	return indices
}

// advance performs the read-modify-write cycle for one entity.
func (s *Simulator) advance(ctx context.Context, tick int64, ordinal int, p *models.ProductSnapshot) *models.UpdatedProduct {
	state, ok, err := s.store.Get(ctx, p.Platform, p.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("state read failed, reseeding",
				applogger.String("platform", p.Platform),
				applogger.String("product_id", p.ID),
				applogger.Error(err),
			)
		}
		ok = false
	}
	if !ok || state == nil {
		state = seedState(p)
	}

	r := s.source.Stream(tick, ordinal)
	oldPrice := state.Price

	newPrice := Step(r, state.Price, s.cfg.PriceDeltaMin, s.cfg.PriceDeltaMax)
	competitor := Step(r, state.CompetitorAvg, s.cfg.CompetitorDeltaMin, s.cfg.CompetitorDeltaMax)
	demand := StepClamped(r, state.DemandFactor, s.cfg.DemandDeltaMax, s.cfg.DemandMin, s.cfg.DemandMax)

	ema := EMA(state.EMAPrice, newPrice, s.cfg.EMAAlpha)

	cost := p.Original() * s.cfg.CostRatio
	floor := FloorPrice(cost, s.cfg.DesiredMargin)
	ceiling := CeilingPrice(competitor, true, s.cfg.SimCeilingPct)
	price, clamped := Clamp(ema, floor, ceiling)
	if clamped {
		if ema < floor {
			s.metrics.RecordClamp("floor")
		} else {
			s.metrics.RecordClamp("ceiling")
		}
	}

	rec := s.engine.Recommend(ctx, &models.RecommendationInput{
		ProductID:     p.ID,
		Platform:      p.Platform,
		CostPrice:     cost,
		CurrentPrice:  price,
		CompetitorAvg: competitor,
		HasCompetitor: true,
		DemandFactor:  demand,
	})

	if tick > state.LastTick {
		state.LastTick = tick
	}
	state.Price = price
	state.EMAPrice = ema
	state.CompetitorAvg = competitor
	state.DemandFactor = demand

	if err := s.store.Put(ctx, p.Platform, p.ID, state); err != nil && s.logger != nil {
		s.logger.Warn("state write failed",
			applogger.String("platform", p.Platform),
			applogger.String("product_id", p.ID),
			applogger.Error(err),
		)
	}

	return &models.UpdatedProduct{
		ID:       p.ID,
		Platform: p.Platform,
		Name:     p.Name,
		Price:    models.Price(price),
		Currency: p.Currency,
		Pricing: models.PricingMetadata{
			OldPrice:         models.Price(oldPrice),
			NewPrice:         models.Price(price),
			EMAPrice:         models.Price(ema),
			CompetitorAvg:    models.Price(competitor),
			DemandFactor:     models.Demand(demand),
			RecommendedPrice: models.Price(rec.RecommendedPrice),
			Confidence:       rec.Confidence,
			ModelVersion:     rec.ModelVersion,
			Savings:          models.Price(rec.Savings),
			CostEstimate:     models.Price(cost),
			Floor:            models.Price(floor),
			Ceiling:          models.PriceBound(ceiling),
			EMAApplied:       true,
			ClampApplied:     clamped,
			Tick:             tick,
		},
	}
}

// seedState initializes walk state from a catalog snapshot. Unknown
// competitor averages start slightly above the list price; unknown demand
// starts at the neutral midpoint.
func seedState(p *models.ProductSnapshot) *models.EntityState {
	competitor := p.Price * 1.05
	if p.CompetitorAvg != nil && *p.CompetitorAvg > 0 {
		competitor = *p.CompetitorAvg
	}
	demand := 0.5
	if p.DemandFactor != nil {
		demand = *p.DemandFactor
	}
	return &models.EntityState{
		Price:         p.Price,
		EMAPrice:      p.Price,
		CompetitorAvg: competitor,
		DemandFactor:  demand,
	}
}

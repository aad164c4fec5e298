package pricing

import (
	"context"
	"math"

	"PricePulse/internal/domain/models"
	"PricePulse/internal/domain/repository"
	"PricePulse/pkg/config"
	applogger "PricePulse/pkg/logger"
)

// ModelVersionFormula tags recommendations computed by the local formula.
const ModelVersionFormula = "formula-v1"

// Engine computes price recommendations. A remote scorer, when configured,
// takes precedence; the local weighted formula is the always-available
// fallback. Recommend is total: it never returns an error.
type Engine struct {
	cfg     config.PricingConfig
	scorer  repository.Scorer
	metrics repository.Metrics
	logger  *applogger.Logger
}

// EngineOption configures Engine.
type EngineOption func(*Engine)

// WithScorer attaches a remote scoring collaborator.
func WithScorer(s repository.Scorer) EngineOption {
	return func(e *Engine) { e.scorer = s }
}

// WithEngineMetrics attaches a metrics recorder.
func WithEngineMetrics(m repository.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithEngineLogger attaches a logger.
func WithEngineLogger(l *applogger.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a recommendation engine.
func NewEngine(cfg config.PricingConfig, opts ...EngineOption) *Engine {
	e := &Engine{cfg: cfg, metrics: repository.NopMetrics{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend computes a bounded price recommendation for one product.
func (e *Engine) Recommend(ctx context.Context, in *models.RecommendationInput) *models.Recommendation {
	minPrice := FloorPrice(in.CostPrice, e.cfg.DesiredMargin)
	ceiling := CeilingPrice(in.CompetitorAvg, in.HasCompetitor, e.cfg.CeilingPct)

	if e.scorer != nil {
		if rec := e.remote(ctx, in, minPrice, ceiling); rec != nil {
			return rec
		}
	}

	raw := e.formula(in, minPrice)
	price, clamped := Clamp(raw, minPrice, ceiling)
	e.recordClamp(raw, minPrice, ceiling, clamped)

	return &models.Recommendation{
		RecommendedPrice: price,
		Confidence:       e.confidence(in),
		ModelVersion:     ModelVersionFormula,
		Savings:          savings(in.CurrentPrice, price),
	}
}

// remote invokes the scoring collaborator; any failure or unusable
// response yields nil and the caller falls back locally.
func (e *Engine) remote(ctx context.Context, in *models.RecommendationInput, minPrice, ceiling float64) *models.Recommendation {
	req := &models.ScoreRequest{
		ProductID:     in.ProductID,
		Platform:      in.Platform,
		CurrentPrice:  in.CurrentPrice,
		CompetitorAvg: in.CompetitorAvg,
		DemandFactor:  in.DemandFactor,
		MinPrice:      minPrice,
	}

	resp, err := e.scorer.Score(ctx, req)
	if err != nil {
		e.metrics.RecordFallback("remote_error")
		if e.logger != nil {
			e.logger.Warn("remote scorer failed, using formula",
				applogger.String("product_id", in.ProductID),
				applogger.Error(err),
			)
		}
		return nil
	}
	if resp == nil || resp.RecommendedPrice <= 0 || math.IsNaN(resp.RecommendedPrice) {
		e.metrics.RecordFallback("malformed_response")
		return nil
	}

	price, clamped := Clamp(resp.RecommendedPrice, minPrice, ceiling)
	e.recordClamp(resp.RecommendedPrice, minPrice, ceiling, clamped)

	conf := resp.Confidence
	if conf > 1 {
		conf /= 100
	}
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}

	version := resp.ModelVersion
	if version == "" {
		version = "remote"
	}

	return &models.Recommendation{
		RecommendedPrice: price,
		Confidence:       conf,
		ModelVersion:     version,
		Savings:          savings(in.CurrentPrice, price),
	}
}

// formula is the local weighted blend of competitor, floor and demand terms.
func (e *Engine) formula(in *models.RecommendationInput, minPrice float64) float64 {
	if !in.HasCompetitor || in.CompetitorAvg <= 0 {
		return math.Max(in.CurrentPrice, minPrice)
	}
	return e.cfg.Alpha*in.CompetitorAvg +
		e.cfg.Beta*minPrice +
		e.cfg.Gamma*in.CompetitorAvg*in.DemandFactor
}

// confidence grows with input quality: known competitor average and a
// non-empty signal sample each add a bonus, capped at 1.
func (e *Engine) confidence(in *models.RecommendationInput) float64 {
	conf := 0.5
	if in.HasCompetitor && in.CompetitorAvg > 0 {
		conf += 0.2
	}
	if in.SampleSize > 0 {
		conf += 0.15
	}
	return math.Min(conf, 1)
}

func (e *Engine) recordClamp(raw, floor, ceiling float64, clamped bool) {
	if !clamped {
		return
	}
	if raw < floor {
		e.metrics.RecordClamp("floor")
	} else if raw > ceiling {
		e.metrics.RecordClamp("ceiling")
	}
}

func savings(currentPrice, recommended float64) float64 {
	s := currentPrice - recommended
	if s < 0 {
		return 0
	}
	return s
}

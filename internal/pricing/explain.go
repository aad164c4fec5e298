package pricing

import (
	"fmt"
	"math"

	"PricePulse/internal/domain/models"
)

// Explain reproduces the formula path for one product and returns the
// per-term breakdown with a human-readable rationale. The remote scorer is
// deliberately not consulted so the explanation always reflects the
// deterministic local computation.
func (e *Engine) Explain(in *models.RecommendationInput) *models.Explanation {
	minPrice := FloorPrice(in.CostPrice, e.cfg.DesiredMargin)
	ceiling := CeilingPrice(in.CompetitorAvg, in.HasCompetitor, e.cfg.CeilingPct)

	ex := &models.Explanation{
		ProductID:     in.ProductID,
		Platform:      in.Platform,
		CurrentPrice:  in.CurrentPrice,
		CompetitorAvg: in.CompetitorAvg,
		DemandFactor:  in.DemandFactor,
		CostPrice:     in.CostPrice,
		FloorPrice:    minPrice,
		ModelVersion:  ModelVersionFormula,
		Confidence:    e.confidence(in),
	}
	if !math.IsInf(ceiling, 1) {
		ex.CeilingPrice = &ceiling
	}

	if in.HasCompetitor && in.CompetitorAvg > 0 {
		ex.CompetitorTerm = e.cfg.Alpha * in.CompetitorAvg
		ex.FloorTerm = e.cfg.Beta * minPrice
		ex.DemandTerm = e.cfg.Gamma * in.CompetitorAvg * in.DemandFactor
		ex.RawPrice = ex.CompetitorTerm + ex.FloorTerm + ex.DemandTerm
	} else {
		ex.RawPrice = math.Max(in.CurrentPrice, minPrice)
	}

	ex.RecommendedPrice, ex.Clamped = Clamp(ex.RawPrice, minPrice, ceiling)
	ex.Rationale = e.rationale(ex, ceiling)
	return ex
}

func (e *Engine) rationale(ex *models.Explanation, ceiling float64) string {
	switch {
	case ex.Clamped && ex.RawPrice < ex.FloorPrice:
		return fmt.Sprintf("raised to the floor %.2f to protect a %.0f%% margin over cost %.2f",
			ex.FloorPrice, NormalizeMargin(e.cfg.DesiredMargin)*100, ex.CostPrice)
	case ex.Clamped && ex.RawPrice > ceiling:
		return fmt.Sprintf("capped at %.2f to stay within %.0f%% of the competitor average %.2f",
			ceiling, e.cfg.CeilingPct*100, ex.CompetitorAvg)
	case ex.CompetitorAvg > 0:
		return fmt.Sprintf("weighted blend of competitor average %.2f (%.0f%%), floor %.2f (%.0f%%) and demand %.2f",
			ex.CompetitorAvg, e.cfg.Alpha*100, ex.FloorPrice, e.cfg.Beta*100, ex.DemandFactor)
	default:
		return "no competitor data; holding the higher of current price and margin floor"
	}
}

package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PricePulse/internal/domain/models"
	"PricePulse/pkg/config"
)

type stubScorer struct {
	resp *models.ScoreResponse
	err  error
}

func (s *stubScorer) Score(context.Context, *models.ScoreRequest) (*models.ScoreResponse, error) {
	return s.resp, s.err
}

func (s *stubScorer) Health(context.Context) error { return s.err }

func testPricingConfig() config.PricingConfig {
	return config.Default().Pricing
}

func TestRecommendWeightedFormula(t *testing.T) {
	// competitor 200, floor 90, demand 0.5:
	// 0.65*200 + 0.35*90 + 0.05*200*0.5 = 166.5, below ceiling 214
	cfg := testPricingConfig()
	engine := NewEngine(cfg)

	rec := engine.Recommend(context.Background(), &models.RecommendationInput{
		CostPrice:     90 / 1.3,
		CurrentPrice:  180,
		CompetitorAvg: 200,
		HasCompetitor: true,
		DemandFactor:  0.5,
	})

	assert.InDelta(t, 166.5, rec.RecommendedPrice, 1e-6)
	assert.Equal(t, ModelVersionFormula, rec.ModelVersion)
	assert.InDelta(t, 13.5, rec.Savings, 1e-6)
}

func TestRecommendBounds(t *testing.T) {
	cfg := testPricingConfig()
	engine := NewEngine(cfg)

	inputs := []*models.RecommendationInput{
		{CostPrice: 100, CurrentPrice: 50, CompetitorAvg: 80, HasCompetitor: true, DemandFactor: 0.9},
		{CostPrice: 10, CurrentPrice: 500, CompetitorAvg: 20, HasCompetitor: true, DemandFactor: 0.1},
		{CostPrice: 60, CurrentPrice: 100, CompetitorAvg: 120, HasCompetitor: true, DemandFactor: 0.5},
	}
	for _, in := range inputs {
		rec := engine.Recommend(context.Background(), in)
		floor := FloorPrice(in.CostPrice, cfg.DesiredMargin)
		ceiling := in.CompetitorAvg * (1 + cfg.CeilingPct)
		assert.GreaterOrEqual(t, rec.RecommendedPrice, floor-1e-9)
		if ceiling > floor {
			assert.LessOrEqual(t, rec.RecommendedPrice, ceiling+1e-9)
		}
	}
}

func TestRecommendNoCompetitor(t *testing.T) {
	engine := NewEngine(testPricingConfig())

	rec := engine.Recommend(context.Background(), &models.RecommendationInput{
		CostPrice:    60,
		CurrentPrice: 100,
	})

	// floor = 60*1.3 = 78; current price wins
	assert.InDelta(t, 100, rec.RecommendedPrice, 1e-9)
	assert.InDelta(t, 0.5, rec.Confidence, 1e-9)
}

func TestRecommendPercentageMargin(t *testing.T) {
	cfg := testPricingConfig()
	cfg.DesiredMargin = 30 // percentage notation

	engine := NewEngine(cfg)
	rec := engine.Recommend(context.Background(), &models.RecommendationInput{
		CostPrice:    60,
		CurrentPrice: 70,
	})

	// floor 60*1.3 = 78 dominates the lower current price
	assert.InDelta(t, 78, rec.RecommendedPrice, 1e-9)
}

func TestRecommendRemoteOverride(t *testing.T) {
	engine := NewEngine(testPricingConfig(), WithScorer(&stubScorer{
		resp: &models.ScoreResponse{RecommendedPrice: 150, Confidence: 85, ModelVersion: "ml-v2"},
	}))

	rec := engine.Recommend(context.Background(), &models.RecommendationInput{
		CostPrice:     60,
		CurrentPrice:  160,
		CompetitorAvg: 200,
		HasCompetitor: true,
		DemandFactor:  0.5,
	})

	assert.InDelta(t, 150, rec.RecommendedPrice, 1e-9)
	assert.InDelta(t, 0.85, rec.Confidence, 1e-9) // percent-form confidence normalized
	assert.Equal(t, "ml-v2", rec.ModelVersion)
}

func TestRecommendRemoteClamped(t *testing.T) {
	engine := NewEngine(testPricingConfig(), WithScorer(&stubScorer{
		resp: &models.ScoreResponse{RecommendedPrice: 500, Confidence: 0.9, ModelVersion: "ml-v2"},
	}))

	rec := engine.Recommend(context.Background(), &models.RecommendationInput{
		CostPrice:     60,
		CurrentPrice:  160,
		CompetitorAvg: 200,
		HasCompetitor: true,
	})

	// remote output bounded by the competitor ceiling 200*1.07
	assert.InDelta(t, 214, rec.RecommendedPrice, 1e-9)
}

func TestRecommendRemoteFailureFallsBack(t *testing.T) {
	engine := NewEngine(testPricingConfig(), WithScorer(&stubScorer{
		err: errors.New("connection timed out"),
	}))

	rec := engine.Recommend(context.Background(), &models.RecommendationInput{
		CostPrice:     90 / 1.3,
		CurrentPrice:  180,
		CompetitorAvg: 200,
		HasCompetitor: true,
		DemandFactor:  0.5,
	})

	require.NotNil(t, rec)
	assert.Equal(t, ModelVersionFormula, rec.ModelVersion)
	assert.InDelta(t, 166.5, rec.RecommendedPrice, 1e-6)
}

func TestRecommendMalformedRemoteFallsBack(t *testing.T) {
	engine := NewEngine(testPricingConfig(), WithScorer(&stubScorer{
		resp: &models.ScoreResponse{RecommendedPrice: 0},
	}))

	rec := engine.Recommend(context.Background(), &models.RecommendationInput{
		CostPrice:     60,
		CurrentPrice:  100,
		CompetitorAvg: 120,
		HasCompetitor: true,
		DemandFactor:  0.5,
	})

	assert.Equal(t, ModelVersionFormula, rec.ModelVersion)
}

func TestConfidenceGrowsWithInputQuality(t *testing.T) {
	engine := NewEngine(testPricingConfig())
	ctx := context.Background()

	base := engine.Recommend(ctx, &models.RecommendationInput{CostPrice: 60, CurrentPrice: 100})
	withComp := engine.Recommend(ctx, &models.RecommendationInput{
		CostPrice: 60, CurrentPrice: 100, CompetitorAvg: 120, HasCompetitor: true,
	})
	withSample := engine.Recommend(ctx, &models.RecommendationInput{
		CostPrice: 60, CurrentPrice: 100, CompetitorAvg: 120, HasCompetitor: true, SampleSize: 40,
	})

	assert.InDelta(t, 0.5, base.Confidence, 1e-9)
	assert.InDelta(t, 0.7, withComp.Confidence, 1e-9)
	assert.InDelta(t, 0.85, withSample.Confidence, 1e-9)
	assert.LessOrEqual(t, withSample.Confidence, 1.0)
}

func TestExplainBreakdown(t *testing.T) {
	engine := NewEngine(testPricingConfig())

	ex := engine.Explain(&models.RecommendationInput{
		ProductID:     "p1",
		Platform:      "shopee",
		CostPrice:     90 / 1.3,
		CurrentPrice:  180,
		CompetitorAvg: 200,
		HasCompetitor: true,
		DemandFactor:  0.5,
	})

	assert.InDelta(t, 130, ex.CompetitorTerm, 1e-6)
	assert.InDelta(t, 31.5, ex.FloorTerm, 1e-6)
	assert.InDelta(t, 5, ex.DemandTerm, 1e-6)
	assert.InDelta(t, 166.5, ex.RawPrice, 1e-6)
	assert.InDelta(t, 166.5, ex.RecommendedPrice, 1e-6)
	assert.False(t, ex.Clamped)
	assert.NotEmpty(t, ex.Rationale)
	require.NotNil(t, ex.CeilingPrice)
	assert.InDelta(t, 214, *ex.CeilingPrice, 1e-6)
}

func TestExplainWithoutCompetitorOmitsCeiling(t *testing.T) {
	engine := NewEngine(testPricingConfig())

	ex := engine.Explain(&models.RecommendationInput{
		ProductID:    "p1",
		Platform:     "shopee",
		CostPrice:    90 / 1.3,
		CurrentPrice: 80,
	})

	assert.Nil(t, ex.CeilingPrice)
	assert.InDelta(t, 90, ex.RecommendedPrice, 1e-6)
	assert.NotEmpty(t, ex.Rationale)

	_, err := json.Marshal(ex)
	require.NoError(t, err)
}

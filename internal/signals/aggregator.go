package signals

import (
	"context"
	"strings"
	"time"

	"PricePulse/internal/domain/models"
	"PricePulse/internal/domain/repository"
	"PricePulse/pkg/config"
	applogger "PricePulse/pkg/logger"
)

// DefaultDemand is used when no sales sample exists for a query.
const DefaultDemand = 0.5

// Aggregator collects listings from every configured marketplace client
// and derives a consolidated market view. Per-platform failures are
// recorded and skipped, never aborting the aggregate.
type Aggregator struct {
	cfg     config.SignalsConfig
	clients []repository.SearchClient
	cache   repository.SignalCache
	sink    repository.SnapshotSink
	metrics repository.Metrics
	logger  *applogger.Logger
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithSink attaches a durable export for computed aggregates.
func WithSink(sink repository.SnapshotSink) AggregatorOption {
	return func(a *Aggregator) { a.sink = sink }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m repository.Metrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l *applogger.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates a market signal aggregator.
func NewAggregator(cfg config.SignalsConfig, clients []repository.SearchClient, cache repository.SignalCache, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		cfg:     cfg,
		clients: clients,
		cache:   cache,
		metrics: repository.NopMetrics{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Signals returns the consolidated market view for a query, served from
// cache when fresh. It never returns an error for platform failures; only
// cache plumbing can fail, and even then a computed result is returned.
func (a *Aggregator) Signals(ctx context.Context, query string) (*models.MarketStats, error) {
	normalized := Normalize(query)

	if a.cache != nil {
		if cached, ok, err := a.cache.Get(ctx, normalized); err == nil && ok {
			return cached, nil
		} else if err != nil && a.logger != nil {
			a.logger.Warn("signal cache read failed", applogger.Error(err))
		}
	}

	stats := a.collect(ctx, query)

	if a.cache != nil {
		if err := a.cache.Put(ctx, normalized, stats); err != nil && a.logger != nil {
			a.logger.Warn("signal cache write failed", applogger.Error(err))
		}
	}
	if a.sink != nil && stats.TrimmedMean > 0 {
		if err := a.sink.EmitStats(ctx, stats); err != nil && a.logger != nil {
			a.logger.Warn("stats emit failed", applogger.Error(err))
		}
	}
	return stats, nil
}

func (a *Aggregator) collect(ctx context.Context, query string) *models.MarketStats {
	stats := &models.MarketStats{
		Query:     query,
		Platforms: make(map[string]models.PlatformStats, len(a.clients)),
		FetchedAt: time.Now().UTC(),
	}

	var prices, sales []float64
	for _, client := range a.clients {
		platform := client.Platform()
		listings, err := client.Search(ctx, query, a.cfg.PageSize)
		if err != nil {
			a.metrics.RecordSignalFetch(platform, false)
			if stats.Errors == nil {
				stats.Errors = make(map[string]string)
			}
			stats.Errors[platform] = err.Error()
			if a.logger != nil {
				a.logger.Warn("platform search failed",
					applogger.String("platform", platform),
					applogger.Error(err),
				)
			}
			continue
		}
		a.metrics.RecordSignalFetch(platform, true)

		ps := models.PlatformStats{Platform: platform}
		for _, l := range listings {
			if l.Price <= 0 {
				continue
			}
			prices = append(prices, l.Price)
			ps.SampleSize++
			if ps.MinPrice == 0 || l.Price < ps.MinPrice {
				ps.MinPrice = l.Price
			}
			if l.Price > ps.MaxPrice {
				ps.MaxPrice = l.Price
			}
			ps.AvgPrice += l.Price
			if l.Sold > 0 {
				sales = append(sales, float64(l.Sold))
				ps.TotalSales += l.Sold
			}
		}
		if ps.SampleSize > 0 {
			ps.AvgPrice /= float64(ps.SampleSize)
		}
		stats.Platforms[platform] = ps
		stats.TotalSales += ps.TotalSales
	}

	stats.SampleSize = len(prices)
	if len(prices) > 0 {
		stats.MinPrice = prices[0]
		for _, p := range prices {
			if p < stats.MinPrice {
				stats.MinPrice = p
			}
			if p > stats.MaxPrice {
				stats.MaxPrice = p
			}
			stats.AvgPrice += p
		}
		stats.AvgPrice /= float64(len(prices))
	}
	if mean, ok := TrimmedMean(prices); ok {
		stats.TrimmedMean = mean
	}

	if meanSales, ok := TrimmedMean(sales); ok {
		stats.DemandScore = SalesToDemand(meanSales, a.cfg.DemandSalesScale)
	} else {
		stats.DemandScore = DefaultDemand
	}
	return stats
}

// Normalize canonicalizes a query for cache keying.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

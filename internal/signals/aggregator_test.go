package signals

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PricePulse/internal/domain/models"
	"PricePulse/internal/domain/repository"
	"PricePulse/pkg/config"
)

type stubSearch struct {
	platform string
	listings []models.Listing
	err      error
	calls    int
}

func (s *stubSearch) Platform() string { return s.platform }

func (s *stubSearch) Search(context.Context, string, int) ([]models.Listing, error) {
	s.calls++
	return s.listings, s.err
}

type stubSignalCache struct {
	stored map[string]*models.MarketStats
}

func newStubSignalCache() *stubSignalCache {
	return &stubSignalCache{stored: make(map[string]*models.MarketStats)}
}

func (c *stubSignalCache) Get(_ context.Context, query string) (*models.MarketStats, bool, error) {
	st, ok := c.stored[query]
	return st, ok, nil
}

func (c *stubSignalCache) Put(_ context.Context, query string, stats *models.MarketStats) error {
	c.stored[query] = stats
	return nil
}

func testSignalsConfig() config.SignalsConfig {
	return config.Default().Signals
}

func TestSignalsAggregatesAcrossPlatforms(t *testing.T) {
	clients := []*stubSearch{
		{platform: "shopee", listings: []models.Listing{
			{Price: 100, Sold: 500}, {Price: 110, Sold: 300},
		}},
		{platform: "lazada", listings: []models.Listing{
			{Price: 120, Sold: 200},
		}},
	}
	agg := NewAggregator(testSignalsConfig(), searchClients(clients), newStubSignalCache())

	stats, err := agg.Signals(context.Background(), "usb hub")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.SampleSize)
	assert.InDelta(t, 110, stats.AvgPrice, 1e-9)
	assert.InDelta(t, 100, stats.MinPrice, 1e-9)
	assert.InDelta(t, 120, stats.MaxPrice, 1e-9)
	assert.Equal(t, int64(1000), stats.TotalSales)
	assert.Len(t, stats.Platforms, 2)
	assert.Empty(t, stats.Errors)
}

func TestSignalsSkipsFailedPlatform(t *testing.T) {
	clients := []*stubSearch{
		{platform: "shopee", err: errors.New("upstream 503")},
		{platform: "lazada", listings: []models.Listing{{Price: 120, Sold: 200}}},
	}
	agg := NewAggregator(testSignalsConfig(), searchClients(clients), newStubSignalCache())

	stats, err := agg.Signals(context.Background(), "usb hub")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SampleSize)
	assert.Contains(t, stats.Errors, "shopee")
	assert.NotContains(t, stats.Errors, "lazada")
}

func TestSignalsServedFromCache(t *testing.T) {
	client := &stubSearch{platform: "shopee", listings: []models.Listing{{Price: 100}}}
	agg := NewAggregator(testSignalsConfig(), searchClients([]*stubSearch{client}), newStubSignalCache())

	_, err := agg.Signals(context.Background(), "USB Hub")
	require.NoError(t, err)
	_, err = agg.Signals(context.Background(), "  usb hub ")
	require.NoError(t, err)

	// second call normalizes to the same key and skips the search
	assert.Equal(t, 1, client.calls)
}

func TestSignalsDefaultDemandWithoutSales(t *testing.T) {
	client := &stubSearch{platform: "shopee", listings: []models.Listing{{Price: 100}, {Price: 110}}}
	agg := NewAggregator(testSignalsConfig(), searchClients([]*stubSearch{client}), newStubSignalCache())

	stats, err := agg.Signals(context.Background(), "usb hub")
	require.NoError(t, err)
	assert.InDelta(t, DefaultDemand, stats.DemandScore, 1e-9)
}

func TestSignalsIgnoresNonPositivePrices(t *testing.T) {
	client := &stubSearch{platform: "shopee", listings: []models.Listing{
		{Price: 0}, {Price: -5}, {Price: 100},
	}}
	agg := NewAggregator(testSignalsConfig(), searchClients([]*stubSearch{client}), newStubSignalCache())

	stats, err := agg.Signals(context.Background(), "usb hub")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SampleSize)
	assert.InDelta(t, 100, stats.TrimmedMean, 1e-9)
}

func searchClients(stubs []*stubSearch) []repository.SearchClient {
	clients := make([]repository.SearchClient, len(stubs))
	for i, s := range stubs {
		clients[i] = s
	}
	return clients
}

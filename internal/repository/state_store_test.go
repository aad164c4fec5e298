package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PricePulse/internal/domain/models"
	"PricePulse/pkg/cache"
)

func newTestCache(t *testing.T) cache.Service {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })
	return c
}

func TestStateStoreRoundTrip(t *testing.T) {
	store := NewCacheStateStore(newTestCache(t), time.Minute)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "shopee", "p1")
	require.NoError(t, err)
	assert.False(t, found)

	want := &models.EntityState{
		Price: 101.5, EMAPrice: 100.9, CompetitorAvg: 108.2, DemandFactor: 0.55, LastTick: 42,
	}
	require.NoError(t, store.Put(ctx, "shopee", "p1", want))

	got, found, err := store.Get(ctx, "shopee", "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestStateStoreKeysByPlatform(t *testing.T) {
	store := NewCacheStateStore(newTestCache(t), time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "shopee", "p1", &models.EntityState{Price: 100}))
	require.NoError(t, store.Put(ctx, "lazada", "p1", &models.EntityState{Price: 200}))

	a, _, err := store.Get(ctx, "shopee", "p1")
	require.NoError(t, err)
	b, _, err := store.Get(ctx, "lazada", "p1")
	require.NoError(t, err)
	assert.NotEqual(t, a.Price, b.Price)
}

func TestSignalCacheRoundTrip(t *testing.T) {
	sc := NewCacheSignalCache(newTestCache(t), time.Minute)
	ctx := context.Background()

	stats := &models.MarketStats{Query: "usb hub", TrimmedMean: 104.5, SampleSize: 12}
	require.NoError(t, sc.Put(ctx, "usb hub", stats))

	// key is case-insensitive
	got, found, err := sc.Get(ctx, "USB HUB")
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 104.5, got.TrimmedMean, 1e-9)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PricePulse/internal/domain/models"
	"PricePulse/pkg/cache"
)

// CacheSignalCache memoizes market aggregates per query. Unlike the state
// store this is a pure memoization layer: entries are immutable for their
// lifetime and keyed by a case-insensitive hash of the query text.
type CacheSignalCache struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheSignalCache creates a signal cache over the given backend.
func NewCacheSignalCache(c cache.Service, ttl time.Duration) *CacheSignalCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CacheSignalCache{cache: c, ttl: ttl}
}

func (s *CacheSignalCache) Get(ctx context.Context, query string) (*models.MarketStats, bool, error) {
	var stats models.MarketStats
	err := s.cache.Get(ctx, signalKey(query), &stats)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("signal get: %w", err)
	}
	return &stats, true, nil
}

func (s *CacheSignalCache) Put(ctx context.Context, query string, stats *models.MarketStats) error {
	if err := s.cache.Set(ctx, signalKey(query), stats, s.ttl); err != nil {
		return fmt.Errorf("signal put: %w", err)
	}
	return nil
}

func signalKey(query string) string {
	return cache.GenerateKey("signals:query", cache.HashKey(query))
}

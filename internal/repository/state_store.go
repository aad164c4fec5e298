package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PricePulse/internal/domain/models"
	"PricePulse/pkg/cache"
)

// CacheStateStore keeps per-entity walk state in a TTL cache keyed by
// (platform, product). An expired entry simply re-seeds from the catalog
// snapshot on the next tick, so the TTL doubles as idle cleanup.
type CacheStateStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheStateStore creates a state store over the given cache backend.
func NewCacheStateStore(c cache.Service, ttl time.Duration) *CacheStateStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CacheStateStore{cache: c, ttl: ttl}
}

// Get loads the walk state for one entity. A cache miss is not an error.
func (s *CacheStateStore) Get(ctx context.Context, platform, id string) (*models.EntityState, bool, error) {
	var state models.EntityState
	err := s.cache.Get(ctx, stateKey(platform, id), &state)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("state get: %w", err)
	}
	return &state, true, nil
}

// Put stores the walk state with the configured idle TTL.
func (s *CacheStateStore) Put(ctx context.Context, platform, id string, state *models.EntityState) error {
	if err := s.cache.Set(ctx, stateKey(platform, id), state, s.ttl); err != nil {
		return fmt.Errorf("state put: %w", err)
	}
	return nil
}

func stateKey(platform, id string) string {
	return cache.GenerateKey("pricing:state", platform+":"+id)
}

package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m *memoryItem) expired() bool {
	return time.Now().After(m.expireAt)
}

// MemoryCache implements Service using in-memory storage with LRU eviction.
// Values are stored as JSON so Get can unmarshal into any destination, the
// same contract the Redis backend offers.
type MemoryCache struct {
	data          map[string]*memoryItem
	access        map[string]time.Time
	mutex         sync.RWMutex
	maxSize       int
	cleanupTicker *time.Ticker
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         10000,
		CleanupInterval: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data:          make(map[string]*memoryItem),
		access:        make(map[string]time.Time),
		maxSize:       cfg.MaxSize,
		cleanupTicker: time.NewTicker(cfg.CleanupInterval),
	}

	go mc.cleanupExpired()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return err
		}
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if len(mc.data) >= mc.maxSize {
		mc.evictLRU()
	}

	expireAt := time.Now().Add(expiration)
	if expiration <= 0 {
		expireAt = time.Now().Add(7 * 24 * time.Hour) // default 7 days
	}

	mc.data[key] = &memoryItem{data: data, expireAt: expireAt}
	mc.access[key] = time.Now()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mutex.Lock()
	item, exists := mc.data[key]
	if !exists || item.expired() {
		if exists {
			delete(mc.data, key)
			delete(mc.access, key)
		}
		mc.mutex.Unlock()
		return ErrCacheMiss
	}
	mc.access[key] = time.Now()
	data := item.data
	mc.mutex.Unlock()

	if strPtr, ok := dest.(*string); ok {
		*strPtr = string(data)
		return nil
	}
	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for _, key := range keys {
		delete(mc.data, key)
		delete(mc.access, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	for _, key := range keys {
		if item, ok := mc.data[key]; ok && !item.expired() {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if item, ok := mc.data[key]; ok {
		item.expireAt = time.Now().Add(expiration)
		return true, nil
	}
	return false, nil
}

func (mc *MemoryCache) evictLRU() {
	if len(mc.data) == 0 {
		return
	}

	var oldestKey string
	oldestTime := time.Now()

	for key, accessTime := range mc.access {
		if accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(mc.data, oldestKey)
		delete(mc.access, oldestKey)
	}
}

func (mc *MemoryCache) cleanupExpired() {
	for range mc.cleanupTicker.C {
		mc.mutex.Lock()
		now := time.Now()
		for key, item := range mc.data {
			if now.After(item.expireAt) {
				delete(mc.data, key)
				delete(mc.access, key)
			}
		}
		mc.mutex.Unlock()
	}
}

// Close stops the cleanup ticker.
func (mc *MemoryCache) Close() error {
	if mc.cleanupTicker != nil {
		mc.cleanupTicker.Stop()
	}
	return nil
}

package cache

import (
	"sync"
	"time"
)

type item struct {
	value    interface{}
	expireAt time.Time
}

func (i *item) expired() bool {
	return time.Now().After(i.expireAt)
}

// MemoryCache is an in-memory TTL cache with LRU eviction at capacity.
// Expired entries are dropped lazily on read and by a background sweep.
type MemoryCache struct {
	mu      sync.Mutex
	data    map[string]*item
	access  map[string]time.Time
	maxSize int
	ticker  *time.Ticker
	done    chan struct{}
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...Option) *MemoryCache {
	cfg := &Config{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data:    make(map[string]*item),
		access:  make(map[string]time.Time),
		maxSize: cfg.MaxSize,
		ticker:  time.NewTicker(cfg.CleanupInterval),
		done:    make(chan struct{}),
	}

	go mc.cleanupLoop()
	return mc
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (mc *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, ok := mc.data[key]; !ok && len(mc.data) >= mc.maxSize {
		mc.evictLRU()
	}

	mc.data[key] = &item{value: value, expireAt: time.Now().Add(ttl)}
	mc.access[key] = time.Now()
}

// Get returns the value under key, or false when absent or expired.
func (mc *MemoryCache) Get(key string) (interface{}, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	it, ok := mc.data[key]
	if !ok {
		return nil, false
	}
	if it.expired() {
		delete(mc.data, key)
		delete(mc.access, key)
		return nil, false
	}

	mc.access[key] = time.Now()
	return it.value, true
}

// Delete removes keys from the cache.
func (mc *MemoryCache) Delete(keys ...string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		delete(mc.data, key)
		delete(mc.access, key)
	}
}

// Len returns the number of entries, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.data)
}

// evictLRU drops the least recently used entry. Caller holds mc.mu.
func (mc *MemoryCache) evictLRU() {
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

func (mc *MemoryCache) cleanupLoop() {
	for {
		select {
		case <-mc.done:
			return
		case <-mc.ticker.C:
			mc.mu.Lock()
			for key, it := range mc.data {
				if it.expired() {
					delete(mc.data, key)
					delete(mc.access, key)
				}
			}
			mc.mu.Unlock()
		}
	}
}

// Close stops the background sweep.
func (mc *MemoryCache) Close() error {
	mc.ticker.Stop()
	close(mc.done)
	return nil
}

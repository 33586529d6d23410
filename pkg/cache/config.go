package cache

import "time"

// Option configures the memory cache.
type Option func(*Config)

// Config holds memory cache configuration.
type Config struct {
	MaxSize         int
	CleanupInterval time.Duration
}

// WithMaxSize sets the entry cap before LRU eviction kicks in.
func WithMaxSize(size int) Option {
	return func(c *Config) {
		c.MaxSize = size
	}
}

// WithCleanupInterval sets the expired-entry sweep interval.
func WithCleanupInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.CleanupInterval = interval
	}
}

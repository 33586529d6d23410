package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter is a per-key token bucket. Buckets are created on first use and
// pruned once idle longer than the prune window, so one-off callers do not
// accumulate forever.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*bucket
	pruneIdle time.Duration
	lastPrune time.Time
}

// New creates a limiter that drops buckets idle for longer than an hour.
func New() *Limiter {
	return &Limiter{m: make(map[string]*bucket), pruneIdle: time.Hour, lastPrune: time.Now()}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (l *Limiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < l.pruneIdle {
		return
	}
	for key, b := range l.m {
		if now.Sub(b.last) > l.pruneIdle {
			delete(l.m, key)
		}
	}
	l.lastPrune = now
}

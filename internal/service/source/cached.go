package source

import (
	"context"
	"time"

	"TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
	"TrendPulse/pkg/cache"
)

// CachedSource memoizes live fetches of the wrapped source for a short
// window, so bursts of analyses on the same market do not hammer the
// upstream API. Mock results are never cached: a source that recovers
// should serve live data on the next fetch.
type CachedSource struct {
	inner domainrepo.MarketSource
	cache *cache.MemoryCache
	ttl   time.Duration
}

// WithCache wraps a source with a fetch memoization layer.
func WithCache(inner domainrepo.MarketSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: cache.NewMemoryCache(
			cache.WithMaxSize(256),
			cache.WithCleanupInterval(ttl),
		),
		ttl: ttl,
	}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

func (s *CachedSource) Fetch(ctx context.Context, market string, region models.Region, tf models.Timeframe) models.SourceData {
	key := market + "|" + string(region) + "|" + string(tf)

	if v, ok := s.cache.Get(key); ok {
		if data, ok := v.(models.SourceData); ok {
			return data
		}
	}

	data := s.inner.Fetch(ctx, market, region, tf)
	if !data.Mock {
		s.cache.Set(key, data, s.ttl)
	}
	return data
}

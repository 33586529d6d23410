package source

import (
	"context"
	"testing"
	"time"

	"TrendPulse/internal/domain/models"
)

type countingSource struct {
	name  string
	mock  bool
	calls int
}

func (c *countingSource) Name() string { return c.name }

func (c *countingSource) Fetch(ctx context.Context, market string, region models.Region, tf models.Timeframe) models.SourceData {
	c.calls++
	return models.SourceData{
		Source:    c.name,
		Mock:      c.mock,
		FetchedAt: time.Now(),
		Numbers:   map[string]float64{"calls": float64(c.calls)},
	}
}

func TestCachedSourceMemoizesLiveFetches(t *testing.T) {
	inner := &countingSource{name: "live"}
	s := WithCache(inner, time.Minute)

	first := s.Fetch(context.Background(), "technology", models.RegionUS, models.TFWeekly)
	second := s.Fetch(context.Background(), "technology", models.RegionUS, models.TFWeekly)

	if inner.calls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", inner.calls)
	}
	if first.Numbers["calls"] != second.Numbers["calls"] {
		t.Fatalf("cached fetch must return the memoized data")
	}
}

func TestCachedSourceKeysOnRequestShape(t *testing.T) {
	inner := &countingSource{name: "live"}
	s := WithCache(inner, time.Minute)

	s.Fetch(context.Background(), "technology", models.RegionUS, models.TFWeekly)
	s.Fetch(context.Background(), "technology", models.RegionEU, models.TFWeekly)
	s.Fetch(context.Background(), "technology", models.RegionUS, models.TFMonthly)

	if inner.calls != 3 {
		t.Fatalf("distinct request shapes must each hit upstream, got %d calls", inner.calls)
	}
}

func TestCachedSourceSkipsMockResults(t *testing.T) {
	inner := &countingSource{name: "degraded", mock: true}
	s := WithCache(inner, time.Minute)

	s.Fetch(context.Background(), "energy", models.RegionUS, models.TFDaily)
	s.Fetch(context.Background(), "energy", models.RegionUS, models.TFDaily)

	if inner.calls != 2 {
		t.Fatalf("mock results must not be cached, got %d calls", inner.calls)
	}
}

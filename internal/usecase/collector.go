package usecase

import (
	"context"
	"sync"
	"time"

	"TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
	applogger "TrendPulse/pkg/logger"
)

// DataCollector fans out to every configured market source concurrently and
// merges the results into one dataset. Collect never fails: sources resolve
// their own errors to mock data, so the worst case is a fully mock dataset.
type DataCollector struct {
	sources []domainrepo.MarketSource
	timeout time.Duration
	metrics domainrepo.Metrics
	l       *applogger.Logger
}

// NewDataCollector creates the collector. timeout bounds each source call
// independently.
func NewDataCollector(sources []domainrepo.MarketSource, timeout time.Duration, metrics domainrepo.Metrics, l *applogger.Logger) *DataCollector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DataCollector{sources: sources, timeout: timeout, metrics: metrics, l: l}
}

// Collect runs all sources concurrently and returns the merged dataset.
func (c *DataCollector) Collect(ctx context.Context, req models.AnalysisRequest) *models.Dataset {
	start := time.Now()
	dataset := &models.Dataset{
		Market:    req.Market,
		Region:    req.Region,
		Timeframe: req.Timeframe,
		Sources:   make(map[string]models.SourceData, len(c.sources)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, src := range c.sources {
		wg.Add(1)
		go func(src domainrepo.MarketSource) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			data := src.Fetch(fetchCtx, req.Market, req.Region, req.Timeframe)
			if data.Mock && c.metrics != nil {
				c.metrics.RecordSourceFallback(src.Name())
			}

			mu.Lock()
			dataset.Sources[src.Name()] = data
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	c.l.Info("data collection finished",
		applogger.String("market", req.Market),
		applogger.Int("sources", len(dataset.Sources)),
		applogger.Bool("all_mock", dataset.AllMock()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return dataset
}

package usecase

import (
	"context"
	"testing"
	"time"

	"TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
	"TrendPulse/internal/repository"
	"TrendPulse/internal/service/source"
	"TrendPulse/internal/services/analytics"
	"TrendPulse/pkg/logger"
	"TrendPulse/pkg/queue"
)

type fakeSource struct {
	name string
	mock bool
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, market string, region models.Region, tf models.Timeframe) models.SourceData {
	return models.SourceData{
		Source:    f.name,
		Mock:      f.mock,
		FetchedAt: time.Now(),
		Numbers:   map[string]float64{"price_change_percent": 5, "volatility": 8},
		Labels:    map[string]string{"price_trend": "up"},
	}
}

type panicAnalyzer struct{}

func (panicAnalyzer) Analyze(dataset *models.Dataset) []models.TrendFinding {
	panic("analyzer exploded")
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newOrchestrator(t *testing.T, sources []domainrepo.MarketSource, started bool) (*AnalysisOrchestrator, *queue.WorkerPool) {
	t.Helper()
	l := testLogger(t)
	store := repository.NewMemoryJobStore(time.Hour, 100)
	collector := NewDataCollector(sources, time.Second, nil, l)
	analyzer := analytics.NewThresholdAnalyzer()
	summarizer := analytics.NewMarketSummarizer(nil, 500, l)
	pool := queue.NewWorkerPool(l, &queue.PoolConfig{Workers: 2, QueueSize: 8})
	if started {
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		pool.Start(ctx)
	}
	o := NewAnalysisOrchestrator(store, collector, analyzer, summarizer, pool, nil, nil, nil, l)
	return o, pool
}

func waitTerminal(t *testing.T, o *AnalysisOrchestrator, id string) *models.Job {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := o.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if job.Status.IsTerminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return nil
}

func liveSources() []domainrepo.MarketSource {
	return []domainrepo.MarketSource{
		&fakeSource{name: source.NameAlphaVantage},
		&fakeSource{name: source.NameNews},
		&fakeSource{name: source.NameEconomic},
	}
}

func TestSubmitReturnsImmediately(t *testing.T) {
	o, _ := newOrchestrator(t, liveSources(), true)

	req := models.AnalysisRequest{Market: "technology", Region: models.RegionUS, Timeframe: models.TFMonthly}
	start := time.Now()
	job, err := o.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("submit blocked for %v", elapsed)
	}
	if job.ID == "" {
		t.Fatalf("expected job id")
	}
	if job.Status.IsTerminal() {
		t.Fatalf("fresh job must not be terminal, got %s", job.Status)
	}
}

func TestJobCompletesAndPollingIsIdempotent(t *testing.T) {
	o, _ := newOrchestrator(t, liveSources(), true)

	job, err := o.Submit(context.Background(), models.AnalysisRequest{Market: "technology", Region: models.RegionUS, Timeframe: models.TFWeekly})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	done := waitTerminal(t, o, job.ID)
	if done.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", done.Status, done.Error)
	}
	if done.Result == nil || len(done.Result.Findings) < 2 {
		t.Fatalf("expected at least 2 findings")
	}
	if done.Result.Summary == "" {
		t.Fatalf("expected non-empty summary")
	}
	if done.CompletedAt == nil {
		t.Fatalf("expected completed timestamp")
	}

	again, err := o.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if again.Result.Summary != done.Result.Summary || len(again.Result.Findings) != len(done.Result.Findings) {
		t.Fatalf("repeated polls must return identical results")
	}
}

func TestAllMockSourcesStillComplete(t *testing.T) {
	sources := []domainrepo.MarketSource{
		&fakeSource{name: source.NameAlphaVantage, mock: true},
		&fakeSource{name: source.NameNews, mock: true},
		&fakeSource{name: source.NameEconomic, mock: true},
	}
	o, _ := newOrchestrator(t, sources, true)

	job, err := o.Submit(context.Background(), models.AnalysisRequest{Market: "technology", Region: models.RegionUS, Timeframe: models.TFMonthly})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	done := waitTerminal(t, o, job.ID)
	if done.Status != models.StatusCompleted {
		t.Fatalf("all-mock run must still complete, got %s (%s)", done.Status, done.Error)
	}
	if !done.Result.AllMock {
		t.Fatalf("expected result tagged all-mock")
	}
	if len(done.Result.Findings) < 2 {
		t.Fatalf("expected at least 2 findings from mock data")
	}
}

func TestPanicInPipelineFailsJobOnly(t *testing.T) {
	o, _ := newOrchestrator(t, liveSources(), true)
	o.analyzer = panicAnalyzer{}

	job, err := o.Submit(context.Background(), models.AnalysisRequest{Market: "energy", Region: models.RegionEU, Timeframe: models.TFDaily})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	done := waitTerminal(t, o, job.ID)
	if done.Status != models.StatusFailed {
		t.Fatalf("expected failed, got %s", done.Status)
	}
	if done.Error == "" {
		t.Fatalf("failed job must carry an error message")
	}

	// the orchestrator keeps serving other jobs
	o.analyzer = analytics.NewThresholdAnalyzer()
	next, err := o.Submit(context.Background(), models.AnalysisRequest{Market: "energy", Region: models.RegionEU, Timeframe: models.TFDaily})
	if err != nil {
		t.Fatalf("submit after failure: %v", err)
	}
	if waitTerminal(t, o, next.ID).Status != models.StatusCompleted {
		t.Fatalf("subsequent job should complete")
	}
}

func TestQueueSaturationFailsJobImmediately(t *testing.T) {
	l := testLogger(t)
	store := repository.NewMemoryJobStore(time.Hour, 100)
	collector := NewDataCollector(liveSources(), time.Second, nil, l)
	pool := queue.NewWorkerPool(l, &queue.PoolConfig{Workers: 1, QueueSize: 1})
	// pool intentionally not started: the buffer fills and stays full
	o := NewAnalysisOrchestrator(store, collector, analytics.NewThresholdAnalyzer(), analytics.NewMarketSummarizer(nil, 500, l), pool, nil, nil, nil, l)

	req := models.AnalysisRequest{Market: "finance", Region: models.RegionUS, Timeframe: models.TFWeekly}
	if _, err := o.Submit(context.Background(), req); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	job, err := o.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if job.Status != models.StatusFailed {
		t.Fatalf("expected job failed on saturated queue, got %s", job.Status)
	}
	if job.Error == "" {
		t.Fatalf("expected error message on rejected job")
	}
}

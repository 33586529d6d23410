package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	models "TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
	"TrendPulse/internal/repository"
	"TrendPulse/internal/service/source"
	"TrendPulse/internal/services/analytics"
	"TrendPulse/internal/usecase"
	"TrendPulse/pkg/logger"
	"TrendPulse/pkg/queue"
)

const testKey = "secret-key"

type stubSource struct{ name string }

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, market string, region models.Region, tf models.Timeframe) models.SourceData {
	return models.SourceData{
		Source:    s.name,
		FetchedAt: time.Now(),
		Numbers:   map[string]float64{"price_change_percent": 4, "volatility": 6},
		Labels:    map[string]string{"price_trend": "up"},
	}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T) (*AnalysisEchoHandler, *usecase.AnalysisOrchestrator, *echo.Echo) {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	store := repository.NewMemoryJobStore(time.Hour, 100)
	sources := []domainrepo.MarketSource{
		&stubSource{name: source.NameAlphaVantage},
		&stubSource{name: source.NameNews},
		&stubSource{name: source.NameEconomic},
	}
	collector := usecase.NewDataCollector(sources, time.Second, nil, l)
	pool := queue.NewWorkerPool(l, &queue.PoolConfig{Workers: 2, QueueSize: 8})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pool.Start(ctx)

	orch := usecase.NewAnalysisOrchestrator(
		store, collector,
		analytics.NewThresholdAnalyzer(),
		analytics.NewMarketSummarizer(nil, 500, l),
		pool, nil, nil, nil, l,
	)

	h := NewAnalysisEchoHandler(l, orch, nil, AuthConfig{APIKey: testKey, SubmitBurst: 100, SubmitPerSec: 100})
	e := echo.New()
	h.RegisterRoutes(e)
	return h, orch, e
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string) envelope {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestAnalyzeRejectsInvalidKey(t *testing.T) {
	_, orch, e := newTestHandler(t)

	env := doJSON(t, e, http.MethodPost, "/api/analyze",
		`{"market":"technology","region":"US","timeframe":"1m","api_key":"wrong"}`)
	if env.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 envelope, got %d", env.Status)
	}

	// no job may be created for an unauthorized request
	summaries, err := orch.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("store must stay unchanged, found %d jobs", len(summaries))
	}
}

func TestAnalyzeRejectsMissingMarket(t *testing.T) {
	_, _, e := newTestHandler(t)

	env := doJSON(t, e, http.MethodPost, "/api/analyze", `{"api_key":"secret-key"}`)
	if env.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 envelope, got %d", env.Status)
	}
}

func TestAnalyzeSubmitAndPoll(t *testing.T) {
	_, _, e := newTestHandler(t)

	env := doJSON(t, e, http.MethodPost, "/api/analyze",
		`{"market":"technology","region":"US","timeframe":"1m","api_key":"secret-key"}`)
	if env.Status != http.StatusOK {
		t.Fatalf("expected 200 envelope, got %d", env.Status)
	}

	var resp models.AnalyzeResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}
	if resp.AnalysisID == "" || resp.Status != "processing" {
		t.Fatalf("unexpected analyze response: %+v", resp)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		env = doJSON(t, e, http.MethodGet, "/api/results/"+resp.AnalysisID+"?api_key="+testKey, "")
		if env.Status != http.StatusOK {
			t.Fatalf("expected 200 envelope on poll, got %d", env.Status)
		}
		var job models.Job
		if err := json.Unmarshal(env.Data, &job); err != nil {
			t.Fatalf("decode job: %v", err)
		}
		if job.Status.IsTerminal() {
			if job.Status != models.StatusCompleted {
				t.Fatalf("expected completed job, got %s (%s)", job.Status, job.Error)
			}
			if job.Result == nil || len(job.Result.Findings) < 2 {
				t.Fatalf("expected findings in completed job")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGetResultUnknownID(t *testing.T) {
	_, _, e := newTestHandler(t)

	env := doJSON(t, e, http.MethodGet, "/api/results/no-such-id?api_key="+testKey, "")
	if env.Status != http.StatusNotFound {
		t.Fatalf("expected 404 envelope, got %d", env.Status)
	}
}

func TestDeleteResult(t *testing.T) {
	_, orch, e := newTestHandler(t)

	job, err := orch.Submit(context.Background(), models.AnalysisRequest{
		Market: "finance", Region: models.RegionUS, Timeframe: models.TFWeekly,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	env := doJSON(t, e, http.MethodDelete, "/api/results/"+job.ID+"?api_key="+testKey, "")
	if env.Status != http.StatusOK {
		t.Fatalf("expected 200 envelope, got %d", env.Status)
	}

	env = doJSON(t, e, http.MethodDelete, "/api/results/"+job.ID+"?api_key="+testKey, "")
	if env.Status != http.StatusNotFound {
		t.Fatalf("expected 404 envelope on second delete, got %d", env.Status)
	}
}

func TestListResultsRequiresKey(t *testing.T) {
	_, _, e := newTestHandler(t)

	env := doJSON(t, e, http.MethodGet, "/api/results?api_key=wrong", "")
	if env.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 envelope, got %d", env.Status)
	}
}

func TestRateLimitOnSubmit(t *testing.T) {
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	store := repository.NewMemoryJobStore(time.Hour, 100)
	collector := usecase.NewDataCollector(nil, time.Second, nil, l)
	pool := queue.NewWorkerPool(l, &queue.PoolConfig{Workers: 1, QueueSize: 8})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pool.Start(ctx)
	orch := usecase.NewAnalysisOrchestrator(
		store, collector, analytics.NewThresholdAnalyzer(),
		analytics.NewMarketSummarizer(nil, 500, l), pool, nil, nil, nil, l,
	)

	h := NewAnalysisEchoHandler(l, orch, nil, AuthConfig{APIKey: testKey, SubmitBurst: 2, SubmitPerSec: 0.001})
	e := echo.New()
	h.RegisterRoutes(e)

	body := `{"market":"energy","region":"EU","timeframe":"1w","api_key":"secret-key"}`
	for i := 0; i < 2; i++ {
		if env := doJSON(t, e, http.MethodPost, "/api/analyze", body); env.Status != http.StatusOK {
			t.Fatalf("request %d within burst should pass, got %d", i, env.Status)
		}
	}
	if env := doJSON(t, e, http.MethodPost, "/api/analyze", body); env.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 envelope beyond burst, got %d", env.Status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var hs models.HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &hs); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if hs.Status != "healthy" || hs.Services["openai"] != "disconnected" {
		t.Fatalf("unexpected health payload: %+v", hs)
	}
}

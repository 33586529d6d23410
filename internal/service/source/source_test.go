package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TrendPulse/internal/domain/models"
	"TrendPulse/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestSymbolForMarket(t *testing.T) {
	cases := map[string]string{
		"technology": "AAPL",
		"Technology": "AAPL",
		"finance":    "JPM",
		"healthcare": "JNJ",
		"energy":     "XOM",
		"consumer":   "WMT",
		"unknown":    "SPY",
	}
	for market, want := range cases {
		if got := SymbolForMarket(market); got != want {
			t.Fatalf("SymbolForMarket(%q) = %q, want %q", market, got, want)
		}
	}
}

func TestAlphaVantageNoKeyFallsBackToMock(t *testing.T) {
	s := NewAlphaVantageSource(AlphaVantageConfig{}, testLogger(t))
	data := s.Fetch(context.Background(), "technology", models.RegionUS, models.TFWeekly)

	if !data.Mock {
		t.Fatalf("expected mock data without api key")
	}
	if data.Numbers["price_change_percent"] != 0.83 {
		t.Fatalf("unexpected mock price change: %v", data.Numbers["price_change_percent"])
	}
	if data.Labels["sector"] != "Technology" {
		t.Fatalf("unexpected mock sector: %q", data.Labels["sector"])
	}
}

func TestAlphaVantageServerErrorFallsBackToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewAlphaVantageSource(AlphaVantageConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, testLogger(t))
	data := s.Fetch(context.Background(), "energy", models.RegionUS, models.TFDaily)

	if !data.Mock {
		t.Fatalf("expected mock fallback on server error")
	}
}

func TestAlphaVantageParsesTimeSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("function") {
		case "OVERVIEW":
			w.Write([]byte(`{"Symbol":"AAPL","Sector":"Technology","Industry":"Consumer Electronics","PERatio":"32.1","MarketCapitalization":"3000000000000"}`))
		default:
			w.Write([]byte(`{
                "Meta Data": {"2. Symbol": "AAPL"},
                "Time Series (Daily)": {
                    "2024-01-03": {"4. close": "110.00"},
                    "2024-01-01": {"4. close": "100.00"},
                    "2024-01-02": {"4. close": "105.00"}
                }
            }`))
		}
	}))
	defer srv.Close()

	s := NewAlphaVantageSource(AlphaVantageConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, testLogger(t))
	data := s.Fetch(context.Background(), "technology", models.RegionUS, models.TFDaily)

	if data.Mock {
		t.Fatalf("expected live data")
	}
	// newest 110 vs oldest 100
	got := data.Numbers["price_change_percent"]
	if got < 9.99 || got > 10.01 {
		t.Fatalf("expected ~10%% price change, got %v", got)
	}
	if data.Labels["price_trend"] != "up" {
		t.Fatalf("expected up trend, got %q", data.Labels["price_trend"])
	}
	if data.Numbers["pe_ratio"] != 32.1 {
		t.Fatalf("expected pe_ratio 32.1, got %v", data.Numbers["pe_ratio"])
	}
}

func TestNewsSentimentScore(t *testing.T) {
	if s := SentimentScore("strong growth and profit gain"); s <= 0 {
		t.Fatalf("expected positive score, got %v", s)
	}
	if s := SentimentScore("sharp decline and heavy loss"); s >= 0 {
		t.Fatalf("expected negative score, got %v", s)
	}
	if s := SentimentScore(""); s != 0 {
		t.Fatalf("expected zero score for empty text, got %v", s)
	}
}

func TestNewsExtractThemes(t *testing.T) {
	themes := ExtractThemes("Quarterly earnings beat expectations amid merger talks")
	found := map[string]bool{}
	for _, th := range themes {
		found[th] = true
	}
	if !found["earnings"] || !found["mergers"] {
		t.Fatalf("expected earnings and mergers themes, got %v", themes)
	}
}

func TestNewsServerErrorFallsBackToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewNewsSource(NewsConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, testLogger(t))
	data := s.Fetch(context.Background(), "finance", models.RegionEU, models.TFMonthly)

	if !data.Mock {
		t.Fatalf("expected mock fallback on server error")
	}
	if data.Labels["sentiment_trend"] != "positive" {
		t.Fatalf("unexpected mock sentiment: %q", data.Labels["sentiment_trend"])
	}
}

func TestNewsParsesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
            "status": "ok",
            "articles": [
                {"title": "Tech stocks rise on strong growth", "description": "profit gain across the sector"},
                {"title": "Quarterly earnings impress", "description": "revenue up on innovation"}
            ]
        }`))
	}))
	defer srv.Close()

	s := NewNewsSource(NewsConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, testLogger(t))
	data := s.Fetch(context.Background(), "technology", models.RegionUS, models.TFWeekly)

	if data.Mock {
		t.Fatalf("expected live data")
	}
	if data.Numbers["news_volume"] != 2 {
		t.Fatalf("expected 2 articles, got %v", data.Numbers["news_volume"])
	}
	if data.Numbers["avg_sentiment"] <= 0 {
		t.Fatalf("expected positive sentiment, got %v", data.Numbers["avg_sentiment"])
	}
	if len(data.Topics) == 0 {
		t.Fatalf("expected extracted themes")
	}
}

func TestEconomicSourceIsDeterministic(t *testing.T) {
	s := NewEconomicSource(testLogger(t))
	a := s.Fetch(context.Background(), "energy", models.RegionGlobal, models.TFYearly)
	b := s.Fetch(context.Background(), "energy", models.RegionGlobal, models.TFYearly)

	if a.Mock {
		t.Fatalf("primary path should not be tagged mock")
	}
	if a.Numbers["gdp_growth"] != b.Numbers["gdp_growth"] || a.Labels["economic_health"] != b.Labels["economic_health"] {
		t.Fatalf("economic data must be deterministic")
	}
}

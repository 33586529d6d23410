package source

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"TrendPulse/internal/domain/models"
	xhttp "TrendPulse/pkg/http"
	applogger "TrendPulse/pkg/logger"
	"TrendPulse/pkg/util"
)

// AlphaVantageConfig configures the pricing source.
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// AlphaVantageSource fetches price and fundamentals data. A missing API key,
// a vendor error payload or any transport failure falls back to mock data.
type AlphaVantageSource struct {
	cfg    AlphaVantageConfig
	client *xhttp.Client
	l      *applogger.Logger
}

// NewAlphaVantageSource creates the pricing source adapter.
func NewAlphaVantageSource(cfg AlphaVantageConfig, l *applogger.Logger) *AlphaVantageSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.alphavantage.co/query"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &AlphaVantageSource{
		cfg:    cfg,
		client: xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		l:      l,
	}
}

// Name implements MarketSource.
func (s *AlphaVantageSource) Name() string { return NameAlphaVantage }

// Fetch implements MarketSource.
func (s *AlphaVantageSource) Fetch(ctx context.Context, market string, region models.Region, tf models.Timeframe) models.SourceData {
	if s.cfg.APIKey == "" {
		s.l.Warn("alpha vantage key not configured, using mock data", applogger.String("market", market))
		return s.mock(market)
	}

	symbol := SymbolForMarket(market)
	data := liveData(NameAlphaVantage)
	data.FetchedAt = time.Now().UTC()

	overviewOK := s.fetchOverview(ctx, symbol, &data)
	seriesOK := s.fetchTimeSeries(ctx, symbol, tf, &data)
	if !overviewOK && !seriesOK {
		s.l.Warn("alpha vantage unavailable, using mock data",
			applogger.String("market", market),
			applogger.String("symbol", symbol),
		)
		return s.mock(market)
	}
	return data
}

type overviewResponse struct {
	Symbol       string `json:"Symbol"`
	Sector       string `json:"Sector"`
	Industry     string `json:"Industry"`
	PERatio      string `json:"PERatio"`
	MarketCap    string `json:"MarketCapitalization"`
	ErrorMessage string `json:"Error Message"`
}

func (s *AlphaVantageSource) fetchOverview(ctx context.Context, symbol string, data *models.SourceData) bool {
	var resp overviewResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.cfg.BaseURL,
		QueryParams: map[string][]string{
			"function": {"OVERVIEW"},
			"symbol":   {symbol},
			"apikey":   {s.cfg.APIKey},
		},
	}, &resp)
	if err != nil || resp.ErrorMessage != "" {
		s.l.Debug("alpha vantage overview failed", applogger.String("symbol", symbol), applogger.Error(err))
		return false
	}

	data.Labels["sector"] = resp.Sector
	data.Labels["industry"] = resp.Industry
	data.Labels["market_cap"] = resp.MarketCap
	if pe, err := util.ParseFloat(resp.PERatio); err == nil {
		data.Numbers["pe_ratio"] = pe
	}
	return true
}

func timeSeriesFunction(tf models.Timeframe) string {
	switch tf {
	case models.TFWeekly:
		return "TIME_SERIES_WEEKLY"
	case models.TFMonthly:
		return "TIME_SERIES_MONTHLY"
	default:
		return "TIME_SERIES_DAILY"
	}
}

func (s *AlphaVantageSource) fetchTimeSeries(ctx context.Context, symbol string, tf models.Timeframe, data *models.SourceData) bool {
	var raw map[string]json.RawMessage
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.cfg.BaseURL,
		QueryParams: map[string][]string{
			"function":   {timeSeriesFunction(tf)},
			"symbol":     {symbol},
			"apikey":     {s.cfg.APIKey},
			"outputsize": {"compact"},
		},
	}, &raw)
	if err != nil {
		s.l.Debug("alpha vantage timeseries failed", applogger.String("symbol", symbol), applogger.Error(err))
		return false
	}
	if _, bad := raw["Error Message"]; bad {
		return false
	}

	prices, err := closingPrices(raw)
	if err != nil || len(prices) < 2 {
		s.l.Debug("alpha vantage timeseries unusable", applogger.String("symbol", symbol), applogger.Error(err))
		return false
	}

	// prices are newest first
	newest, oldest := prices[0], prices[len(prices)-1]
	change := (newest - oldest) / oldest * 100
	trend := "down"
	if newest > oldest {
		trend = "up"
	}

	data.Labels["price_trend"] = trend
	data.Numbers["price_change_percent"] = change
	data.Numbers["volatility"] = volatility(prices)
	data.Numbers["data_points"] = float64(len(prices))
	return true
}

// closingPrices extracts close values from the time series block, newest
// date first.
func closingPrices(raw map[string]json.RawMessage) ([]float64, error) {
	var series map[string]map[string]string
	for key, msg := range raw {
		if key == "Meta Data" {
			continue
		}
		if err := json.Unmarshal(msg, &series); err == nil && len(series) > 0 {
			break
		}
		series = nil
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no time series block")
	}

	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	prices := make([]float64, 0, len(dates))
	for _, d := range dates {
		cs, ok := series[d]["4. close"]
		if !ok {
			continue
		}
		v, err := util.ParseFloat(cs)
		if err != nil {
			continue
		}
		prices = append(prices, v)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no closing prices")
	}
	return prices, nil
}

// volatility is the standard deviation of period-over-period returns, as a
// percentage.
func volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) < 2 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance) * 100
}

func (s *AlphaVantageSource) mock(market string) models.SourceData {
	data := mockData(NameAlphaVantage)
	data.FetchedAt = time.Now().UTC()
	data.Labels["sector"] = util.Title(market)
	data.Labels["industry"] = util.Title(market) + " Industry"
	data.Labels["market_cap"] = "1B"
	data.Labels["price_trend"] = "up"
	data.Numbers["pe_ratio"] = 25.5
	data.Numbers["price_change_percent"] = 0.83
	data.Numbers["volatility"] = 1.2
	data.Numbers["data_points"] = 3
	return data
}

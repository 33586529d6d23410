package source

import (
	"context"
	"time"

	"TrendPulse/internal/domain/models"
	applogger "TrendPulse/pkg/logger"
)

// EconomicSource produces macro indicator data. There is no live provider
// wired yet, so the primary path synthesizes a fixed indicator set; the mock
// path carries a distinct, healthier profile so the two are distinguishable
// downstream.
type EconomicSource struct {
	l *applogger.Logger
}

// NewEconomicSource creates the macro indicator source.
func NewEconomicSource(l *applogger.Logger) *EconomicSource {
	return &EconomicSource{l: l}
}

// Name implements MarketSource.
func (s *EconomicSource) Name() string { return NameEconomic }

// Fetch implements MarketSource.
func (s *EconomicSource) Fetch(ctx context.Context, market string, region models.Region, tf models.Timeframe) models.SourceData {
	select {
	case <-ctx.Done():
		s.l.Warn("economic source cancelled, using mock data", applogger.String("market", market))
		return s.mock()
	default:
	}

	data := liveData(NameEconomic)
	data.FetchedAt = time.Now().UTC()
	data.Numbers["gdp_growth"] = 2.5
	data.Numbers["inflation_rate"] = 3.2
	data.Numbers["unemployment_rate"] = 4.1
	data.Numbers["interest_rate"] = 5.25
	data.Numbers["market_volatility"] = 18.5
	data.Labels["economic_health"] = "moderate"
	data.Labels["growth_trend"] = "stable"
	data.Labels["inflation_pressure"] = "moderate"
	data.Labels["market_conditions"] = "volatile"
	data.Topics = []string{"inflation", "interest_rates"}
	return data
}

func (s *EconomicSource) mock() models.SourceData {
	data := mockData(NameEconomic)
	data.FetchedAt = time.Now().UTC()
	data.Numbers["gdp_growth"] = 2.8
	data.Numbers["inflation_rate"] = 2.9
	data.Numbers["unemployment_rate"] = 3.8
	data.Numbers["interest_rate"] = 5.0
	data.Numbers["market_volatility"] = 15.2
	data.Labels["economic_health"] = "good"
	data.Labels["growth_trend"] = "positive"
	data.Labels["inflation_pressure"] = "low"
	data.Labels["market_conditions"] = "stable"
	data.Topics = []string{"geopolitical", "supply_chain"}
	return data
}

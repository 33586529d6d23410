package source

import (
	"strings"

	"TrendPulse/internal/domain/models"
)

// Source names double as keys in the aggregated dataset and as the priority
// order for tie-breaking findings (price before sentiment before macro).
const (
	NameAlphaVantage = "alpha_vantage"
	NameNews         = "financial_news"
	NameEconomic     = "economic_indicators"
)

// symbolMap routes a free-text sector name to a representative ticker.
var symbolMap = map[string]string{
	"technology": "AAPL",
	"finance":    "JPM",
	"healthcare": "JNJ",
	"energy":     "XOM",
	"consumer":   "WMT",
}

const defaultSymbol = "SPY" // S&P 500 ETF

// SymbolForMarket returns the proxy ticker for a sector name.
func SymbolForMarket(market string) string {
	if sym, ok := symbolMap[strings.ToLower(market)]; ok {
		return sym
	}
	return defaultSymbol
}

func mockData(name string) models.SourceData {
	return models.SourceData{
		Source:  name,
		Mock:    true,
		Numbers: make(map[string]float64),
		Labels:  make(map[string]string),
	}
}

func liveData(name string) models.SourceData {
	return models.SourceData{
		Source:  name,
		Numbers: make(map[string]float64),
		Labels:  make(map[string]string),
	}
}

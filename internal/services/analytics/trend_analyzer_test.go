package analytics

import (
	"testing"

	"TrendPulse/internal/domain/models"
	"TrendPulse/internal/service/source"
)

func dataset(market string, sources map[string]models.SourceData) *models.Dataset {
	return &models.Dataset{
		Market:    market,
		Region:    models.RegionUS,
		Timeframe: models.TFMonthly,
		Sources:   sources,
	}
}

func priceData(trend string, change, vol float64) models.SourceData {
	return models.SourceData{
		Source: source.NameAlphaVantage,
		Numbers: map[string]float64{
			"price_change_percent": change,
			"volatility":           vol,
			"data_points":          30,
		},
		Labels: map[string]string{"price_trend": trend},
	}
}

func newsData(trend string, avg, volume float64) models.SourceData {
	return models.SourceData{
		Source: source.NameNews,
		Numbers: map[string]float64{
			"avg_sentiment": avg,
			"news_volume":   volume,
		},
		Labels: map[string]string{"sentiment_trend": trend},
		Topics: []string{"earnings", "innovation"},
	}
}

func TestAnalyzeOrderedByConfidenceWithSourceTieBreak(t *testing.T) {
	a := NewThresholdAnalyzer()

	// price and sentiment both cap at 0.9; price wins the tie
	ds := dataset("retail", map[string]models.SourceData{
		source.NameAlphaVantage: priceData("up", 9.0, 5.0),
		source.NameNews:         newsData("positive", 0.45, 10),
	})

	findings := a.Analyze(ds)
	if len(findings) < 2 {
		t.Fatalf("expected at least 2 findings, got %d", len(findings))
	}
	if findings[0].Name != "Positive Price Momentum" {
		t.Fatalf("price finding must win confidence tie, got %q", findings[0].Name)
	}
	for i := 1; i < len(findings); i++ {
		if findings[i].Confidence > findings[i-1].Confidence {
			t.Fatalf("findings not ordered by descending confidence at %d", i)
		}
	}
}

func TestAnalyzeConfidenceInRange(t *testing.T) {
	a := NewThresholdAnalyzer()

	ds := dataset("technology", map[string]models.SourceData{
		source.NameAlphaVantage: priceData("up", 250.0, 45.0),
		source.NameNews:         newsData("positive", 3.0, 500),
	})

	for _, f := range a.Analyze(ds) {
		if f.Confidence < 0 || f.Confidence > 1 {
			t.Fatalf("confidence out of range for %q: %v", f.Name, f.Confidence)
		}
	}
}

func TestAnalyzeReturnsMinimumTwoFindings(t *testing.T) {
	a := NewThresholdAnalyzer()

	ds := dataset("shipping", map[string]models.SourceData{})
	findings := a.Analyze(ds)

	if len(findings) < 2 {
		t.Fatalf("expected at least 2 findings, got %d", len(findings))
	}
	last := findings[len(findings)-1]
	if last.Impact != models.ImpactNeutral {
		t.Fatalf("synthesized filler must be neutral, got %s", last.Impact)
	}
}

func TestAnalyzeCapsAtFiveFindings(t *testing.T) {
	a := NewThresholdAnalyzer()

	econ := models.SourceData{
		Source: source.NameEconomic,
		Labels: map[string]string{
			"economic_health":    "moderate",
			"growth_trend":       "stable",
			"inflation_pressure": "moderate",
			"market_conditions":  "volatile",
		},
		Topics: []string{"inflation"},
	}
	price := priceData("down", 8.0, 25.0)
	price.Numbers["pe_ratio"] = 35
	price.Labels["sector"] = "Technology"

	ds := dataset("technology", map[string]models.SourceData{
		source.NameAlphaVantage: price,
		source.NameNews:         newsData("negative", -0.4, 80),
		source.NameEconomic:     econ,
	})

	findings := a.Analyze(ds)
	if len(findings) != 5 {
		t.Fatalf("expected exactly 5 findings, got %d", len(findings))
	}
}

func TestAnalyzeVolatilityAndValuation(t *testing.T) {
	a := NewThresholdAnalyzer()

	price := priceData("up", 1.0, 26.0)
	price.Numbers["pe_ratio"] = 12
	price.Labels["sector"] = "Energy"

	ds := dataset("energy", map[string]models.SourceData{
		source.NameAlphaVantage: price,
	})

	names := map[string]models.Impact{}
	for _, f := range a.Analyze(ds) {
		names[f.Name] = f.Impact
	}
	if impact, ok := names["High Market Volatility"]; !ok || impact != models.ImpactNeutral {
		t.Fatalf("expected neutral volatility finding, got %v", names)
	}
	if impact, ok := names["Undervalued Sector Opportunity"]; !ok || impact != models.ImpactPositive {
		t.Fatalf("expected positive undervaluation finding, got %v", names)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := NewThresholdAnalyzer()

	ds := dataset("finance", map[string]models.SourceData{
		source.NameAlphaVantage: priceData("down", 4.0, 10.0),
		source.NameNews:         newsData("neutral", 0.05, 20),
	})

	first := a.Analyze(ds)
	second := a.Analyze(ds)
	if len(first) != len(second) {
		t.Fatalf("non-deterministic finding count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Confidence != second[i].Confidence {
			t.Fatalf("non-deterministic finding at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

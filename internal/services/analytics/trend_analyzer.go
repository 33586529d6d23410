package analytics

import (
	"fmt"
	"sort"
	"strings"

	"TrendPulse/internal/domain/models"
	"TrendPulse/internal/service/source"
	"TrendPulse/pkg/util"
)

// Threshold constants are tuned heuristics, not derived values.
const (
	minConfidence   = 0.3
	maxTrends       = 5
	minFindings     = 2
	highVolatility  = 20.0
	strongSentiment = 0.2
	highNewsVolume  = 50.0
	highPERatio     = 30.0
	lowPERatio      = 15.0
)

// source priority for confidence ties: price before sentiment before macro,
// synthesized findings last.
const (
	rankPrice = iota
	rankSentiment
	rankMacro
	rankFiller
)

type rankedFinding struct {
	models.TrendFinding
	rank int
	seq  int
}

// ThresholdAnalyzer classifies the aggregated dataset into labeled trend
// findings using fixed threshold rules. Pure function of its input.
type ThresholdAnalyzer struct{}

// NewThresholdAnalyzer creates the analyzer.
func NewThresholdAnalyzer() *ThresholdAnalyzer {
	return &ThresholdAnalyzer{}
}

// Analyze implements service.TrendAnalyzer. It always returns at least two
// findings, at most five, ordered by descending confidence.
func (a *ThresholdAnalyzer) Analyze(dataset *models.Dataset) []models.TrendFinding {
	var found []rankedFinding

	add := func(rank int, f models.TrendFinding) {
		f.Confidence = clamp01(f.Confidence)
		found = append(found, rankedFinding{TrendFinding: f, rank: rank, seq: len(found)})
	}

	if price, ok := dataset.Sources[source.NameAlphaVantage]; ok {
		for _, f := range priceFindings(price) {
			add(rankPrice, f)
		}
		for _, f := range sectorFindings(price) {
			add(rankPrice, f)
		}
	}
	if news, ok := dataset.Sources[source.NameNews]; ok {
		for _, f := range sentimentFindings(news) {
			add(rankSentiment, f)
		}
	}
	if econ, ok := dataset.Sources[source.NameEconomic]; ok {
		for _, f := range economicFindings(econ) {
			add(rankMacro, f)
		}
	}
	add(rankFiller, marketFinding(dataset.Market))

	kept := found[:0]
	for _, f := range found {
		if f.Confidence >= minConfidence {
			kept = append(kept, f)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Confidence != kept[j].Confidence {
			return kept[i].Confidence > kept[j].Confidence
		}
		if kept[i].rank != kept[j].rank {
			return kept[i].rank < kept[j].rank
		}
		return kept[i].seq < kept[j].seq
	})
	if len(kept) > maxTrends {
		kept = kept[:maxTrends]
	}

	out := make([]models.TrendFinding, 0, maxTrends)
	for _, f := range kept {
		out = append(out, f.TrendFinding)
	}
	for len(out) < minFindings {
		out = append(out, fillerFinding(dataset, len(out)))
	}
	return out
}

func priceFindings(d models.SourceData) []models.TrendFinding {
	var out []models.TrendFinding

	change := d.Numbers["price_change_percent"]
	vol := d.Numbers["volatility"]
	supporting := []string{
		fmt.Sprintf("Price change: %.2f%%", change),
		fmt.Sprintf("Volatility: %.2f%%", vol),
	}

	switch d.Labels["price_trend"] {
	case "up":
		out = append(out, models.TrendFinding{
			Name:           "Positive Price Momentum",
			Description:    fmt.Sprintf("Market showing upward price movement with %.2f%% change", change),
			Confidence:     min(0.9, abs(change)/10),
			Impact:         models.ImpactPositive,
			SupportingData: supporting,
		})
	case "down":
		out = append(out, models.TrendFinding{
			Name:           "Negative Price Momentum",
			Description:    fmt.Sprintf("Market showing downward price movement with %.2f%% change", change),
			Confidence:     min(0.9, abs(change)/10),
			Impact:         models.ImpactNegative,
			SupportingData: supporting,
		})
	}

	if vol > highVolatility {
		out = append(out, models.TrendFinding{
			Name:        "High Market Volatility",
			Description: fmt.Sprintf("Market experiencing high volatility at %.2f%%", vol),
			Confidence:  min(0.8, vol/30),
			Impact:      models.ImpactNeutral,
			SupportingData: []string{
				fmt.Sprintf("Volatility level: %.2f%%", vol),
				fmt.Sprintf("Data points analyzed: %.0f", d.Numbers["data_points"]),
			},
		})
	}
	return out
}

func sentimentFindings(d models.SourceData) []models.TrendFinding {
	var out []models.TrendFinding

	avg := d.Numbers["avg_sentiment"]
	volume := d.Numbers["news_volume"]
	trend := d.Labels["sentiment_trend"]
	themes := d.Topics
	if len(themes) > 3 {
		themes = themes[:3]
	}
	supporting := []string{
		fmt.Sprintf("Average sentiment score: %.3f", avg),
		fmt.Sprintf("News volume: %.0f articles", volume),
		"Top themes: " + strings.Join(themes, ", "),
	}

	if trend == "positive" && avg > strongSentiment {
		out = append(out, models.TrendFinding{
			Name:           "Positive Market Sentiment",
			Description:    fmt.Sprintf("Strong positive sentiment in news coverage with %.0f articles analyzed", volume),
			Confidence:     min(0.9, avg*2),
			Impact:         models.ImpactPositive,
			SupportingData: supporting,
		})
	} else if trend == "negative" && avg < -strongSentiment {
		out = append(out, models.TrendFinding{
			Name:           "Negative Market Sentiment",
			Description:    fmt.Sprintf("Negative sentiment in news coverage with %.0f articles analyzed", volume),
			Confidence:     min(0.9, abs(avg)*2),
			Impact:         models.ImpactNegative,
			SupportingData: supporting,
		})
	}

	if volume > highNewsVolume {
		out = append(out, models.TrendFinding{
			Name:        "High News Volume",
			Description: fmt.Sprintf("Significant media attention with %.0f articles in the timeframe", volume),
			Confidence:  min(0.7, volume/100),
			Impact:      models.ImpactNeutral,
			SupportingData: []string{
				fmt.Sprintf("Article count: %.0f", volume),
				"Sentiment trend: " + trend,
			},
		})
	}
	return out
}

func economicFindings(d models.SourceData) []models.TrendFinding {
	var out []models.TrendFinding

	health := d.Labels["economic_health"]
	risks := strings.Join(d.Topics, ", ")

	switch health {
	case "good":
		out = append(out, models.TrendFinding{
			Name:        "Strong Economic Fundamentals",
			Description: "Economic indicators show positive fundamentals supporting market growth",
			Confidence:  0.8,
			Impact:      models.ImpactPositive,
			SupportingData: []string{
				"Economic health: " + health,
				"Growth trend: " + d.Labels["growth_trend"],
				"Key risks: " + risks,
			},
		})
	case "moderate":
		out = append(out, models.TrendFinding{
			Name:        "Mixed Economic Signals",
			Description: "Economic indicators show mixed signals with moderate growth prospects",
			Confidence:  0.6,
			Impact:      models.ImpactNeutral,
			SupportingData: []string{
				"Economic health: " + health,
				"Growth trend: " + d.Labels["growth_trend"],
				"Market conditions: " + d.Labels["market_conditions"],
			},
		})
	}

	if d.Labels["market_conditions"] == "volatile" {
		out = append(out, models.TrendFinding{
			Name:        "Volatile Market Conditions",
			Description: "Economic indicators suggest increased market volatility",
			Confidence:  0.7,
			Impact:      models.ImpactNegative,
			SupportingData: []string{
				"Market conditions: " + d.Labels["market_conditions"],
				"Inflation pressure: " + d.Labels["inflation_pressure"],
				"Key risks: " + risks,
			},
		})
	}
	return out
}

func sectorFindings(d models.SourceData) []models.TrendFinding {
	pe, ok := d.Numbers["pe_ratio"]
	if !ok {
		return nil
	}
	sector := d.Labels["sector"]
	marketCap := d.Labels["market_cap"]
	if marketCap == "" {
		marketCap = "N/A"
	}
	supporting := []string{
		fmt.Sprintf("P/E ratio: %g", pe),
		"Sector: " + sector,
		"Market cap: " + marketCap,
	}

	switch {
	case pe > highPERatio:
		return []models.TrendFinding{{
			Name:           "High Valuation Sector",
			Description:    fmt.Sprintf("%s sector showing high valuations with P/E ratio of %g", sector, pe),
			Confidence:     0.7,
			Impact:         models.ImpactNeutral,
			SupportingData: supporting,
		}}
	case pe < lowPERatio:
		return []models.TrendFinding{{
			Name:           "Undervalued Sector Opportunity",
			Description:    fmt.Sprintf("%s sector appears undervalued with P/E ratio of %g", sector, pe),
			Confidence:     0.6,
			Impact:         models.ImpactPositive,
			SupportingData: supporting,
		}}
	}
	return nil
}

// marketFinding is the sector-level heuristic that always produces one
// finding, so every analysis has a baseline conclusion.
func marketFinding(market string) models.TrendFinding {
	lower := strings.ToLower(market)
	switch {
	case strings.Contains(lower, "tech"):
		return models.TrendFinding{
			Name:        "Technology Innovation Drive",
			Description: "Technology sector continues to drive innovation with strong growth potential",
			Confidence:  0.8,
			Impact:      models.ImpactPositive,
			SupportingData: []string{
				"High R&D investment",
				"Digital transformation acceleration",
				"AI and automation adoption",
			},
		}
	case strings.Contains(lower, "financ"):
		return models.TrendFinding{
			Name:        "Financial Services Evolution",
			Description: "Financial services sector adapting to digital transformation and regulatory changes",
			Confidence:  0.7,
			Impact:      models.ImpactNeutral,
			SupportingData: []string{
				"Fintech disruption",
				"Regulatory compliance focus",
				"Interest rate sensitivity",
			},
		}
	case strings.Contains(lower, "health"):
		return models.TrendFinding{
			Name:        "Healthcare Innovation Growth",
			Description: "Healthcare sector benefiting from innovation and demographic trends",
			Confidence:  0.8,
			Impact:      models.ImpactPositive,
			SupportingData: []string{
				"Aging population",
				"Medical technology advances",
				"Regulatory approval pipeline",
			},
		}
	case strings.Contains(lower, "energy"):
		return models.TrendFinding{
			Name:        "Energy Transition Impact",
			Description: "Energy sector navigating transition to renewable sources",
			Confidence:  0.7,
			Impact:      models.ImpactNeutral,
			SupportingData: []string{
				"Renewable energy growth",
				"Fossil fuel transition",
				"Geopolitical factors",
			},
		}
	default:
		return models.TrendFinding{
			Name:        "Sector-Specific Opportunities",
			Description: fmt.Sprintf("%s sector showing sector-specific growth opportunities", util.Title(market)),
			Confidence:  0.6,
			Impact:      models.ImpactPositive,
			SupportingData: []string{
				"Market-specific factors",
				"Regional economic conditions",
				"Industry dynamics",
			},
		}
	}
}

// fillerFinding synthesizes a neutral observation so callers always get the
// minimum finding count.
func fillerFinding(dataset *models.Dataset, n int) models.TrendFinding {
	sources := make([]string, 0, len(dataset.Sources))
	for name := range dataset.Sources {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	return models.TrendFinding{
		Name:        fmt.Sprintf("Baseline Market Observation %d", n+1),
		Description: fmt.Sprintf("No strong signals detected for %s; conditions appear stable", util.Title(dataset.Market)),
		Confidence:  minConfidence,
		Impact:      models.ImpactNeutral,
		SupportingData: []string{
			"Sources consulted: " + strings.Join(sources, ", "),
			"Timeframe: " + string(dataset.Timeframe),
		},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

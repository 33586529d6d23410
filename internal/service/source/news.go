package source

import (
	"context"
	"sort"
	"strings"
	"time"

	"TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
	xhttp "TrendPulse/pkg/http"
	applogger "TrendPulse/pkg/logger"
)

var positiveWords = []string{"growth", "profit", "gain", "rise", "increase", "positive", "strong", "up", "bullish"}
var negativeWords = []string{"decline", "loss", "fall", "drop", "decrease", "negative", "weak", "down", "bearish"}

var themeKeywords = map[string][]string{
	"earnings":    {"earnings", "revenue", "profit", "quarterly"},
	"regulation":  {"regulation", "policy", "government", "compliance"},
	"innovation":  {"innovation", "technology", "digital", "ai", "automation"},
	"competition": {"competition", "market share", "rival", "competitor"},
	"mergers":     {"merger", "acquisition", "deal", "buyout"},
}

// NewsConfig configures the news sentiment source.
type NewsConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewsSource fetches recent coverage and derives a keyword-based sentiment
// score plus the dominant themes. Failures fall back to mock data.
type NewsSource struct {
	cfg    NewsConfig
	client *xhttp.Client
	l      *applogger.Logger
}

// NewNewsSource creates the news source adapter.
func NewNewsSource(cfg NewsConfig, l *applogger.Logger) *NewsSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://newsapi.org/v2/everything"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &NewsSource{
		cfg:    cfg,
		client: xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		l:      l,
	}
}

// Name implements MarketSource.
func (s *NewsSource) Name() string { return NameNews }

type newsResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"articles"`
}

// Fetch implements MarketSource.
func (s *NewsSource) Fetch(ctx context.Context, market string, region models.Region, tf models.Timeframe) models.SourceData {
	if s.cfg.APIKey == "" {
		s.l.Warn("news api key not configured, using mock data", applogger.String("market", market))
		return s.mock()
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -domainrepo.LookbackDays(tf))

	var resp newsResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.cfg.BaseURL,
		QueryParams: map[string][]string{
			"q":        {market + " market"},
			"from":     {start.Format("2006-01-02")},
			"to":       {end.Format("2006-01-02")},
			"sortBy":   {"publishedAt"},
			"language": {"en"},
			"pageSize": {"20"},
			"apiKey":   {s.cfg.APIKey},
		},
	}, &resp)
	if err != nil || resp.Status != "ok" {
		s.l.Warn("news api unavailable, using mock data",
			applogger.String("market", market),
			applogger.String("api_status", resp.Status),
			applogger.Error(err),
		)
		return s.mock()
	}

	data := liveData(NameNews)
	data.FetchedAt = time.Now().UTC()

	var total float64
	themeCounts := make(map[string]int)
	for _, a := range resp.Articles {
		text := a.Title + " " + a.Description
		total += SentimentScore(text)
		for _, theme := range ExtractThemes(text) {
			themeCounts[theme]++
		}
	}

	avg := 0.0
	if len(resp.Articles) > 0 {
		avg = total / float64(len(resp.Articles))
	}

	data.Numbers["avg_sentiment"] = avg
	data.Numbers["news_volume"] = float64(len(resp.Articles))
	data.Numbers["article_count"] = float64(len(resp.Articles))
	data.Labels["sentiment_trend"] = sentimentTrend(avg)
	data.Topics = topThemes(themeCounts, 5)
	return data
}

// SentimentScore is a keyword-count polarity measure normalized by text
// length, roughly in [-1, 1].
func SentimentScore(text string) float64 {
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}

	score := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score--
		}
	}
	return float64(score) / float64(words)
}

// ExtractThemes returns the known themes mentioned in text.
func ExtractThemes(text string) []string {
	lower := strings.ToLower(text)
	var themes []string
	for theme, keywords := range themeKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				themes = append(themes, theme)
				break
			}
		}
	}
	return themes
}

func sentimentTrend(avg float64) string {
	switch {
	case avg > 0.1:
		return "positive"
	case avg < -0.1:
		return "negative"
	default:
		return "neutral"
	}
}

func topThemes(counts map[string]int, n int) []string {
	type tc struct {
		theme string
		count int
	}
	all := make([]tc, 0, len(counts))
	for theme, count := range counts {
		all = append(all, tc{theme, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].theme < all[j].theme
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]string, 0, len(all))
	for _, t := range all {
		out = append(out, t.theme)
	}
	return out
}

func (s *NewsSource) mock() models.SourceData {
	data := mockData(NameNews)
	data.FetchedAt = time.Now().UTC()
	data.Numbers["avg_sentiment"] = 0.3
	data.Numbers["news_volume"] = 15
	data.Numbers["article_count"] = 15
	data.Labels["sentiment_trend"] = "positive"
	data.Topics = []string{"earnings", "innovation", "growth"}
	return data
}

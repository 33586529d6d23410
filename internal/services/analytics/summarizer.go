package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TrendPulse/internal/domain/models"
	domainsvc "TrendPulse/internal/domain/service"
	applogger "TrendPulse/pkg/logger"
	"TrendPulse/pkg/util"
)

const (
	maxSummaryWords = 300
	summarySystem   = "You are a senior business analyst providing concise market insights. Focus on practical implications and actionable recommendations."
)

// MarketSummarizer renders findings into a narrative summary through a text
// completion backend, falling back to a deterministic template when the
// backend is unavailable or errors. Summarize never fails.
type MarketSummarizer struct {
	completer domainsvc.TextCompleter
	maxTokens int
	l         *applogger.Logger
}

// NewMarketSummarizer creates the summarizer.
func NewMarketSummarizer(completer domainsvc.TextCompleter, maxTokens int, l *applogger.Logger) *MarketSummarizer {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &MarketSummarizer{completer: completer, maxTokens: maxTokens, l: l}
}

// Summarize implements service.Summarizer.
func (s *MarketSummarizer) Summarize(ctx context.Context, findings []models.TrendFinding, req models.AnalysisRequest) string {
	if s.completer == nil || !s.completer.Ready() {
		s.l.Debug("text completion unavailable, using template summary", applogger.String("market", req.Market))
		return s.fallback(findings, req)
	}

	prompt := buildPrompt(findings, req)
	out, err := s.completer.Complete(ctx, summarySystem, prompt, s.maxTokens)
	if err != nil || strings.TrimSpace(out) == "" {
		s.l.Warn("summary generation failed, using template summary",
			applogger.String("market", req.Market),
			applogger.Error(err),
		)
		return s.fallback(findings, req)
	}
	return util.TruncateWords(out, maxSummaryWords)
}

func buildPrompt(findings []models.TrendFinding, req models.AnalysisRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Market Analysis: %s sector in %s region over %s timeframe\n\n",
		util.Title(req.Market), req.Region, req.Timeframe)

	b.WriteString("Key Trends Identified:\n")
	for i, f := range findings {
		fmt.Fprintf(&b, "%d. [%s] %s (Confidence: %.0f%%)\n", i+1, f.Impact, f.Name, f.Confidence*100)
		fmt.Fprintf(&b, "   %s\n", f.Description)
		if len(f.SupportingData) > 0 {
			n := len(f.SupportingData)
			if n > 3 {
				n = 3
			}
			fmt.Fprintf(&b, "   Supporting data: %s\n", strings.Join(f.SupportingData[:n], ", "))
		}
	}

	b.WriteString("\nPlease provide a concise business summary (max 300 words) that:\n")
	b.WriteString("1. Highlights the most important trends and their implications\n")
	b.WriteString("2. Provides actionable insights for business decision-making\n")
	b.WriteString("3. Uses clear, professional language suitable for executives\n")
	b.WriteString("4. Focuses on practical implications rather than technical details\n")
	return b.String()
}

// fallback assembles a deterministic summary grouped by impact.
func (s *MarketSummarizer) fallback(findings []models.TrendFinding, req models.AnalysisRequest) string {
	var positive, negative, neutral []models.TrendFinding
	for _, f := range findings {
		switch f.Impact {
		case models.ImpactPositive:
			positive = append(positive, f)
		case models.ImpactNegative:
			negative = append(negative, f)
		default:
			neutral = append(neutral, f)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Market Analysis Summary: %s Sector\n", util.Title(req.Market))
	fmt.Fprintf(&b, "Region: %s | Timeframe: %s\n\n", req.Region, req.Timeframe)

	b.WriteString("Key Findings:\n")
	writeGroup(&b, "Positive Trends:", positive, 2)
	writeGroup(&b, "Areas of Concern:", negative, 2)
	writeGroup(&b, "Neutral Observations:", neutral, 1)

	b.WriteString("\nRecommendations:\n")
	if hasHighConfidence(findings) {
		b.WriteString("- Monitor high-confidence trends closely for strategic planning\n")
	}
	if len(positive) > 0 {
		b.WriteString("- Consider capitalizing on positive market momentum\n")
	}
	if len(negative) > 0 {
		b.WriteString("- Develop risk mitigation strategies for identified concerns\n")
	}
	b.WriteString("- Continue monitoring market conditions for emerging opportunities\n")

	fmt.Fprintf(&b, "\nAnalysis completed on %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))

	return util.TruncateWords(b.String(), maxSummaryWords)
}

func writeGroup(b *strings.Builder, header string, findings []models.TrendFinding, limit int) {
	if len(findings) == 0 {
		return
	}
	if len(findings) > limit {
		findings = findings[:limit]
	}
	b.WriteString(header + "\n")
	for _, f := range findings {
		fmt.Fprintf(b, "- %s: %s\n", f.Name, f.Description)
	}
}

func hasHighConfidence(findings []models.TrendFinding) bool {
	for _, f := range findings {
		if f.Confidence > 0.7 {
			return true
		}
	}
	return false
}

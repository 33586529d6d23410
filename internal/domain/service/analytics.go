package service

import (
	"context"

	"TrendPulse/internal/domain/models"
)

// TrendAnalyzer derives ordered trend findings from an aggregated dataset.
// Deterministic and pure: the same dataset always yields the same findings.
type TrendAnalyzer interface {
	Analyze(dataset *models.Dataset) []models.TrendFinding
}

// Summarizer turns findings into a bounded narrative summary. Never fails:
// when the text-generation backend is unavailable it falls back to a
// deterministic template assembled from the findings.
type Summarizer interface {
	Summarize(ctx context.Context, findings []models.TrendFinding, req models.AnalysisRequest) string
}

// TextCompleter is the abstract text-generation capability the summarizer
// builds on.
type TextCompleter interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
	Ready() bool
}

package models

// Requests and responses for the analysis HTTP endpoints. Defined in domain
// for consistency and reuse.

type AnalyzeRequest struct {
	Market    string `json:"market" validate:"required,min=2,max=64"`
	Region    string `json:"region" default:"GLOBAL" validate:"oneof=US EU ASIA GLOBAL"`
	Timeframe string `json:"timeframe" default:"1w" validate:"oneof=1d 1w 1m 3m 1y"`
	APIKey    string `json:"api_key" validate:"required"`
}

type AnalyzeResponse struct {
	AnalysisID          string `json:"analysis_id"`
	Status              string `json:"status"`
	Message             string `json:"message"`
	EstimatedCompletion string `json:"estimated_completion"`
}

type ResultsQuery struct {
	APIKey string `query:"api_key" json:"api_key" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=100"`
}

type ServiceInfo struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Endpoints  map[string]string `json:"endpoints"`
	Regions    []string          `json:"supported_regions"`
	Timeframes []string          `json:"supported_timeframes"`
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

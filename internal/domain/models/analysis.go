package models

import "time"

// Region identifies the geographic scope of an analysis.
type Region string

const (
	RegionUS     Region = "US"
	RegionEU     Region = "EU"
	RegionAsia   Region = "ASIA"
	RegionGlobal Region = "GLOBAL"
)

// Timeframe identifies the lookback window of an analysis.
type Timeframe string

const (
	TFDaily     Timeframe = "1d"
	TFWeekly    Timeframe = "1w"
	TFMonthly   Timeframe = "1m"
	TFQuarterly Timeframe = "3m"
	TFYearly    Timeframe = "1y"
)

// JobStatus tracks the lifecycle of a submitted analysis.
// Transitions are forward-only: pending -> running -> completed|failed.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Impact classifies the expected effect of a trend finding.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// AnalysisRequest describes one market analysis to run. Immutable once accepted.
type AnalysisRequest struct {
	Market    string    `json:"market"`
	Region    Region    `json:"region"`
	Timeframe Timeframe `json:"timeframe"`
}

// SourceData is the unified payload one data source produces for a request.
// Mock marks datasets synthesized by the fallback path; the shape is identical
// to live data so downstream consumers do not branch on provenance.
type SourceData struct {
	Source    string             `json:"source"`
	Mock      bool               `json:"mock"`
	FetchedAt time.Time          `json:"fetched_at"`
	Numbers   map[string]float64 `json:"numbers,omitempty"`
	Labels    map[string]string  `json:"labels,omitempty"`
	Topics    []string           `json:"topics,omitempty"`
}

// Dataset is the merged output of all source adapters, keyed by source name.
type Dataset struct {
	Market    string                `json:"market"`
	Region    Region                `json:"region"`
	Timeframe Timeframe             `json:"timeframe"`
	Sources   map[string]SourceData `json:"sources"`
}

// AllMock reports whether every collected source fell back to synthetic data.
func (d *Dataset) AllMock() bool {
	for _, sd := range d.Sources {
		if !sd.Mock {
			return false
		}
	}
	return len(d.Sources) > 0
}

// TrendFinding is a single labeled trend conclusion. Produced once per
// analysis, immutable thereafter.
type TrendFinding struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Confidence     float64  `json:"confidence"`
	Impact         Impact   `json:"impact"`
	SupportingData []string `json:"supporting_data"`
}

// AnalysisResult holds the finished output of a completed job.
type AnalysisResult struct {
	Findings   []TrendFinding `json:"findings"`
	Summary    string         `json:"summary"`
	AllMock    bool           `json:"all_mock"`
	DurationMS int64          `json:"duration_ms"`
}

// Job is the lifecycle record of one submitted analysis. The store owns a Job
// exclusively; callers receive copies.
type Job struct {
	ID          string          `json:"id"`
	Status      JobStatus       `json:"status"`
	Request     AnalysisRequest `json:"request"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      *AnalysisResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Clone returns a deep copy of the job. Stores hand out clones so callers
// can never mutate the owned record.
func (j *Job) Clone() *Job {
	c := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Result != nil {
		r := *j.Result
		r.Findings = make([]TrendFinding, len(j.Result.Findings))
		copy(r.Findings, j.Result.Findings)
		c.Result = &r
	}
	return &c
}

// Summary is the compact job view returned by list endpoints.
type Summary struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Market    string    `json:"market"`
	Region    Region    `json:"region"`
	Timeframe Timeframe `json:"timeframe"`
	CreatedAt time.Time `json:"created_at"`
}

// Summarize projects a Job into its list view.
func (j *Job) Summarize() Summary {
	return Summary{
		ID:        j.ID,
		Status:    j.Status,
		Market:    j.Request.Market,
		Region:    j.Request.Region,
		Timeframe: j.Request.Timeframe,
		CreatedAt: j.CreatedAt,
	}
}

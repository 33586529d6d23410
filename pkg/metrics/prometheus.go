package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	jobsSubmitted   prometheus.Counter
	jobsFinished    *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	sourceFallbacks *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
	jobsStored      prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		jobsSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trendpulse_jobs_submitted_total",
				Help: "Total number of analysis jobs submitted",
			},
		),
		jobsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendpulse_jobs_finished_total",
				Help: "Total number of analysis jobs that reached a terminal state",
			},
			[]string{"status"},
		),
		jobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trendpulse_job_duration_seconds",
				Help:    "End-to-end analysis job duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		),
		sourceFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendpulse_source_fallbacks_total",
				Help: "Total number of data source calls that fell back to mock data",
			},
			[]string{"source"},
		),
		stepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trendpulse_step_duration_seconds",
				Help:    "Duration of individual pipeline steps in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		jobsStored: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "trendpulse_jobs_stored",
				Help: "Number of jobs currently held by the result store",
			},
		),
	}
}

// RecordJobSubmitted records a submitted job.
func (r *Recorder) RecordJobSubmitted() {
	r.jobsSubmitted.Inc()
}

// RecordJobFinished records a terminal job with its total duration.
func (r *Recorder) RecordJobFinished(status string, duration time.Duration) {
	r.jobsFinished.WithLabelValues(status).Inc()
	r.jobDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordSourceFallback records a data source falling back to mock data.
func (r *Recorder) RecordSourceFallback(source string) {
	r.sourceFallbacks.WithLabelValues(source).Inc()
}

// RecordStepDuration records one pipeline step duration.
func (r *Recorder) RecordStepDuration(step string, duration time.Duration) {
	r.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordJobsStored records the current store size.
func (r *Recorder) RecordJobsStored(n int) {
	r.jobsStored.Set(float64(n))
}

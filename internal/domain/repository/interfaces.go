package repository

import (
	"context"
	"errors"
	"time"

	"TrendPulse/internal/domain/models"
)

// ErrJobNotFound is returned when a job id is unknown or already expired.
var ErrJobNotFound = errors.New("job not found")

// MarketSource fetches data for one external provider. Implementations never
// fail: network errors, non-2xx responses, malformed payloads and timeouts all
// resolve to a deterministic mock dataset with Mock set.
type MarketSource interface {
	Name() string
	Fetch(ctx context.Context, market string, region models.Region, tf models.Timeframe) models.SourceData
}

// JobStore owns the job map for the life of each job. All mutations are
// atomic relative to reads of the same id. Expired jobs are unreachable.
type JobStore interface {
	Put(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	Update(ctx context.Context, id string, fn func(*models.Job)) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]models.Summary, error)
	EvictExpired(ctx context.Context) int
	Len(ctx context.Context) int
}

// EventPublisher emits job lifecycle events to an external broker.
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, event string, job *models.Job) error
	Close() error
}

// Archive persists completed analyses to long-term storage. Insert-only.
type Archive interface {
	StoreResult(ctx context.Context, job *models.Job) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordJobSubmitted()
	RecordJobFinished(status string, duration time.Duration)
	RecordSourceFallback(source string)
	RecordStepDuration(step string, duration time.Duration)
	RecordJobsStored(n int)
}

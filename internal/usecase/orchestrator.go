package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
	domainsvc "TrendPulse/internal/domain/service"
	applogger "TrendPulse/pkg/logger"
	"TrendPulse/pkg/queue"
)

// Lifecycle event names published to the broker, when one is configured.
const (
	EventJobSubmitted = "job_submitted"
	EventJobStarted   = "job_started"
	EventJobCompleted = "job_completed"
	EventJobFailed    = "job_failed"
	EventJobDeleted   = "job_deleted"
)

// AnalysisOrchestrator owns the request lifecycle: it creates the job record,
// schedules the background pipeline and advances the job through its states.
// Submission never blocks on external I/O.
type AnalysisOrchestrator struct {
	store      domainrepo.JobStore
	collector  *DataCollector
	analyzer   domainsvc.TrendAnalyzer
	summarizer domainsvc.Summarizer
	pool       *queue.WorkerPool
	publisher  domainrepo.EventPublisher
	archive    domainrepo.Archive
	metrics    domainrepo.Metrics
	l          *applogger.Logger
}

// NewAnalysisOrchestrator creates the orchestrator. publisher and archive may
// be nil when the corresponding backends are disabled.
func NewAnalysisOrchestrator(
	store domainrepo.JobStore,
	collector *DataCollector,
	analyzer domainsvc.TrendAnalyzer,
	summarizer domainsvc.Summarizer,
	pool *queue.WorkerPool,
	publisher domainrepo.EventPublisher,
	archive domainrepo.Archive,
	metrics domainrepo.Metrics,
	l *applogger.Logger,
) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{
		store:      store,
		collector:  collector,
		analyzer:   analyzer,
		summarizer: summarizer,
		pool:       pool,
		publisher:  publisher,
		archive:    archive,
		metrics:    metrics,
		l:          l,
	}
}

// Submit creates a pending job and schedules its background execution. The
// returned job is already failed when the worker queue is saturated; callers
// still get an id they can poll.
func (o *AnalysisOrchestrator) Submit(ctx context.Context, req models.AnalysisRequest) (*models.Job, error) {
	job := &models.Job{
		ID:        uuid.NewString(),
		Status:    models.StatusPending,
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.Put(ctx, job); err != nil {
		return nil, err
	}
	if o.metrics != nil {
		o.metrics.RecordJobSubmitted()
	}
	o.publish(EventJobSubmitted, job)

	id := job.ID
	err := o.pool.Enqueue(queue.Task{
		ID:      id,
		Run:     func(taskCtx context.Context) error { return o.run(taskCtx, id) },
		OnError: func(err error) { o.fail(id, err) },
	})
	if err != nil {
		o.l.Warn("job rejected, worker queue saturated", applogger.String("job_id", id), applogger.Error(err))
		o.fail(id, err)
		return o.store.Get(ctx, id)
	}

	o.l.Info("job submitted",
		applogger.String("job_id", id),
		applogger.String("market", req.Market),
		applogger.String("region", string(req.Region)),
		applogger.String("timeframe", string(req.Timeframe)),
	)
	return job, nil
}

// Get returns the job for id or ErrJobNotFound.
func (o *AnalysisOrchestrator) Get(ctx context.Context, id string) (*models.Job, error) {
	return o.store.Get(ctx, id)
}

// List returns up to limit job summaries, newest first.
func (o *AnalysisOrchestrator) List(ctx context.Context, limit int) ([]models.Summary, error) {
	return o.store.List(ctx, limit)
}

// Delete removes a job from the store.
func (o *AnalysisOrchestrator) Delete(ctx context.Context, id string) error {
	job, err := o.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := o.store.Delete(ctx, id); err != nil {
		return err
	}
	o.publish(EventJobDeleted, job)
	return nil
}

// run executes the full pipeline for one job. Only unexpected failures reach
// the error return; source and summarizer degradation is absorbed by their
// fallbacks.
func (o *AnalysisOrchestrator) run(ctx context.Context, id string) error {
	job, err := o.store.Get(ctx, id)
	if err != nil {
		// evicted or deleted before the worker picked it up
		return err
	}

	if err := o.store.Update(ctx, id, func(j *models.Job) { j.Status = models.StatusRunning }); err != nil {
		return err
	}
	job.Status = models.StatusRunning
	o.publish(EventJobStarted, job)

	start := time.Now()

	stepStart := time.Now()
	dataset := o.collector.Collect(ctx, job.Request)
	o.recordStep("collect", stepStart)

	stepStart = time.Now()
	findings := o.analyzer.Analyze(dataset)
	o.recordStep("analyze", stepStart)

	stepStart = time.Now()
	summary := o.summarizer.Summarize(ctx, findings, job.Request)
	o.recordStep("summarize", stepStart)

	result := &models.AnalysisResult{
		Findings:   findings,
		Summary:    summary,
		AllMock:    dataset.AllMock(),
		DurationMS: time.Since(start).Milliseconds(),
	}

	now := time.Now().UTC()
	err = o.store.Update(ctx, id, func(j *models.Job) {
		j.Status = models.StatusCompleted
		j.CompletedAt = &now
		j.Result = result
	})
	if err != nil {
		return err
	}

	if o.metrics != nil {
		o.metrics.RecordJobFinished(string(models.StatusCompleted), time.Since(start))
	}
	o.l.Info("job completed",
		applogger.String("job_id", id),
		applogger.Int("findings", len(findings)),
		applogger.Bool("all_mock", result.AllMock),
		applogger.Duration("duration_ms", time.Since(start)),
	)

	if done, err := o.store.Get(ctx, id); err == nil {
		o.publish(EventJobCompleted, done)
		o.archiveJob(done)
	}
	return nil
}

// fail moves a job to its terminal failed state. Safe to call from the task
// error boundary: the store freezes jobs that already completed.
func (o *AnalysisOrchestrator) fail(id string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	err := o.store.Update(ctx, id, func(j *models.Job) {
		j.Status = models.StatusFailed
		j.CompletedAt = &now
		j.Error = cause.Error()
	})
	if err != nil {
		o.l.Error("failed to record job failure", applogger.String("job_id", id), applogger.Error(err))
		return
	}

	o.l.Error("job failed", applogger.String("job_id", id), applogger.Error(cause))

	job, err := o.store.Get(ctx, id)
	if err != nil {
		return
	}
	if o.metrics != nil {
		o.metrics.RecordJobFinished(string(models.StatusFailed), now.Sub(job.CreatedAt))
	}
	o.publish(EventJobFailed, job)
	o.archiveJob(job)
}

func (o *AnalysisOrchestrator) publish(event string, job *models.Job) {
	if o.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.publisher.PublishJobEvent(ctx, event, job); err != nil {
		o.l.Warn("event publish failed",
			applogger.String("event", event),
			applogger.String("job_id", job.ID),
			applogger.Error(err),
		)
	}
}

func (o *AnalysisOrchestrator) archiveJob(job *models.Job) {
	if o.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.archive.StoreResult(ctx, job); err != nil {
		o.l.Warn("archive write failed", applogger.String("job_id", job.ID), applogger.Error(err))
	}
}

func (o *AnalysisOrchestrator) recordStep(step string, start time.Time) {
	if o.metrics != nil {
		o.metrics.RecordStepDuration(step, time.Since(start))
	}
}

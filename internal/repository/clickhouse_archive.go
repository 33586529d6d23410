package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"TrendPulse/internal/domain/models"
	pkgch "TrendPulse/pkg/clickhouse"
	applogger "TrendPulse/pkg/logger"
)

// analysesSchema creates the archive table. Insert-only, deduplicated by
// job id via ReplacingMergeTree.
var analysesSchema = []string{
	`CREATE TABLE IF NOT EXISTS analyses (
        job_id        String,
        market        LowCardinality(String),
        region        LowCardinality(String),
        timeframe     LowCardinality(String),
        status        LowCardinality(String),
        all_mock      UInt8,
        finding_count UInt16,
        summary       String,
        findings      String,
        duration_ms   Int64,
        created_at    DateTime64(3),
        completed_at  DateTime64(3)
    ) ENGINE = ReplacingMergeTree()
    ORDER BY (market, created_at, job_id)`,
}

// CHAnalysisArchive persists completed analyses to ClickHouse for offline
// querying. The live request path never reads from it.
type CHAnalysisArchive struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

// NewCHAnalysisArchive creates the archive and ensures its schema exists.
func NewCHAnalysisArchive(ch *pkgch.Client, l *applogger.Logger) (*CHAnalysisArchive, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ch.InitSchema(ctx, analysesSchema); err != nil {
		return nil, err
	}
	return &CHAnalysisArchive{client: ch, db: ch.DB(), l: l}, nil
}

// StoreResult inserts one terminal job. Jobs without a result are archived
// with empty findings so failure rates stay queryable.
func (a *CHAnalysisArchive) StoreResult(ctx context.Context, job *models.Job) error {
	start := time.Now()

	var (
		summary    string
		findings   = "[]"
		count      int
		allMock    uint8
		durationMS int64
	)
	if job.Result != nil {
		summary = job.Result.Summary
		count = len(job.Result.Findings)
		durationMS = job.Result.DurationMS
		if job.Result.AllMock {
			allMock = 1
		}
		if b, err := json.Marshal(job.Result.Findings); err == nil {
			findings = string(b)
		}
	}
	completedAt := job.CreatedAt
	if job.CompletedAt != nil {
		completedAt = *job.CompletedAt
	}

	const q = `INSERT INTO analyses
        (job_id, market, region, timeframe, status, all_mock, finding_count,
         summary, findings, duration_ms, created_at, completed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := a.db.ExecContext(ctx, q,
		job.ID,
		job.Request.Market,
		string(job.Request.Region),
		string(job.Request.Timeframe),
		string(job.Status),
		allMock,
		uint16(count),
		summary,
		findings,
		durationMS,
		job.CreatedAt,
		completedAt,
	)
	if err != nil {
		if a.l != nil {
			a.l.Error("clickhouse archive insert error",
				applogger.String("job_id", job.ID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("archive analysis: %w", err)
	}
	if a.l != nil {
		a.l.Debug("analysis archived",
			applogger.String("job_id", job.ID),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// Close releases the ClickHouse connection pool.
func (a *CHAnalysisArchive) Close() error {
	return a.client.Close()
}

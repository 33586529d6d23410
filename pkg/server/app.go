package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrendPulse/internal/domain/repository"
	"TrendPulse/pkg/config"
	xhttp "TrendPulse/pkg/http"
	applogger "TrendPulse/pkg/logger"
	"TrendPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	pool        *queue.WorkerPool
	store       repository.JobStore
	publisher   repository.EventPublisher
	archive     repository.Archive
	metrics     repository.Metrics
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	pool *queue.WorkerPool,
	store repository.JobStore,
	publisher repository.EventPublisher,
	archive repository.Archive,
	metrics repository.Metrics,
) *App {
	return &App{
		cfg:       cfg,
		logger:    l,
		pool:      pool,
		store:     store,
		publisher: publisher,
		archive:   archive,
		metrics:   metrics,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.logger, a.httpHandler, opts...)

	a.pool.Start(ctx)

	go a.sweepLoop(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("application started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Int("workers", a.cfg.Jobs.Workers),
		applogger.String("store", a.cfg.Store.Backend),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// sweepLoop periodically evicts expired jobs from the result store.
func (a *App) sweepLoop(ctx context.Context) {
	period := a.cfg.Jobs.SweepPeriod
	if period <= 0 {
		period = 5 * time.Minute
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := a.store.EvictExpired(ctx)
			if removed > 0 {
				a.logger.Debug("evicted expired jobs", applogger.Int("count", removed))
			}
			if a.metrics != nil {
				a.metrics.RecordJobsStored(a.store.Len(ctx))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	// Drain in-flight analysis jobs before closing infrastructure clients.
	a.pool.Stop()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("archive close error", applogger.Error(err))
		}
	}
	if closer, ok := a.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("store close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

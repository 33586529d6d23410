package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TrendPulse/pkg/logger"
)

// ErrQueueFull is returned by Enqueue when the task buffer is saturated.
var ErrQueueFull = errors.New("queue: task buffer full")

// ErrStopped is returned by Enqueue after the pool has been stopped.
var ErrStopped = errors.New("queue: pool stopped")

// Task is one unit of background work.
type Task struct {
	ID      string
	Run     func(ctx context.Context) error
	OnError func(err error)
}

// PoolConfig contains the configuration for the worker pool.
type PoolConfig struct {
	Workers   int // number of workers
	QueueSize int // size of the task buffer
}

// WorkerPool runs submitted tasks on a fixed set of workers. Each task has
// its own error boundary: a panic inside Run is recovered and routed to
// OnError instead of taking down the worker.
type WorkerPool struct {
	logger *logger.Logger
	config *PoolConfig
	tasks  chan Task
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewWorkerPool creates a worker pool.
func NewWorkerPool(lgr *logger.Logger, config *PoolConfig) *WorkerPool {
	if config == nil {
		config = &PoolConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}

	return &WorkerPool{
		logger: lgr,
		config: config,
		tasks:  make(chan Task, config.QueueSize),
	}
}

// Start launches the workers.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("worker pool started", logger.Int("workers", p.config.Workers))
}

// Enqueue submits a task without blocking. Returns ErrQueueFull when the
// buffer is saturated.
func (p *WorkerPool) Enqueue(task Task) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.runTask(ctx, task, id)
		}
	}
}

// runTask executes one task inside its error boundary.
func (p *WorkerPool) runTask(ctx context.Context, task Task, worker int) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("task panic: %v", r)
			p.logger.Error("task panicked",
				logger.String("task", task.ID),
				logger.Int("worker", worker),
				logger.Error(err),
			)
			if task.OnError != nil {
				task.OnError(err)
			}
		}
	}()

	if err := task.Run(ctx); err != nil {
		p.logger.Error("task failed",
			logger.String("task", task.ID),
			logger.Duration("duration_ms", time.Since(start)),
			logger.Error(err),
		)
		if task.OnError != nil {
			task.OnError(err)
		}
		return
	}

	p.logger.Debug("task done",
		logger.String("task", task.ID),
		logger.Duration("duration_ms", time.Since(start)),
	)
}

// Stop closes the task buffer and waits for in-flight tasks to finish.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

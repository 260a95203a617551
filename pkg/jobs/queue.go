package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work. Handlers look up their state by ID.
type Job struct {
	ID       string
	Type     string
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// ExhaustedFunc is called once a job has failed MaxRetries times or its
// retry could not be queued.
type ExhaustedFunc func(Job, error)

// ErrQueueFull is returned when the buffer has no room left.
var ErrQueueFull = errors.New("queue full")

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay doubles after every failed attempt up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	Logger        *zap.Logger
	OnExhausted   ExhaustedFunc
}

// Queue is an in-memory worker pool with delayed retries.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig

	jobs     chan Job
	retrying atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue that runs handler for every job.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = 30 * cfg.RetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.cfg.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Shutdown stops accepting work and waits for running handlers until ctx
// expires. Buffered jobs are dropped; jobs waiting for a retry are reported
// to OnExhausted.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return nil
	}
	q.cancel()
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.cfg.Logger.Info("queue stopped", zap.String("queue", q.name), zap.Int("dropped", q.Depth()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue %s shutdown: %w", q.name, ctx.Err())
	}
}

// Depth reports buffered jobs plus jobs waiting for a retry.
func (q *Queue) Depth() int {
	return len(q.jobs) + int(q.retrying.Load())
}

// Enqueue pushes a job without blocking.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.run(job); err != nil {
				q.handleFailure(job, err)
			}
		}
	}
}

// run converts a handler panic into an error so the worker survives.
func (q *Queue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return q.handler(q.ctx, job)
}

func (q *Queue) handleFailure(job Job, err error) {
	job.Attempt++
	fields := []zap.Field{zap.String("queue", q.name), zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err)}
	if job.Attempt >= q.cfg.MaxRetries {
		q.cfg.Logger.Error("job exceeded retries", fields...)
		q.exhaust(job, err)
		return
	}

	delay := q.backoff(job.Attempt)
	q.cfg.Logger.Warn("job failed, retrying", append(fields, zap.Duration("delay", delay))...)
	q.retrying.Add(1)
	go func(j Job) {
		defer q.retrying.Add(-1)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		var requeueErr error
		select {
		case <-q.ctx.Done():
			requeueErr = fmt.Errorf("queue %s stopped: %w", q.name, q.ctx.Err())
		case <-timer.C:
			requeueErr = q.Enqueue(j)
		}
		if requeueErr != nil {
			q.cfg.Logger.Error("failed to requeue job", zap.String("queue", q.name), zap.String("job_id", j.ID), zap.Error(requeueErr))
			q.exhaust(j, fmt.Errorf("requeue after %v: %w", err, requeueErr))
		}
	}(job)
}

// exhaust reports a job that will not run again, either because it used up
// its retries or because it could not be put back on the queue.
func (q *Queue) exhaust(job Job, err error) {
	if q.cfg.OnExhausted != nil {
		q.cfg.OnExhausted(job, err)
	}
}

func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.cfg.RetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= q.cfg.MaxRetryDelay {
			return q.cfg.MaxRetryDelay
		}
	}
	return delay
}

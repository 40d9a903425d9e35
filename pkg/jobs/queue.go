// Package jobs runs background work on a bounded worker pool with retries.
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

// ErrQueueFull is returned by TryEnqueue when the buffer has no room.
var ErrQueueFull = errors.New("queue full")

// ErrQueueClosed is returned by TryEnqueue before Start and after Drain or Stop.
var ErrQueueClosed = errors.New("queue closed")

// Job is one unit of background work.
type Job[T any] struct {
	ID       string
	Kind     string
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler[T any] func(context.Context, Job[T]) error

// QueueConfig sizes the pool and its retry policy. Retries back off
// exponentially from RetryDelay up to MaxRetryDelay.
type QueueConfig struct {
	Workers       int
	BufferSize    int
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	// OnGiveUp is called once for every job that is abandoned, either after
	// its last retry or because it could not be requeued.
	OnGiveUp func(kind string, err error)
	Logger   *zap.Logger
}

// Queue dispatches jobs to a fixed pool of goroutines.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     QueueConfig
	logger  *zap.Logger

	jobs    chan Job[T]
	pending atomic.Int64 // accepted and not yet finished, including retries in backoff

	mu        sync.Mutex
	accepting bool
	running   bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewQueue builds a queue around handler. Call Start before enqueueing.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	cfg.Workers = max(cfg.Workers, 1)
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	cfg.MaxRetries = max(cfg.MaxRetries, 0)
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = max(30*time.Second, cfg.RetryDelay)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job[T], cfg.BufferSize),
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for range q.cfg.Workers {
		q.wg.Add(1)
		go q.work()
	}
	q.running, q.accepting = true, true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for them. Buffered jobs are dropped.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.running, q.accepting = false, false
	q.mu.Unlock()

	q.wg.Wait()
	if dropped := q.pending.Load(); dropped > 0 {
		q.logger.Warn("queue stopped with undelivered jobs", zap.Int64("dropped", dropped))
		return
	}
	q.logger.Info("queue stopped")
}

// Drain refuses new jobs, waits for accepted ones (retries included) to
// finish, then stops. If ctx ends first the rest are dropped and an error
// reports how many.
func (q *Queue[T]) Drain(ctx context.Context) error {
	q.mu.Lock()
	q.accepting = false
	running, workersDone := q.running, q.ctx
	q.mu.Unlock()
	if !running {
		return nil
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	var err error
wait:
	for q.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			err = fmt.Errorf("queue %s: %d jobs undelivered: %w", q.name, q.pending.Load(), ctx.Err())
			break wait
		case <-workersDone.Done():
			err = fmt.Errorf("queue %s: %d jobs undelivered: %w", q.name, q.pending.Load(), workersDone.Err())
			break wait
		case <-ticker.C:
		}
	}
	q.Stop()
	return err
}

// Pending reports jobs accepted but not yet finished.
func (q *Queue[T]) Pending() int64 {
	return q.pending.Load()
}

// TryEnqueue adds job without blocking.
func (q *Queue[T]) TryEnqueue(job Job[T]) error {
	q.mu.Lock()
	accepting := q.accepting
	q.mu.Unlock()
	if !accepting {
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueClosed)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	q.pending.Add(1)
	select {
	case q.jobs <- job:
		return nil
	default:
		q.pending.Add(-1)
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue[T]) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(q.ctx, job); err != nil {
				q.retry(job, err)
				continue
			}
			q.pending.Add(-1)
		}
	}
}

// backoff returns the wait before the given retry attempt (1-based).
func (q *Queue[T]) backoff(attempt int) time.Duration {
	delay := q.cfg.RetryDelay
	for i := 1; i < attempt && delay < q.cfg.MaxRetryDelay; i++ {
		delay *= 2
	}
	return min(delay, q.cfg.MaxRetryDelay)
}

func (q *Queue[T]) retry(job Job[T], err error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.giveUp(job, err, "job exceeded retries")
		return
	}
	delay := q.backoff(job.Attempt)
	q.logger.Warn("job failed, retrying",
		zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Duration("backoff", delay), zap.Error(err))

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			select {
			case q.jobs <- job:
			default:
				q.giveUp(job, ErrQueueFull, "failed to requeue job")
			}
		}
	}()
}

func (q *Queue[T]) giveUp(job Job[T], err error, msg string) {
	q.pending.Add(-1)
	q.logger.Error(msg, zap.String("job_id", job.ID), zap.String("kind", job.Kind), zap.Int("attempt", job.Attempt), zap.Error(err))
	if q.cfg.OnGiveUp != nil {
		q.cfg.OnGiveUp(job.Kind, err)
	}
}

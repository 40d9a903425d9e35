package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shop-booking-api/pkg/jobs"
)

const drainTimeout = 5 * time.Second

// AsyncPublisher hands events to a worker queue so request handlers never
// wait on the broker. Failed publishes are retried with backoff; onDrop is
// told about events that are finally abandoned.
type AsyncPublisher struct {
	next  Publisher
	queue *jobs.Queue[Event]
}

// NewAsyncPublisher starts a queue publishing to next until Close is called.
// ctx supplies values only; its cancellation does not stop delivery, so Close
// can still flush after a shutdown signal. onDrop may be nil.
func NewAsyncPublisher(ctx context.Context, next Publisher, logger *zap.Logger, onDrop func(eventType string)) *AsyncPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := jobs.QueueConfig{
		Workers:       2,
		BufferSize:    256,
		MaxRetries:    4,
		RetryDelay:    500 * time.Millisecond,
		MaxRetryDelay: 10 * time.Second,
		Logger:        logger,
	}
	if onDrop != nil {
		cfg.OnGiveUp = func(kind string, _ error) { onDrop(kind) }
	}

	p := &AsyncPublisher{next: next}
	p.queue = jobs.NewQueue("events", func(ctx context.Context, job jobs.Job[Event]) error {
		return next.Publish(ctx, job.Payload)
	}, cfg)
	p.queue.Start(context.WithoutCancel(ctx))
	return p
}

// Publish enqueues evt. It only fails when the queue is closed or full.
func (p *AsyncPublisher) Publish(_ context.Context, evt Event) error {
	return p.queue.TryEnqueue(jobs.Job[Event]{ID: evt.ID, Kind: evt.Type, Payload: evt})
}

// Close flushes queued events for up to drainTimeout, then closes the
// underlying publisher. The drain error, if any, wins over the close error.
func (p *AsyncPublisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	drainErr := p.queue.Drain(ctx)
	closeErr := p.next.Close()
	if drainErr != nil {
		return drainErr
	}
	return closeErr
}

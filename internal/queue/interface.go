package queue

import (
	"context"
	"time"
)

// MessageInterface is one delivered analysis job. The consumer settles it
// exactly once: Ack after the meal is applied, Nack(true) to redeliver, or
// Nack(false) to dead-letter.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue carries async analysis jobs from the API to the worker.
type JobQueue interface {
	// Enqueue publishes job. Jobs with a NotBefore in the future are held back until then.
	Enqueue(ctx context.Context, job *Job) error

	// Consume delivers jobs until ctx is cancelled, with at most
	// prefetchCount unacknowledged messages outstanding. Both channels are
	// closed when delivery stops.
	Consume(ctx context.Context, prefetchCount int) (<-chan MessageInterface, <-chan error, error)

	Close() error

	// HealthCheck reports whether the broker connection is usable.
	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered jobs older than a retention window.
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}

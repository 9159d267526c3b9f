package notification

import (
	"context"
	"time"
)

// Queue is a durable named job queue supporting delayed execution, per-job
// retry with backoff, and depth introspection. Enqueue returns as soon as the
// job is stored; callers never wait for delivery.
type Queue interface {
	Publish(ctx context.Context, job *Job) error
	// Subscribe starts consuming jobs, invoking handler for each. A non-nil
	// handler error triggers the queue's retry machinery up to the job's
	// MaxAttempts; exhaustion hands the job to the dead-letter handler.
	Subscribe(ctx context.Context, handler func(*Job) error) error
	Stats(ctx context.Context) (*QueueStats, error)
	Close() error
}

// QueueStats is a point-in-time snapshot of queue depths.
type QueueStats struct {
	Ready      int64     `json:"ready"`
	Delayed    int64     `json:"delayed"`
	Processing int64     `json:"processing"`
	Failed     int64     `json:"failed"`
	Timestamp  time.Time `json:"timestamp"`
}

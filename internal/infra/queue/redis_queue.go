package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"
	"facilitator_activity_tracker/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultConsumeTimeout = 5 * time.Second
	delayedPollInterval   = time.Second
)

// RedisQueue is a durable named job queue on Redis: a list for ready jobs, a
// sorted set for delayed ones, a processing list for in-flight jobs and a
// dead-letter sorted set for jobs that exhausted their attempts. The client
// is injected so all queues in the process share one connection pool.
type RedisQueue struct {
	client *redis.Client
	name   string

	readyKey      string
	delayedKey    string
	processingKey string
	deadKey       string

	retryPolicy *RetryPolicy
	deadLetter  DeadLetterHandler

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRedisQueue builds a queue named name over the given client. When
// deadLetter is nil, failed jobs are parked on the queue's own dead set.
func NewRedisQueue(client *redis.Client, name string, retryPolicy *RetryPolicy, deadLetter DeadLetterHandler) *RedisQueue {
	q := &RedisQueue{
		client:        client,
		name:          name,
		readyKey:      name + ":ready",
		delayedKey:    name + ":delayed",
		processingKey: name + ":processing",
		deadKey:       name + ":dead",
		retryPolicy:   retryPolicy,
		stopChan:      make(chan struct{}),
	}
	if deadLetter == nil {
		deadLetter = NewRedisDeadLetterHandler(client, q.deadKey, nil)
	}
	q.deadLetter = deadLetter
	return q
}

// DeadKey exposes the dead-letter key for the retention sweeper.
func (q *RedisQueue) DeadKey() string { return q.deadKey }

// Publish stores a job for execution. Jobs with a future ExecuteAt go to the
// delayed set; everything else is immediately ready.
func (q *RedisQueue) Publish(ctx context.Context, job *notification.Job) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = 1
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if !job.ExecuteAt.IsZero() && job.ExecuteAt.After(time.Now()) {
		score := float64(job.ExecuteAt.UnixNano()) / 1e9
		if err := q.client.ZAdd(ctx, q.delayedKey, redis.Z{Score: score, Member: data}).Err(); err != nil {
			return fmt.Errorf("failed to publish delayed job: %w", err)
		}
		logger.Log.WithField("job_id", job.ID).WithField("kind", job.Kind).
			Debugf("Job scheduled on %s for %s", q.name, job.ExecuteAt.Format(time.RFC3339))
		return nil
	}

	if err := q.client.LPush(ctx, q.readyKey, data).Err(); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	logger.Log.WithField("job_id", job.ID).WithField("kind", job.Kind).
		Debugf("Job published to %s", q.name)
	return nil
}

// Subscribe starts the consumer loops. Each dequeued job is executed with
// retry per the queue's policy; exhaustion hands it to the dead-letter
// handler. At most one delivery attempt per job is in flight at a time.
func (q *RedisQueue) Subscribe(ctx context.Context, handler func(*notification.Job) error) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	q.wg.Add(2)
	go q.promoteDelayed(ctx)
	go q.consume(ctx, handler)

	logger.Log.Infof("Queue %s consumer started", q.name)
	return nil
}

func (q *RedisQueue) consume(ctx context.Context, handler func(*notification.Job) error) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.stopChan:
			return
		default:
			if err := q.consumeOne(ctx, handler); err != nil {
				logger.Log.Errorf("Queue %s: error consuming job: %v", q.name, err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (q *RedisQueue) consumeOne(ctx context.Context, handler func(*notification.Job) error) error {
	data, err := q.client.BRPopLPush(ctx, q.readyKey, q.processingKey, defaultConsumeTimeout).Result()
	if err == redis.Nil {
		return nil // timeout, nothing ready
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to move job to processing: %w", err)
	}

	var job notification.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		logger.Log.Errorf("Queue %s: dropping undecodable job: %v", q.name, err)
	} else if err := q.executeWithRetry(ctx, &job, handler); err != nil {
		logger.Log.WithField("job_id", job.ID).WithField("kind", job.Kind).
			Errorf("Queue %s: job failed after %d attempts: %v", q.name, job.Attempts, err)
		q.deadLetter.HandleFailedJob(&job, err)
	}

	if err := q.client.LRem(ctx, q.processingKey, 1, data).Err(); err != nil {
		logger.Log.Errorf("Queue %s: failed to clear processing entry: %v", q.name, err)
	}
	return nil
}

// executeWithRetry runs the handler until success, attempt exhaustion or
// context cancellation. Attempt N+1 strictly follows attempt N after the
// policy's backoff delay.
func (q *RedisQueue) executeWithRetry(ctx context.Context, job *notification.Job, handler func(*notification.Job) error) error {
	for {
		job.Attempts++

		err := handler(job)
		if err == nil {
			return nil
		}

		retry, delay := q.retryPolicy.ShouldRetry(job)
		if !retry {
			return err
		}

		logger.Log.WithField("job_id", job.ID).
			Warnf("Queue %s: job failed (attempt %d/%d), retrying in %v: %v",
				q.name, job.Attempts, job.MaxAttempts, delay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (q *RedisQueue) promoteDelayed(ctx context.Context) {
	defer q.wg.Done()

	ticker := time.NewTicker(delayedPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.stopChan:
			return
		case <-ticker.C:
			if err := q.moveReadyDelayed(ctx); err != nil && ctx.Err() == nil {
				logger.Log.Errorf("Queue %s: failed to promote delayed jobs: %v", q.name, err)
			}
		}
	}
}

func (q *RedisQueue) moveReadyDelayed(ctx context.Context) error {
	now := float64(time.Now().UnixNano()) / 1e9
	max := strconv.FormatFloat(now, 'f', -1, 64)

	jobs, err := q.client.ZRangeByScore(ctx, q.delayedKey, &redis.ZRangeBy{Min: "0", Max: max}).Result()
	if err != nil {
		return fmt.Errorf("failed to read delayed jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	pipe := q.client.Pipeline()
	for _, data := range jobs {
		pipe.LPush(ctx, q.readyKey, data)
	}
	pipe.ZRemRangeByScore(ctx, q.delayedKey, "0", max)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move delayed jobs: %w", err)
	}

	logger.Log.Debugf("Queue %s: promoted %d delayed jobs", q.name, len(jobs))
	return nil
}

// Stats returns the current depths of all four job sets.
func (q *RedisQueue) Stats(ctx context.Context) (*notification.QueueStats, error) {
	pipe := q.client.Pipeline()

	ready := pipe.LLen(ctx, q.readyKey)
	delayed := pipe.ZCard(ctx, q.delayedKey)
	processing := pipe.LLen(ctx, q.processingKey)
	dead := pipe.ZCard(ctx, q.deadKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	return &notification.QueueStats{
		Ready:      ready.Val(),
		Delayed:    delayed.Val(),
		Processing: processing.Val(),
		Failed:     dead.Val(),
		Timestamp:  time.Now(),
	}, nil
}

// Close stops the consumer loops and waits for in-flight work. The shared
// redis client is owned by the caller and stays open.
func (q *RedisQueue) Close() error {
	q.stopOnce.Do(func() { close(q.stopChan) })
	q.wg.Wait()
	logger.Log.Infof("Queue %s closed", q.name)
	return nil
}

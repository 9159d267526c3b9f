package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"
	"facilitator_activity_tracker/internal/infra/logger"

	"github.com/redis/go-redis/v9"
)

// DeadLetterHandler receives jobs that exhausted their attempts. Handling is
// terminal: the job is retained for inspection, never re-thrown to callers.
type DeadLetterHandler interface {
	HandleFailedJob(job *notification.Job, err error)
	FailedJobs(ctx context.Context, limit int) ([]*FailedJob, error)
}

// FailedJob is a dead-lettered job together with its final error.
type FailedJob struct {
	Job      *notification.Job `json:"job"`
	Error    string            `json:"error"`
	FailedAt time.Time         `json:"failed_at"`
	Attempts int               `json:"attempts"`
}

// RedisDeadLetterHandler parks failed jobs on a sorted set scored by failure
// time, so retention sweeps can prune by age. An optional callback observes
// each failure (the worker uses it to write the terminal "failed" log entry).
type RedisDeadLetterHandler struct {
	client *redis.Client
	key    string
	onFail func(job *notification.Job, err error)
}

func NewRedisDeadLetterHandler(client *redis.Client, key string, onFail func(job *notification.Job, err error)) *RedisDeadLetterHandler {
	return &RedisDeadLetterHandler{client: client, key: key, onFail: onFail}
}

func (d *RedisDeadLetterHandler) HandleFailedJob(job *notification.Job, err error) {
	// The callback runs first: the terminal log entry must be written even
	// when parking the job in redis fails.
	if d.onFail != nil {
		d.onFail(job, err)
	}

	failed := &FailedJob{
		Job:      job,
		Error:    err.Error(),
		FailedAt: time.Now(),
		Attempts: job.Attempts,
	}

	data, marshalErr := json.Marshal(failed)
	if marshalErr != nil {
		logger.Log.Errorf("Failed to marshal dead-lettered job %s: %v", job.ID, marshalErr)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	score := float64(failed.FailedAt.UnixNano()) / 1e9
	if redisErr := d.client.ZAdd(ctx, d.key, redis.Z{Score: score, Member: data}).Err(); redisErr != nil {
		logger.Log.Errorf("Failed to dead-letter job %s: %v", job.ID, redisErr)
		return
	}

	logger.Log.WithField("job_id", job.ID).WithField("kind", job.Kind).
		Warnf("Job dead-lettered after %d attempts: %v", job.Attempts, err)
}

// FailedJobs returns dead-lettered jobs, newest first.
func (d *RedisDeadLetterHandler) FailedJobs(ctx context.Context, limit int) ([]*FailedJob, error) {
	if limit <= 0 {
		limit = 50
	}

	entries, err := d.client.ZRevRange(ctx, d.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead-lettered jobs: %w", err)
	}

	failed := make([]*FailedJob, 0, len(entries))
	for _, data := range entries {
		var fj FailedJob
		if err := json.Unmarshal([]byte(data), &fj); err != nil {
			logger.Log.Errorf("Failed to unmarshal dead-lettered job: %v", err)
			continue
		}
		failed = append(failed, &fj)
	}
	return failed, nil
}

// RetentionSweeper periodically prunes dead-lettered jobs older than the
// retention window, bounding queue storage.
type RetentionSweeper struct {
	client    *redis.Client
	keys      []string
	retention time.Duration
	interval  time.Duration
}

func NewRetentionSweeper(client *redis.Client, keys []string, retention, interval time.Duration) *RetentionSweeper {
	return &RetentionSweeper{client: client, keys: keys, retention: retention, interval: interval}
}

func (s *RetentionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Log.Info("Dead-letter retention sweeper started")

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Dead-letter retention sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *RetentionSweeper) sweep(ctx context.Context) {
	cutoff := float64(time.Now().Add(-s.retention).UnixNano()) / 1e9
	max := strconv.FormatFloat(cutoff, 'f', -1, 64)

	for _, key := range s.keys {
		removed, err := s.client.ZRemRangeByScore(ctx, key, "0", max).Result()
		if err != nil {
			logger.Log.Errorf("Retention sweep failed for %s: %v", key, err)
			continue
		}
		if removed > 0 {
			logger.Log.Infof("Retention sweep pruned %d dead-lettered jobs from %s", removed, key)
		}
	}
}

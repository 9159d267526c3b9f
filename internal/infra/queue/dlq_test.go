package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"facilitator_activity_tracker/internal/app"
	"facilitator_activity_tracker/internal/domain/notification"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLogStore struct {
	entries []*notification.LogEntry
}

func (s *memLogStore) Append(_ context.Context, entry *notification.LogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memLogStore) Recent(_ context.Context, limit int) ([]*notification.LogEntry, error) {
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	return s.entries[:limit], nil
}

// unreachableClient returns a client whose commands fail: nothing listens on
// the address, so dead-letter storage errors out.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:0",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestExecuteWithRetryStopsAfterMaxAttempts(t *testing.T) {
	q := NewRedisQueue(unreachableClient(), "test", NewRetryPolicy(time.Millisecond), &RedisDeadLetterHandler{})

	job := &notification.Job{Kind: notification.KindSendEmail, MaxAttempts: 3}
	var calls int
	handler := func(*notification.Job) error {
		calls++
		return fmt.Errorf("smtp connection refused")
	}

	err := q.executeWithRetry(context.Background(), job, handler)
	require.Error(t, err)
	assert.Equal(t, 3, calls, "handler runs once per attempt, then stops")
	assert.Equal(t, 3, job.Attempts)
}

func TestExhaustedJobWritesSingleFailedLogEntry(t *testing.T) {
	store := &memLogStore{}
	dlq := NewRedisDeadLetterHandler(unreachableClient(), "test:dead", app.TerminalFailureLogger(store))
	q := NewRedisQueue(unreachableClient(), "test", NewRetryPolicy(time.Millisecond), dlq)

	job := &notification.Job{
		Kind: notification.KindSendEmail,
		Data: map[string]any{
			"to":             "ada@example.edu",
			"subject":        "Weekly reminder",
			"facilitator_id": int64(7),
		},
		MaxAttempts: 3,
	}

	handler := func(*notification.Job) error { return fmt.Errorf("smtp connection refused") }
	err := q.executeWithRetry(context.Background(), job, handler)
	require.Error(t, err)

	// What consumeOne does when the retry budget is spent.
	q.deadLetter.HandleFailedJob(job, err)

	require.Len(t, store.entries, 1, "exactly one terminal entry per exhausted job")
	entry := store.entries[0]
	assert.Equal(t, notification.LogStatusFailed, entry.Status)
	assert.Equal(t, "ada@example.edu", entry.Recipient)
	assert.Equal(t, "Weekly reminder", entry.Subject)
	assert.EqualValues(t, 7, entry.FacilitatorID)
	assert.Contains(t, entry.Error, "smtp connection refused")
}

func TestHandleFailedJobRunsCallbackWhenStorageFails(t *testing.T) {
	var callbacks int
	dlq := NewRedisDeadLetterHandler(unreachableClient(), "test:dead", func(*notification.Job, error) {
		callbacks++
	})

	job := &notification.Job{ID: "j1", Kind: notification.KindSendEmail, Attempts: 3, MaxAttempts: 3}
	dlq.HandleFailedJob(job, fmt.Errorf("smtp connection refused"))

	assert.Equal(t, 1, callbacks, "the terminal entry does not depend on dead-letter storage")
}

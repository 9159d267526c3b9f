package queue

import (
	"testing"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"

	"github.com/stretchr/testify/assert"
)

func TestBaseBackoffDoublesPerAttempt(t *testing.T) {
	p := NewRetryPolicy(2 * time.Second)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 1, expected: 2 * time.Second},
		{attempt: 2, expected: 4 * time.Second},
		{attempt: 3, expected: 8 * time.Second},
		{attempt: 4, expected: 16 * time.Second},
		{attempt: 5, expected: 32 * time.Second},
		{attempt: 6, expected: 32 * time.Second}, // capped at 16x base
		{attempt: 10, expected: 32 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, p.BaseBackoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestBackoffJitterStaysWithinQuarter(t *testing.T) {
	p := NewRetryPolicy(2 * time.Second)

	for i := 0; i < 100; i++ {
		d := p.Backoff(2)
		assert.GreaterOrEqual(t, d, 4*time.Second)
		assert.Less(t, d, 5*time.Second)
	}
}

func TestShouldRetry(t *testing.T) {
	p := NewRetryPolicy(2 * time.Second)

	job := &notification.Job{Attempts: 1, MaxAttempts: 3}
	retry, delay := p.ShouldRetry(job)
	assert.True(t, retry)
	assert.GreaterOrEqual(t, delay, 2*time.Second)

	job.Attempts = 3
	retry, delay = p.ShouldRetry(job)
	assert.False(t, retry)
	assert.Zero(t, delay)
}

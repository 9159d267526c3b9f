package queue

import (
	"math/rand"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"
)

// RetryPolicy computes the delay between attempts of a failed job:
// exponential from a fixed base, jittered, capped.
type RetryPolicy struct {
	baseDelay time.Duration
	maxDelay  time.Duration
}

func NewRetryPolicy(baseDelay time.Duration) *RetryPolicy {
	return &RetryPolicy{
		baseDelay: baseDelay,
		maxDelay:  baseDelay * 16,
	}
}

// ShouldRetry reports whether the job has attempts left and, if so, the delay
// before the next one.
func (p *RetryPolicy) ShouldRetry(job *notification.Job) (bool, time.Duration) {
	if job.Attempts >= job.MaxAttempts {
		return false, 0
	}
	return true, p.Backoff(job.Attempts)
}

// Backoff returns base * 2^(attempt-1), capped at 16x base. Jitter of up to
// +25% is applied so simultaneous retries do not align.
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := p.BaseBackoff(attempt)
	if jitterRange := int64(backoff / 4); jitterRange > 0 {
		backoff += time.Duration(rand.Int63n(jitterRange))
	}
	return backoff
}

// BaseBackoff is Backoff without jitter, for deterministic inspection.
func (p *RetryPolicy) BaseBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return p.baseDelay
	}
	backoff := p.baseDelay * time.Duration(1<<(attempt-1))
	if backoff > p.maxDelay {
		backoff = p.maxDelay
	}
	return backoff
}

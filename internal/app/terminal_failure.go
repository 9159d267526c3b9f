package app

import (
	"context"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"
	"facilitator_activity_tracker/internal/infra/logger"
)

// TerminalFailureLogger returns the dead-letter callback that records the
// single terminal "failed" log entry for a job that exhausted its attempts.
// The queue's retry machinery stops before this runs, so each exhausted job
// produces exactly one such entry.
func TerminalFailureLogger(logStore notification.LogStore) func(job *notification.Job, jobErr error) {
	return func(job *notification.Job, jobErr error) {
		entry := &notification.LogEntry{
			Type:          job.Kind,
			Recipient:     job.GetString("to"),
			Subject:       job.GetString("subject"),
			Status:        notification.LogStatusFailed,
			Error:         jobErr.Error(),
			FacilitatorID: job.GetInt64("facilitator_id"),
			AllocationID:  job.GetInt64("allocation_id"),
			WeekNumber:    int(job.GetInt64("week_number")),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logStore.Append(ctx, entry); err != nil {
			logger.Log.Errorf("Failed to record terminal failure for job %s: %v", job.ID, err)
		}
	}
}

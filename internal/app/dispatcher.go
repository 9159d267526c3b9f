package app

import (
	"context"
	"fmt"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"
	"facilitator_activity_tracker/internal/infra/logger"
)

// Default retry budgets per pipeline stage. Delivery jobs get one more
// attempt than decision jobs because transport failures are the common case.
const (
	DefaultEmailAttempts    = 3
	DefaultDecisionAttempts = 2
)

// EmailPayload is the content of a single outbound email plus the
// correlation ids carried into the notification log.
type EmailPayload struct {
	To      string
	Name    string
	Subject string
	Body    string

	FacilitatorID int64
	AllocationID  int64
	WeekNumber    int
}

// EmailOptions tunes a queued email job. Zero values take the defaults:
// no delay before the first attempt, DefaultEmailAttempts attempts.
type EmailOptions struct {
	Delay    time.Duration
	Attempts int
}

// Dispatcher turns notification requests into queued jobs. Scheduling
// decisions (reminders, alerts) go on the decision queue and actual sends go
// on the delivery queue, two stages with independent retry policies. Enqueue
// is fire-and-forget: callers never wait for delivery.
type Dispatcher struct {
	decisionQueue notification.Queue
	deliveryQueue notification.Queue
	logStore      notification.LogStore

	emailAttempts    int
	decisionAttempts int
}

// NewDispatcher builds a dispatcher. Non-positive attempt budgets fall back
// to the package defaults.
func NewDispatcher(decisionQueue, deliveryQueue notification.Queue, logStore notification.LogStore, emailAttempts, decisionAttempts int) *Dispatcher {
	if emailAttempts <= 0 {
		emailAttempts = DefaultEmailAttempts
	}
	if decisionAttempts <= 0 {
		decisionAttempts = DefaultDecisionAttempts
	}
	return &Dispatcher{
		decisionQueue:    decisionQueue,
		deliveryQueue:    deliveryQueue,
		logStore:         logStore,
		emailAttempts:    emailAttempts,
		decisionAttempts: decisionAttempts,
	}
}

// QueueEmail enqueues one send-email job on the delivery queue and records a
// "queued" log entry. The delivery worker records the terminal outcome.
func (d *Dispatcher) QueueEmail(ctx context.Context, payload EmailPayload, opts EmailOptions) error {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = d.emailAttempts
	}

	job := &notification.Job{
		Kind: notification.KindSendEmail,
		Data: map[string]any{
			"to":             payload.To,
			"name":           payload.Name,
			"subject":        payload.Subject,
			"body":           payload.Body,
			"facilitator_id": payload.FacilitatorID,
			"allocation_id":  payload.AllocationID,
			"week_number":    payload.WeekNumber,
		},
		MaxAttempts: attempts,
	}
	if opts.Delay > 0 {
		job.ExecuteAt = time.Now().Add(opts.Delay)
	}

	if err := d.deliveryQueue.Publish(ctx, job); err != nil {
		return fmt.Errorf("failed to queue email: %w", err)
	}

	d.log(ctx, &notification.LogEntry{
		Type:          notification.KindSendEmail,
		Recipient:     payload.To,
		Subject:       payload.Subject,
		Status:        notification.LogStatusQueued,
		FacilitatorID: payload.FacilitatorID,
		AllocationID:  payload.AllocationID,
		WeekNumber:    payload.WeekNumber,
	})
	return nil
}

// QueueFacilitatorReminder enqueues a reminder decision job. When processed,
// the handler resolves the facilitator and offering and spawns one
// send-email job.
func (d *Dispatcher) QueueFacilitatorReminder(ctx context.Context, facilitatorID int64, weekNumber int, allocationID int64, delay time.Duration) error {
	job := &notification.Job{
		Kind: notification.KindFacilitatorReminder,
		Data: map[string]any{
			"facilitator_id": facilitatorID,
			"week_number":    weekNumber,
			"allocation_id":  allocationID,
		},
		MaxAttempts: d.decisionAttempts,
	}
	if delay > 0 {
		job.ExecuteAt = time.Now().Add(delay)
	}

	if err := d.decisionQueue.Publish(ctx, job); err != nil {
		return fmt.Errorf("failed to queue facilitator reminder: %w", err)
	}
	return nil
}

// QueueManagerAlert enqueues an alert decision job. Fan-out to active
// managers happens at processing time, so managers added or removed in the
// meantime are reflected.
func (d *Dispatcher) QueueManagerAlert(ctx context.Context, alertType notification.AlertType, data map[string]any, delay time.Duration) error {
	job := &notification.Job{
		Kind: notification.KindManagerAlert,
		Data: map[string]any{
			"alert_type": string(alertType),
			"alert_data": data,
		},
		MaxAttempts: d.decisionAttempts,
	}
	if delay > 0 {
		job.ExecuteAt = time.Now().Add(delay)
	}

	if err := d.decisionQueue.Publish(ctx, job); err != nil {
		return fmt.Errorf("failed to queue manager alert: %w", err)
	}
	return nil
}

func (d *Dispatcher) log(ctx context.Context, entry *notification.LogEntry) {
	if err := d.logStore.Append(ctx, entry); err != nil {
		logger.Log.Errorf("Failed to write notification log entry: %v", err)
	}
}

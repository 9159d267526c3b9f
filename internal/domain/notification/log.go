package notification

import (
	"context"
	"time"
)

// LogStatus is the delivery outcome recorded for a notification.
type LogStatus string

const (
	LogStatusQueued LogStatus = "queued"
	LogStatusSent   LogStatus = "sent"
	LogStatusFailed LogStatus = "failed"
)

// LogEntry is the short-lived side-effect record written around every email
// delivery attempt outcome. Entries expire after the store's retention
// window; the most recent ones also live on a bounded dashboard list.
type LogEntry struct {
	ID        string    `json:"id"`
	Type      JobKind   `json:"type"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Status    LogStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	MessageID string    `json:"message_id,omitempty"`

	FacilitatorID int64 `json:"facilitator_id,omitempty"`
	AllocationID  int64 `json:"allocation_id,omitempty"`
	WeekNumber    int   `json:"week_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// LogStore persists notification log entries with a fixed TTL and serves the
// bounded recent-activity list, newest first.
type LogStore interface {
	Append(ctx context.Context, entry *LogEntry) error
	Recent(ctx context.Context, limit int) ([]*LogEntry, error)
}

package notification

import (
	"fmt"
	"strings"
	"time"
)

// JobKind identifies the work a queued job carries.
type JobKind string

const (
	KindSendEmail           JobKind = "send-email"
	KindFacilitatorReminder JobKind = "facilitator-reminder"
	KindManagerAlert        JobKind = "manager-alert"
)

// AlertType classifies manager alerts.
type AlertType string

const (
	AlertOverdueSubmission   AlertType = "overdue-submission"
	AlertDeadlineApproaching AlertType = "deadline-approaching"
	AlertLateSubmission      AlertType = "late-submission"
)

// Job is a unit of work on a delivery or decision queue. Payload fields live
// in Data, keyed per kind; the typed accessors tolerate the numeric widening
// JSON round-trips introduce.
type Job struct {
	ID          string         `json:"id"`
	Kind        JobKind        `json:"kind"`
	Data        map[string]any `json:"data"`
	ExecuteAt   time.Time      `json:"execute_at"`
	CreatedAt   time.Time      `json:"created_at"`
	Attempts    int            `json:"attempts"`
	MaxAttempts int            `json:"max_attempts"`
}

// Validate checks the fields the queue cannot default.
func (j *Job) Validate() error {
	if strings.TrimSpace(string(j.Kind)) == "" {
		return fmt.Errorf("job kind is required")
	}
	if j.Data == nil {
		j.Data = make(map[string]any)
	}
	return nil
}

// GetString returns a string payload value, or "" when absent.
func (j *Job) GetString(key string) string {
	if v, ok := j.Data[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt64 returns an integer payload value. JSON unmarshalling delivers
// numbers as float64, so both forms are accepted.
func (j *Job) GetInt64(key string) int64 {
	if v, ok := j.Data[key]; ok {
		switch n := v.(type) {
		case int64:
			return n
		case int:
			return int64(n)
		case float64:
			return int64(n)
		}
	}
	return 0
}

package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

func TestDeadline(t *testing.T) {
	tests := []struct {
		name     string
		week     int
		expected time.Time
	}{
		{name: "week one is nine days after start", week: 1, expected: start.AddDate(0, 0, 9)},
		{name: "week two shifts by one week", week: 2, expected: start.AddDate(0, 0, 16)},
		{name: "week five", week: 5, expected: start.AddDate(0, 0, 37)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(Deadline(start, tt.week)))
		})
	}
}

func TestDeadlineIsStableAcrossEvaluationInstants(t *testing.T) {
	first := Deadline(start, 3)
	second := Deadline(start, 3)
	assert.True(t, first.Equal(second))
}

func TestIsOverdue(t *testing.T) {
	deadline := Deadline(start, 1)
	submitted := deadline.Add(-time.Hour)

	tests := []struct {
		name        string
		submittedAt *time.Time
		now         time.Time
		expected    bool
	}{
		{name: "unsubmitted before deadline", submittedAt: nil, now: deadline.Add(-time.Minute), expected: false},
		{name: "unsubmitted at deadline", submittedAt: nil, now: deadline, expected: false},
		{name: "unsubmitted past deadline", submittedAt: nil, now: deadline.Add(time.Minute), expected: true},
		{name: "submitted record is never overdue", submittedAt: &submitted, now: deadline.AddDate(0, 1, 0), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsOverdue(tt.submittedAt, start, 1, tt.now))
		})
	}
}

func TestIsDueWithin(t *testing.T) {
	deadline := Deadline(start, 1)
	window := 72 * time.Hour
	submitted := deadline.Add(-time.Hour)

	tests := []struct {
		name        string
		submittedAt *time.Time
		now         time.Time
		expected    bool
	}{
		{name: "deadline inside the window", submittedAt: nil, now: deadline.Add(-48 * time.Hour), expected: true},
		{name: "deadline exactly at window edge", submittedAt: nil, now: deadline.Add(-window), expected: true},
		{name: "deadline beyond the window", submittedAt: nil, now: deadline.Add(-window - time.Minute), expected: false},
		{name: "already overdue is excluded", submittedAt: nil, now: deadline.Add(time.Minute), expected: false},
		{name: "submitted is excluded", submittedAt: &submitted, now: deadline.Add(-48 * time.Hour), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDueWithin(tt.submittedAt, start, 1, tt.now, window))
		})
	}
}

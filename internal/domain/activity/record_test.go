package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverallProgress(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Record)
		expected Progress
	}{
		{
			name:     "fresh record has no completed tasks",
			mutate:   func(*Record) {},
			expected: Progress{Completed: 0, Pending: 0, NotStarted: 6, Total: 6, CompletionPercentage: 0},
		},
		{
			name: "all tasks done",
			mutate: func(r *Record) {
				r.AttendanceMonitoring = TaskDone
				r.FormOneGrading = TaskDone
				r.FormTwoGrading = TaskDone
				r.SummativeGrading = TaskDone
				r.CourseModeration = TaskDone
				r.IntranetSync = TaskDone
			},
			expected: Progress{Completed: 6, Pending: 0, NotStarted: 0, Total: 6, CompletionPercentage: 100},
		},
		{
			name: "mixed statuses",
			mutate: func(r *Record) {
				r.AttendanceMonitoring = TaskDone
				r.FormOneGrading = TaskDone
				r.FormTwoGrading = TaskDone
				r.SummativeGrading = TaskPending
				r.CourseModeration = TaskPending
			},
			expected: Progress{Completed: 3, Pending: 2, NotStarted: 1, Total: 6, CompletionPercentage: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(1, 1, 1)
			tt.mutate(rec)
			assert.Equal(t, tt.expected, rec.OverallProgress())
		})
	}
}

func TestIsFullyCompleted(t *testing.T) {
	rec := NewRecord(1, 1, 1)
	assert.False(t, rec.IsFullyCompleted())

	rec.AttendanceMonitoring = TaskDone
	rec.FormOneGrading = TaskDone
	rec.FormTwoGrading = TaskDone
	rec.SummativeGrading = TaskDone
	rec.CourseModeration = TaskDone
	assert.False(t, rec.IsFullyCompleted(), "five of six is not fully completed")

	rec.IntranetSync = TaskDone
	assert.True(t, rec.IsFullyCompleted())
}

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		name       string
		attendance []bool
		expected   float64
	}{
		{name: "no entries yields zero", attendance: nil, expected: 0},
		{name: "empty slice yields zero", attendance: []bool{}, expected: 0},
		{name: "all present", attendance: []bool{true, true, true}, expected: 100},
		{name: "three of five present", attendance: []bool{true, false, true, false, true}, expected: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(1, 1, 1)
			rec.Attendance = tt.attendance
			assert.InDelta(t, tt.expected, rec.AttendanceRate(), 0.0001)
		})
	}
}

func TestIsSubmitted(t *testing.T) {
	rec := NewRecord(1, 1, 1)
	require.False(t, rec.IsSubmitted())

	now := time.Now()
	rec.SubmittedAt = &now
	assert.True(t, rec.IsSubmitted())
}

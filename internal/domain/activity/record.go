package activity

import (
	"time"
)

// TaskStatus is the completion state of a single weekly task.
type TaskStatus string

const (
	TaskDone       TaskStatus = "Done"
	TaskPending    TaskStatus = "Pending"
	TaskNotStarted TaskStatus = "Not Started"
)

// NumTasks is the number of fixed task fields on a weekly record.
const NumTasks = 6

// MaxWeekNumber bounds the week number accepted for a record (field-level
// validation lives upstream; the deadline arithmetic itself tolerates any int).
const MaxWeekNumber = 20

// MaxAttendanceDays bounds the attendance sequence to one entry per weekday.
const MaxAttendanceDays = 7

// Record is one facilitator's weekly activity log for one course offering.
// At most one record exists per (allocation, week number); the repository
// enforces the constraint.
type Record struct {
	ID            int64
	AllocationID  int64
	FacilitatorID int64
	WeekNumber    int

	AttendanceMonitoring TaskStatus
	FormOneGrading       TaskStatus
	FormTwoGrading       TaskStatus
	SummativeGrading     TaskStatus
	CourseModeration     TaskStatus
	IntranetSync         TaskStatus

	Attendance []bool
	Notes      string

	// SubmittedAt is set exactly once, by the storage-level compare-and-swap
	// in Repository.Submit. Nil means not yet submitted.
	SubmittedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord returns a record for the given week with all tasks Not Started.
func NewRecord(allocationID, facilitatorID int64, weekNumber int) *Record {
	return &Record{
		AllocationID:         allocationID,
		FacilitatorID:        facilitatorID,
		WeekNumber:           weekNumber,
		AttendanceMonitoring: TaskNotStarted,
		FormOneGrading:       TaskNotStarted,
		FormTwoGrading:       TaskNotStarted,
		SummativeGrading:     TaskNotStarted,
		CourseModeration:     TaskNotStarted,
		IntranetSync:         TaskNotStarted,
	}
}

// TaskStatuses returns the six task fields in their fixed order.
func (r *Record) TaskStatuses() [NumTasks]TaskStatus {
	return [NumTasks]TaskStatus{
		r.AttendanceMonitoring,
		r.FormOneGrading,
		r.FormTwoGrading,
		r.SummativeGrading,
		r.CourseModeration,
		r.IntranetSync,
	}
}

// Progress summarises completion across the six task fields.
type Progress struct {
	Completed            int     `json:"completed"`
	Pending              int     `json:"pending"`
	NotStarted           int     `json:"notStarted"`
	Total                int     `json:"total"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

// OverallProgress counts Done/Pending/Not Started across the six task fields.
func (r *Record) OverallProgress() Progress {
	p := Progress{Total: NumTasks}
	for _, s := range r.TaskStatuses() {
		switch s {
		case TaskDone:
			p.Completed++
		case TaskPending:
			p.Pending++
		default:
			p.NotStarted++
		}
	}
	p.CompletionPercentage = float64(p.Completed) / NumTasks * 100
	return p
}

// IsFullyCompleted reports whether all six tasks are Done.
func (r *Record) IsFullyCompleted() bool {
	return r.OverallProgress().Completed == NumTasks
}

// AttendanceRate returns present-days over recorded-days as a percentage.
// A record with no attendance entries yields 0.
func (r *Record) AttendanceRate() float64 {
	if len(r.Attendance) == 0 {
		return 0
	}
	present := 0
	for _, p := range r.Attendance {
		if p {
			present++
		}
	}
	return float64(present) / float64(len(r.Attendance)) * 100
}

// IsSubmitted reports whether the one-way submission transition has happened.
func (r *Record) IsSubmitted() bool {
	return r.SubmittedAt != nil
}

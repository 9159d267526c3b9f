package app

import (
	"context"
	"fmt"
	"time"

	"facilitator_activity_tracker/internal/domain/activity"
	"facilitator_activity_tracker/internal/domain/allocation"
)

// TrackedRecord pairs a weekly record with its owning allocation, which
// carries the start date every deadline computation anchors on.
type TrackedRecord struct {
	Record     *activity.Record
	Allocation *allocation.Allocation
}

// Deadline returns the submission deadline for this record's week.
func (t *TrackedRecord) Deadline() time.Time {
	return activity.Deadline(t.Allocation.StartDate, t.Record.WeekNumber)
}

// TrackerService owns the lifecycle of weekly activity records: creation,
// edits, the one-way submission transition and the deadline-based scans the
// scheduler feeds on.
type TrackerService struct {
	records     activity.Repository
	allocations allocation.Repository
	now         func() time.Time
}

func NewTrackerService(records activity.Repository, allocations allocation.Repository) *TrackerService {
	return &TrackerService{
		records:     records,
		allocations: allocations,
		now:         time.Now,
	}
}

// CreateRecord validates and stores a fresh weekly record. The owning
// allocation must exist; the repository rejects a second record for the same
// (allocation, week) pair.
func (s *TrackerService) CreateRecord(ctx context.Context, rec *activity.Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	if _, err := s.allocations.GetByID(ctx, rec.AllocationID); err != nil {
		return fmt.Errorf("failed to resolve allocation %d: %w", rec.AllocationID, err)
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to create activity record: %w", err)
	}
	return nil
}

// UpdateRecord applies edits to task statuses, attendance and notes. The
// identity fields (allocation, facilitator, week) and the submission
// timestamp are not editable through this path.
func (s *TrackerService) UpdateRecord(ctx context.Context, rec *activity.Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return fmt.Errorf("failed to update activity record %d: %w", rec.ID, err)
	}
	return nil
}

// GetRecord returns one record by id.
func (s *TrackerService) GetRecord(ctx context.Context, id int64) (*activity.Record, error) {
	return s.records.GetByID(ctx, id)
}

// Submit marks the record as submitted at the current instant. The
// transition happens as a storage-level compare-and-swap, so exactly one of
// any concurrent submits wins; the rest see ErrAlreadySubmitted.
func (s *TrackerService) Submit(ctx context.Context, id int64) (*activity.Record, error) {
	rec, err := s.records.Submit(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to submit activity record %d: %w", id, err)
	}
	return rec, nil
}

// Progress returns the completion summary for one record.
func (s *TrackerService) Progress(ctx context.Context, id int64) (*activity.Progress, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := rec.OverallProgress()
	return &p, nil
}

// IsOverdue evaluates the lateness predicate for one record against the
// owning allocation's start date.
func (s *TrackerService) IsOverdue(ctx context.Context, id int64) (bool, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	alloc, err := s.allocations.GetByID(ctx, rec.AllocationID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve allocation %d: %w", rec.AllocationID, err)
	}
	return activity.IsOverdue(rec.SubmittedAt, alloc.StartDate, rec.WeekNumber, s.now()), nil
}

// FindOverdue returns every unsubmitted record whose deadline has passed.
func (s *TrackerService) FindOverdue(ctx context.Context) ([]*TrackedRecord, error) {
	now := s.now()
	return s.scanUnsubmitted(ctx, func(rec *activity.Record, alloc *allocation.Allocation) bool {
		return activity.IsOverdue(rec.SubmittedAt, alloc.StartDate, rec.WeekNumber, now)
	})
}

// FindDueWithin returns every unsubmitted record whose deadline falls inside
// the coming window. Already-overdue records are excluded.
func (s *TrackerService) FindDueWithin(ctx context.Context, window time.Duration) ([]*TrackedRecord, error) {
	now := s.now()
	return s.scanUnsubmitted(ctx, func(rec *activity.Record, alloc *allocation.Allocation) bool {
		return activity.IsDueWithin(rec.SubmittedAt, alloc.StartDate, rec.WeekNumber, now, window)
	})
}

// FindPendingSubmission returns every unsubmitted record regardless of
// deadline state.
func (s *TrackerService) FindPendingSubmission(ctx context.Context) ([]*TrackedRecord, error) {
	return s.scanUnsubmitted(ctx, func(*activity.Record, *allocation.Allocation) bool { return true })
}

func (s *TrackerService) scanUnsubmitted(ctx context.Context, keep func(*activity.Record, *allocation.Allocation) bool) ([]*TrackedRecord, error) {
	recs, err := s.records.ListUnsubmitted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsubmitted records: %w", err)
	}

	allocs := make(map[int64]*allocation.Allocation)
	var out []*TrackedRecord
	for _, rec := range recs {
		alloc, ok := allocs[rec.AllocationID]
		if !ok {
			alloc, err = s.allocations.GetByID(ctx, rec.AllocationID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve allocation %d: %w", rec.AllocationID, err)
			}
			allocs[rec.AllocationID] = alloc
		}
		if keep(rec, alloc) {
			out = append(out, &TrackedRecord{Record: rec, Allocation: alloc})
		}
	}
	return out, nil
}

func validateRecord(rec *activity.Record) error {
	if rec.WeekNumber < 1 || rec.WeekNumber > activity.MaxWeekNumber {
		return fmt.Errorf("week number %d out of range 1..%d", rec.WeekNumber, activity.MaxWeekNumber)
	}
	if len(rec.Attendance) > activity.MaxAttendanceDays {
		return fmt.Errorf("attendance sequence longer than %d days", activity.MaxAttendanceDays)
	}
	for _, st := range rec.TaskStatuses() {
		switch st {
		case activity.TaskDone, activity.TaskPending, activity.TaskNotStarted:
		default:
			return fmt.Errorf("unknown task status %q", st)
		}
	}
	return nil
}

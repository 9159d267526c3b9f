package scheduler

import (
	"context"
	"testing"
	"time"

	"facilitator_activity_tracker/internal/app"
	"facilitator_activity_tracker/internal/domain/activity"
	"facilitator_activity_tracker/internal/domain/allocation"
	"facilitator_activity_tracker/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureQueue struct {
	published []*notification.Job
}

func (q *captureQueue) Publish(_ context.Context, job *notification.Job) error {
	q.published = append(q.published, job)
	return nil
}

func (q *captureQueue) Subscribe(context.Context, func(*notification.Job) error) error { return nil }

func (q *captureQueue) Stats(context.Context) (*notification.QueueStats, error) {
	return &notification.QueueStats{}, nil
}

func (q *captureQueue) Close() error { return nil }

type nopLogStore struct{}

func (nopLogStore) Append(context.Context, *notification.LogEntry) error { return nil }
func (nopLogStore) Recent(context.Context, int) ([]*notification.LogEntry, error) {
	return nil, nil
}

type stubActivityRepo struct {
	unsubmitted []*activity.Record
}

func (r *stubActivityRepo) Create(context.Context, *activity.Record) error { return nil }
func (r *stubActivityRepo) GetByID(context.Context, int64) (*activity.Record, error) {
	return nil, nil
}
func (r *stubActivityRepo) GetByAllocationAndWeek(context.Context, int64, int) (*activity.Record, error) {
	return nil, nil
}
func (r *stubActivityRepo) Update(context.Context, *activity.Record) error { return nil }
func (r *stubActivityRepo) Submit(context.Context, int64, time.Time) (*activity.Record, error) {
	return nil, nil
}
func (r *stubActivityRepo) ListUnsubmitted(context.Context) ([]*activity.Record, error) {
	return r.unsubmitted, nil
}
func (r *stubActivityRepo) ListByFacilitator(context.Context, int64) ([]*activity.Record, error) {
	return nil, nil
}

type stubAllocationRepo struct {
	allocations map[int64]*allocation.Allocation
}

func (r *stubAllocationRepo) Create(context.Context, *allocation.Allocation) error { return nil }
func (r *stubAllocationRepo) GetByID(_ context.Context, id int64) (*allocation.Allocation, error) {
	return r.allocations[id], nil
}
func (r *stubAllocationRepo) Update(context.Context, *allocation.Allocation) error { return nil }
func (r *stubAllocationRepo) ListActive(context.Context) ([]*allocation.Allocation, error) {
	return nil, nil
}

func TestRunOverdueScan(t *testing.T) {
	// Sixty days back, so the deadlines for the first few weeks have passed.
	start := time.Now().AddDate(0, 0, -60)
	records := &stubActivityRepo{
		unsubmitted: []*activity.Record{
			{ID: 1, AllocationID: 42, FacilitatorID: 7, WeekNumber: 1},
			{ID: 2, AllocationID: 42, FacilitatorID: 7, WeekNumber: 2},
			{ID: 3, AllocationID: 42, FacilitatorID: 8, WeekNumber: 1},
		},
	}
	allocs := &stubAllocationRepo{allocations: map[int64]*allocation.Allocation{
		42: {ID: 42, StartDate: start, IsActive: true},
	}}

	tracker := app.NewTrackerService(records, allocs)
	decision := &captureQueue{}
	dispatcher := app.NewDispatcher(decision, &captureQueue{}, nopLogStore{}, 0, 0)

	s := NewDeadlineScheduler(tracker, dispatcher, "0 9 * * *", "0 10 * * 1", 72*time.Hour)
	require.NoError(t, s.RunOverdueScan(context.Background()))

	var reminders, alerts int
	for _, job := range decision.published {
		switch job.Kind {
		case notification.KindFacilitatorReminder:
			reminders++
		case notification.KindManagerAlert:
			alerts++
		}
	}
	assert.Equal(t, 3, reminders, "one reminder per overdue record")
	assert.Equal(t, 1, alerts, "a single summary alert")
}

func TestRunDueSoonScan(t *testing.T) {
	// Week 1's deadline is nine days after the start; place it 48h from now.
	start := time.Now().Add(48 * time.Hour).AddDate(0, 0, -9)
	records := &stubActivityRepo{
		unsubmitted: []*activity.Record{
			{ID: 1, AllocationID: 42, FacilitatorID: 7, WeekNumber: 1},
		},
	}
	allocs := &stubAllocationRepo{allocations: map[int64]*allocation.Allocation{
		42: {ID: 42, StartDate: start, IsActive: true},
	}}

	tracker := app.NewTrackerService(records, allocs)
	decision := &captureQueue{}
	dispatcher := app.NewDispatcher(decision, &captureQueue{}, nopLogStore{}, 0, 0)

	s := NewDeadlineScheduler(tracker, dispatcher, "0 9 * * *", "0 10 * * 1", 72*time.Hour)
	require.NoError(t, s.RunDueSoonScan(context.Background()))

	require.Len(t, decision.published, 2)
	assert.Equal(t, notification.KindFacilitatorReminder, decision.published[0].Kind)
	assert.Equal(t, notification.KindManagerAlert, decision.published[1].Kind)
}

package app

import (
	"context"
	"time"

	"facilitator_activity_tracker/internal/domain/activity"
	"facilitator_activity_tracker/internal/domain/allocation"
	"facilitator_activity_tracker/internal/domain/email"
	"facilitator_activity_tracker/internal/domain/notification"
	"facilitator_activity_tracker/internal/domain/staff"
	idb "facilitator_activity_tracker/internal/infra/database"
)

// fakeQueue records published jobs instead of delivering them.
type fakeQueue struct {
	published []*notification.Job
}

func (q *fakeQueue) Publish(_ context.Context, job *notification.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	q.published = append(q.published, job)
	return nil
}

func (q *fakeQueue) Subscribe(context.Context, func(*notification.Job) error) error { return nil }

func (q *fakeQueue) Stats(context.Context) (*notification.QueueStats, error) {
	return &notification.QueueStats{Ready: int64(len(q.published))}, nil
}

func (q *fakeQueue) Close() error { return nil }

// memLogStore keeps entries newest-first, like the redis store.
type memLogStore struct {
	entries []*notification.LogEntry
}

func (s *memLogStore) Append(_ context.Context, entry *notification.LogEntry) error {
	entry.CreatedAt = time.Now()
	s.entries = append([]*notification.LogEntry{entry}, s.entries...)
	return nil
}

func (s *memLogStore) Recent(_ context.Context, limit int) ([]*notification.LogEntry, error) {
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	return s.entries[:limit], nil
}

type memStaffRepo struct {
	facilitators map[int64]*staff.Facilitator
	managers     []*staff.Manager
}

func (r *memStaffRepo) CreateFacilitator(_ context.Context, f *staff.Facilitator) error {
	if r.facilitators == nil {
		r.facilitators = make(map[int64]*staff.Facilitator)
	}
	r.facilitators[f.ID] = f
	return nil
}

func (r *memStaffRepo) GetFacilitatorByID(_ context.Context, id int64) (*staff.Facilitator, error) {
	f, ok := r.facilitators[id]
	if !ok {
		return nil, idb.ErrFacilitatorNotFound
	}
	return f, nil
}

func (r *memStaffRepo) UpdateFacilitator(_ context.Context, f *staff.Facilitator) error {
	r.facilitators[f.ID] = f
	return nil
}

func (r *memStaffRepo) ListActiveFacilitators(context.Context) ([]*staff.Facilitator, error) {
	var out []*staff.Facilitator
	for _, f := range r.facilitators {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memStaffRepo) CreateManager(_ context.Context, m *staff.Manager) error {
	r.managers = append(r.managers, m)
	return nil
}

func (r *memStaffRepo) GetManagerByID(_ context.Context, id int64) (*staff.Manager, error) {
	for _, m := range r.managers {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, idb.ErrManagerNotFound
}

func (r *memStaffRepo) ListActiveManagers(context.Context) ([]*staff.Manager, error) {
	var out []*staff.Manager
	for _, m := range r.managers {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

type memAllocationRepo struct {
	allocations map[int64]*allocation.Allocation
}

func (r *memAllocationRepo) Create(_ context.Context, a *allocation.Allocation) error {
	if r.allocations == nil {
		r.allocations = make(map[int64]*allocation.Allocation)
	}
	r.allocations[a.ID] = a
	return nil
}

func (r *memAllocationRepo) GetByID(_ context.Context, id int64) (*allocation.Allocation, error) {
	a, ok := r.allocations[id]
	if !ok {
		return nil, idb.ErrAllocationNotFound
	}
	return a, nil
}

func (r *memAllocationRepo) Update(_ context.Context, a *allocation.Allocation) error {
	r.allocations[a.ID] = a
	return nil
}

func (r *memAllocationRepo) ListActive(context.Context) ([]*allocation.Allocation, error) {
	var out []*allocation.Allocation
	for _, a := range r.allocations {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

type memActivityRepo struct {
	records map[int64]*activity.Record
	nextID  int64
}

func (r *memActivityRepo) Create(_ context.Context, rec *activity.Record) error {
	if r.records == nil {
		r.records = make(map[int64]*activity.Record)
	}
	for _, existing := range r.records {
		if existing.AllocationID == rec.AllocationID && existing.WeekNumber == rec.WeekNumber {
			return idb.ErrDuplicateActivityRecord
		}
	}
	r.nextID++
	rec.ID = r.nextID
	r.records[rec.ID] = rec
	return nil
}

func (r *memActivityRepo) GetByID(_ context.Context, id int64) (*activity.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, idb.ErrActivityRecordNotFound
	}
	return rec, nil
}

func (r *memActivityRepo) GetByAllocationAndWeek(_ context.Context, allocationID int64, weekNumber int) (*activity.Record, error) {
	for _, rec := range r.records {
		if rec.AllocationID == allocationID && rec.WeekNumber == weekNumber {
			return rec, nil
		}
	}
	return nil, idb.ErrActivityRecordNotFound
}

func (r *memActivityRepo) Update(_ context.Context, rec *activity.Record) error {
	if _, ok := r.records[rec.ID]; !ok {
		return idb.ErrActivityRecordNotFound
	}
	r.records[rec.ID] = rec
	return nil
}

func (r *memActivityRepo) Submit(_ context.Context, id int64, submittedAt time.Time) (*activity.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, idb.ErrActivityRecordNotFound
	}
	if rec.SubmittedAt != nil {
		return nil, idb.ErrAlreadySubmitted
	}
	ts := submittedAt
	rec.SubmittedAt = &ts
	return rec, nil
}

func (r *memActivityRepo) ListUnsubmitted(context.Context) ([]*activity.Record, error) {
	var out []*activity.Record
	for _, rec := range r.records {
		if rec.SubmittedAt == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memActivityRepo) ListByFacilitator(_ context.Context, facilitatorID int64) ([]*activity.Record, error) {
	var out []*activity.Record
	for _, rec := range r.records {
		if rec.FacilitatorID == facilitatorID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeTransport records sent messages and fails on demand.
type fakeTransport struct {
	sent []*email.Message
	err  error
}

func (t *fakeTransport) Send(msg *email.Message) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	t.sent = append(t.sent, msg)
	return "msg-1", nil
}

package activity

import (
	"context"
	"time"
)

// Repository defines persistence operations for weekly activity records.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	GetByAllocationAndWeek(ctx context.Context, allocationID int64, weekNumber int) (*Record, error)
	Update(ctx context.Context, rec *Record) error

	// Submit performs the one-way submission transition as a storage-level
	// compare-and-swap: it sets submitted_at only if it is currently NULL and
	// returns ErrAlreadySubmitted (declared in the database package) otherwise.
	Submit(ctx context.Context, id int64, submittedAt time.Time) (*Record, error)

	// ListUnsubmitted returns all records with a NULL submission timestamp,
	// regardless of age. Overdue/due-soon filtering happens against the
	// owning allocation's start date in the service layer.
	ListUnsubmitted(ctx context.Context) ([]*Record, error)
	ListByFacilitator(ctx context.Context, facilitatorID int64) ([]*Record, error)
}

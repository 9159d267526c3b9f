package allocation

import "time"

// Allocation is a scheduled instance of a course module for a specific
// cohort, class term and delivery mode, taught by one facilitator.
type Allocation struct {
	ID            int64
	FacilitatorID int64
	ModuleName    string
	CohortName    string
	ClassName     string
	DeliveryMode  string
	// StartDate is the recorded first day of teaching. It is immutable once
	// set and anchors all per-week deadline arithmetic.
	StartDate time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

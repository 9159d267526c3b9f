package allocation

import "context"

// Repository defines the operations for persisting and retrieving course
// offerings.
type Repository interface {
	Create(ctx context.Context, a *Allocation) error
	GetByID(ctx context.Context, id int64) (*Allocation, error)
	Update(ctx context.Context, a *Allocation) error
	ListActive(ctx context.Context) ([]*Allocation, error)
}

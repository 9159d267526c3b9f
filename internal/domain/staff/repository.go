package staff

import "context"

// Repository defines the operations for persisting and retrieving staff.
// Managers are looked up at alert processing time, not at enqueue time, so
// fan-out always reflects the current active set.
type Repository interface {
	CreateFacilitator(ctx context.Context, f *Facilitator) error
	GetFacilitatorByID(ctx context.Context, id int64) (*Facilitator, error)
	UpdateFacilitator(ctx context.Context, f *Facilitator) error
	ListActiveFacilitators(ctx context.Context) ([]*Facilitator, error)

	CreateManager(ctx context.Context, m *Manager) error
	GetManagerByID(ctx context.Context, id int64) (*Manager, error)
	ListActiveManagers(ctx context.Context) ([]*Manager, error)
}

package building

import "context"

// Repository defines the interface for building persistence operations
type Repository interface {
	// Create creates a new building
	Create(ctx context.Context, b *Building) error

	// Get retrieves a building by ID
	Get(ctx context.Context, id string) (*Building, error)

	// Update updates an existing building
	Update(ctx context.Context, b *Building) error

	// List retrieves all buildings. The scheduler enumerates this set on
	// every generation and disconnection trigger.
	List(ctx context.Context) ([]*Building, error)
}

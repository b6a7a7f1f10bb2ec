package premise

import "context"

// Repository defines the interface for premise persistence operations
type Repository interface {
	// Create creates a new premise
	Create(ctx context.Context, p *Premise) error

	// Get retrieves a premise by ID
	Get(ctx context.Context, id string) (*Premise, error)

	// Update updates an existing premise
	Update(ctx context.Context, p *Premise) error

	// ListByBuilding retrieves all premises in a building
	ListByBuilding(ctx context.Context, buildingID string) ([]*Premise, error)
}

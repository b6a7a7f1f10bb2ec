package settings

import "context"

// Repository defines the interface for settings persistence operations
type Repository interface {
	// Create creates settings for a building
	Create(ctx context.Context, s *Settings) error

	// GetByBuilding retrieves the settings for a building. Returns a not
	// found error when absent.
	GetByBuilding(ctx context.Context, buildingID string) (*Settings, error)

	// Update updates existing settings
	Update(ctx context.Context, s *Settings) error
}

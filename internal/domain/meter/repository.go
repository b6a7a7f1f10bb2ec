package meter

import (
	"context"

	"github.com/waterbills/waterbills/internal/types"
)

// Repository defines the interface for meter persistence operations
type Repository interface {
	// Create creates a new meter
	Create(ctx context.Context, m *Meter) error

	// Get retrieves a meter by ID
	Get(ctx context.Context, id string) (*Meter, error)

	// ListByBuilding retrieves all meters of the given type in a building
	ListByBuilding(ctx context.Context, buildingID string, meterType types.MeterType) ([]*Meter, error)

	// GetSubmeterByPremise retrieves the submeter belonging to a premise
	GetSubmeterByPremise(ctx context.Context, premiseID string) (*Meter, error)
}

// ReadingRepository defines the interface for meter reading persistence.
// The (meter, period) uniqueness constraint is enforced at the storage layer.
type ReadingRepository interface {
	// Create records a new reading. Returns an already exists error if a
	// reading for (meter, period) was recorded before; existing readings are
	// surfaced, never overwritten.
	Create(ctx context.Context, r *Reading) error

	// Get retrieves a reading by ID
	Get(ctx context.Context, id string) (*Reading, error)

	// GetByMeterAndPeriod retrieves the reading for a meter in a period.
	// Returns a not found error when absent.
	GetByMeterAndPeriod(ctx context.Context, meterID string, period types.Period) (*Reading, error)

	// ListByBuildingAndPeriod retrieves all readings recorded for a building
	// in a period
	ListByBuildingAndPeriod(ctx context.Context, buildingID string, period types.Period) ([]*Reading, error)
}

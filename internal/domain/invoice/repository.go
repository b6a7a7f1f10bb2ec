package invoice

import (
	"context"
	"time"

	"github.com/waterbills/waterbills/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice. Returns an already exists error when an
	// invoice for (premise, period) exists; the storage layer enforces the
	// uniqueness with an index so concurrent generation attempts are safe.
	Create(ctx context.Context, inv *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, inv *Invoice) error

	// GetByPremiseAndPeriod retrieves the invoice for (premise, period).
	// Returns a not found error when absent.
	GetByPremiseAndPeriod(ctx context.Context, premiseID string, period types.Period) (*Invoice, error)

	// ListByBuildingAndPeriod retrieves all invoices raised for a building
	// in a period
	ListByBuildingAndPeriod(ctx context.Context, buildingID string, period types.Period) ([]*Invoice, error)

	// ListOverdueEligible retrieves all invoices in a settleable status whose
	// due date has passed. The scheduler enumerates this set on every daily
	// penalty trigger.
	ListOverdueEligible(ctx context.Context, asOf time.Time) ([]*Invoice, error)

	// GetLatestSettleableByPremise retrieves the most recently created
	// invoice for a premise that still carries a settleable status. Returns
	// a not found error when every invoice is paid.
	GetLatestSettleableByPremise(ctx context.Context, premiseID string) (*Invoice, error)
}

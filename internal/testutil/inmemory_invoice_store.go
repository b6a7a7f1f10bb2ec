package testutil

import (
	"context"
	"time"

	domainInvoice "github.com/waterbills/waterbills/internal/domain/invoice"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// InMemoryInvoiceStore implements an in-memory invoice repository for testing
type InMemoryInvoiceStore struct {
	*InMemoryStore[*domainInvoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*domainInvoice.Invoice](),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *domainInvoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirror the storage layer's (premise, period) uniqueness
	for _, existing := range s.items {
		if existing.PremiseID == inv.PremiseID && existing.Period == inv.Period {
			return ierr.NewError("invoice already exists").
				WithHintf("An invoice for period %s already exists for this premise", inv.Period).
				WithReportableDetails(map[string]any{
					"premise_id": inv.PremiseID,
					"period":     inv.Period,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	if _, exists := s.items[inv.ID]; exists {
		return ierr.NewError("invoice already exists").
			WithHintf("Invoice with ID %s already exists", inv.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.items[inv.ID] = inv
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	return s.InMemoryStore.Update(ctx, inv.ID, inv)
}

func (s *InMemoryInvoiceStore) GetByPremiseAndPeriod(ctx context.Context, premiseID string, period types.Period) (*domainInvoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.items {
		if inv.PremiseID == premiseID && inv.Period == period && inv.Status == types.StatusPublished {
			return inv, nil
		}
	}

	return nil, ierr.NewError("invoice not found").
		WithHintf("No invoice found for premise %s in period %s", premiseID, period).
		WithReportableDetails(map[string]any{
			"premise_id": premiseID,
			"period":     period,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryInvoiceStore) ListByBuildingAndPeriod(ctx context.Context, buildingID string, period types.Period) ([]*domainInvoice.Invoice, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, inv *domainInvoice.Invoice, _ interface{}) bool {
			return inv.BuildingID == buildingID &&
				inv.Period == period &&
				inv.Status == types.StatusPublished
		},
		func(i, j *domainInvoice.Invoice) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		},
	)
}

func (s *InMemoryInvoiceStore) ListOverdueEligible(ctx context.Context, asOf time.Time) ([]*domainInvoice.Invoice, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, inv *domainInvoice.Invoice, _ interface{}) bool {
			return inv.InvoiceStatus.IsSettleable() &&
				inv.DueDate.Before(asOf) &&
				inv.Status == types.StatusPublished
		},
		func(i, j *domainInvoice.Invoice) bool {
			return i.DueDate.Before(j.DueDate)
		},
	)
}

func (s *InMemoryInvoiceStore) GetLatestSettleableByPremise(ctx context.Context, premiseID string) (*domainInvoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domainInvoice.Invoice
	for _, inv := range s.items {
		if inv.PremiseID != premiseID ||
			!inv.InvoiceStatus.IsSettleable() ||
			inv.Status != types.StatusPublished {
			continue
		}
		if latest == nil || inv.CreatedAt.After(latest.CreatedAt) {
			latest = inv
		}
	}

	if latest == nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("No settleable invoice found for premise %s", premiseID).
			WithReportableDetails(map[string]any{
				"premise_id": premiseID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return latest, nil
}

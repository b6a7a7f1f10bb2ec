package testutil

import (
	"context"

	domainPremise "github.com/waterbills/waterbills/internal/domain/premise"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// InMemoryPremiseStore implements an in-memory premise repository for testing
type InMemoryPremiseStore struct {
	*InMemoryStore[*domainPremise.Premise]
}

// NewInMemoryPremiseStore creates a new in-memory premise store
func NewInMemoryPremiseStore() *InMemoryPremiseStore {
	return &InMemoryPremiseStore{
		InMemoryStore: NewInMemoryStore[*domainPremise.Premise](),
	}
}

func (s *InMemoryPremiseStore) Create(ctx context.Context, p *domainPremise.Premise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirror the storage layer's (building, unit_no) uniqueness
	for _, existing := range s.items {
		if existing.BuildingID == p.BuildingID && existing.UnitNo == p.UnitNo {
			return ierr.NewError("premise already exists").
				WithHintf("Unit %s already exists in this building", p.UnitNo).
				WithReportableDetails(map[string]any{
					"building_id": p.BuildingID,
					"unit_no":     p.UnitNo,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	if _, exists := s.items[p.ID]; exists {
		return ierr.NewError("premise already exists").
			WithHintf("Premise with ID %s already exists", p.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.items[p.ID] = p
	return nil
}

func (s *InMemoryPremiseStore) Get(ctx context.Context, id string) (*domainPremise.Premise, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPremiseStore) Update(ctx context.Context, p *domainPremise.Premise) error {
	return s.InMemoryStore.Update(ctx, p.ID, p)
}

func (s *InMemoryPremiseStore) ListByBuilding(ctx context.Context, buildingID string) ([]*domainPremise.Premise, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, p *domainPremise.Premise, _ interface{}) bool {
			return p.BuildingID == buildingID && p.Status == types.StatusPublished
		},
		func(i, j *domainPremise.Premise) bool {
			return i.UnitNo < j.UnitNo
		},
	)
}

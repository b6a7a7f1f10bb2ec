package testutil

import (
	"context"

	domainBuilding "github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/types"
)

// InMemoryBuildingStore implements an in-memory building repository for testing
type InMemoryBuildingStore struct {
	*InMemoryStore[*domainBuilding.Building]
}

// NewInMemoryBuildingStore creates a new in-memory building store
func NewInMemoryBuildingStore() *InMemoryBuildingStore {
	return &InMemoryBuildingStore{
		InMemoryStore: NewInMemoryStore[*domainBuilding.Building](),
	}
}

func (s *InMemoryBuildingStore) Create(ctx context.Context, b *domainBuilding.Building) error {
	return s.InMemoryStore.Create(ctx, b.ID, b)
}

func (s *InMemoryBuildingStore) Get(ctx context.Context, id string) (*domainBuilding.Building, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryBuildingStore) Update(ctx context.Context, b *domainBuilding.Building) error {
	return s.InMemoryStore.Update(ctx, b.ID, b)
}

func (s *InMemoryBuildingStore) List(ctx context.Context) ([]*domainBuilding.Building, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, b *domainBuilding.Building, _ interface{}) bool {
			return b.Status == types.StatusPublished
		},
		func(i, j *domainBuilding.Building) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		},
	)
}

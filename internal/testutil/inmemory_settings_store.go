package testutil

import (
	"context"

	domainSettings "github.com/waterbills/waterbills/internal/domain/settings"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// InMemorySettingsStore implements an in-memory settings repository for testing
type InMemorySettingsStore struct {
	*InMemoryStore[*domainSettings.Settings]
}

// NewInMemorySettingsStore creates a new in-memory settings store
func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{
		InMemoryStore: NewInMemoryStore[*domainSettings.Settings](),
	}
}

func (s *InMemorySettingsStore) Create(ctx context.Context, st *domainSettings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.BuildingID == st.BuildingID {
			return ierr.NewError("settings already exist").
				WithHintf("Settings for building %s already exist", st.BuildingID).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	s.items[st.ID] = st
	return nil
}

func (s *InMemorySettingsStore) GetByBuilding(ctx context.Context, buildingID string) (*domainSettings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.items {
		if st.BuildingID == buildingID && st.Status == types.StatusPublished {
			return st, nil
		}
	}

	return nil, ierr.NewError("settings not found").
		WithHintf("No settings configured for building %s", buildingID).
		WithReportableDetails(map[string]any{
			"building_id": buildingID,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySettingsStore) Update(ctx context.Context, st *domainSettings.Settings) error {
	return s.InMemoryStore.Update(ctx, st.ID, st)
}

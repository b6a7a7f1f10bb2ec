package testutil

import (
	"context"

	domainMeter "github.com/waterbills/waterbills/internal/domain/meter"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// InMemoryMeterStore implements an in-memory meter repository for testing
type InMemoryMeterStore struct {
	*InMemoryStore[*domainMeter.Meter]
}

// NewInMemoryMeterStore creates a new in-memory meter store
func NewInMemoryMeterStore() *InMemoryMeterStore {
	return &InMemoryMeterStore{
		InMemoryStore: NewInMemoryStore[*domainMeter.Meter](),
	}
}

func (s *InMemoryMeterStore) Create(ctx context.Context, m *domainMeter.Meter) error {
	return s.InMemoryStore.Create(ctx, m.ID, m)
}

func (s *InMemoryMeterStore) Get(ctx context.Context, id string) (*domainMeter.Meter, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryMeterStore) ListByBuilding(ctx context.Context, buildingID string, meterType types.MeterType) ([]*domainMeter.Meter, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, m *domainMeter.Meter, _ interface{}) bool {
			return m.BuildingID == buildingID &&
				m.MeterType == meterType &&
				m.Status == types.StatusPublished
		},
		func(i, j *domainMeter.Meter) bool {
			return i.Label < j.Label
		},
	)
}

func (s *InMemoryMeterStore) GetSubmeterByPremise(ctx context.Context, premiseID string) (*domainMeter.Meter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.items {
		if m.PremiseID == premiseID &&
			m.MeterType == types.MeterTypeSubmeter &&
			m.Status == types.StatusPublished {
			return m, nil
		}
	}

	return nil, ierr.NewError("meter not found").
		WithHintf("No submeter found for premise %s", premiseID).
		WithReportableDetails(map[string]any{
			"premise_id": premiseID,
		}).
		Mark(ierr.ErrNotFound)
}

// InMemoryReadingStore implements an in-memory meter reading repository for testing
type InMemoryReadingStore struct {
	*InMemoryStore[*domainMeter.Reading]
}

// NewInMemoryReadingStore creates a new in-memory meter reading store
func NewInMemoryReadingStore() *InMemoryReadingStore {
	return &InMemoryReadingStore{
		InMemoryStore: NewInMemoryStore[*domainMeter.Reading](),
	}
}

func (s *InMemoryReadingStore) Create(ctx context.Context, r *domainMeter.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirror the storage layer's (meter, period) uniqueness
	for _, existing := range s.items {
		if existing.MeterID == r.MeterID && existing.Period == r.Period {
			return ierr.NewError("meter reading already exists").
				WithHintf("A reading for period %s was already recorded for this meter", r.Period).
				WithReportableDetails(map[string]any{
					"meter_id": r.MeterID,
					"period":   r.Period,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	if _, exists := s.items[r.ID]; exists {
		return ierr.NewError("meter reading already exists").
			WithHintf("Reading with ID %s already exists", r.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.items[r.ID] = r
	return nil
}

func (s *InMemoryReadingStore) Get(ctx context.Context, id string) (*domainMeter.Reading, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryReadingStore) GetByMeterAndPeriod(ctx context.Context, meterID string, period types.Period) (*domainMeter.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.items {
		if r.MeterID == meterID && r.Period == period && r.Status == types.StatusPublished {
			return r, nil
		}
	}

	return nil, ierr.NewError("meter reading not found").
		WithHintf("No reading recorded for meter %s in period %s", meterID, period).
		WithReportableDetails(map[string]any{
			"meter_id": meterID,
			"period":   period,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryReadingStore) ListByBuildingAndPeriod(ctx context.Context, buildingID string, period types.Period) ([]*domainMeter.Reading, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, r *domainMeter.Reading, _ interface{}) bool {
			return r.BuildingID == buildingID &&
				r.Period == period &&
				r.Status == types.StatusPublished
		},
		func(i, j *domainMeter.Reading) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		},
	)
}

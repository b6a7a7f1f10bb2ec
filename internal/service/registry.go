package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waterbills/waterbills/internal/domain/auditlog"
	"github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/domain/meter"
	"github.com/waterbills/waterbills/internal/domain/premise"
	"github.com/waterbills/waterbills/internal/domain/settings"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// RegistryService manages the billing registry: buildings, premises, meters,
// per-building settings and meter readings. These are the inputs the billing
// engines consume.
type RegistryService interface {
	CreateBuilding(ctx context.Context, input CreateBuildingInput) (*building.Building, error)
	GetBuilding(ctx context.Context, id string) (*building.Building, error)
	ListBuildings(ctx context.Context) ([]*building.Building, error)

	CreatePremise(ctx context.Context, input CreatePremiseInput) (*premise.Premise, error)
	ListPremises(ctx context.Context, buildingID string) ([]*premise.Premise, error)

	CreateMeter(ctx context.Context, input CreateMeterInput) (*meter.Meter, error)

	UpsertSettings(ctx context.Context, input UpsertSettingsInput) (*settings.Settings, error)

	// RecordReading records one meter reading. A reading already recorded
	// for (meter, period) is surfaced as an already-exists error, never
	// overwritten.
	RecordReading(ctx context.Context, input RecordReadingInput) (*meter.Reading, error)
	ListReadings(ctx context.Context, buildingID string, period types.Period) ([]*meter.Reading, error)
}

type CreateBuildingInput struct {
	Name                string
	Address             string
	Timezone            string
	PumpingCostPerMonth decimal.Decimal
}

type CreatePremiseInput struct {
	BuildingID         string
	UnitNo             string
	PremiseType        types.PremiseType
	MonthlyRent        decimal.Decimal
	DisconnectAfterDay int
	PreviousBalance    decimal.Decimal
	Tags               []string
}

type CreateMeterInput struct {
	BuildingID string
	MeterType  types.MeterType
	PremiseID  string
	Label      string
	Unit       string
}

type UpsertSettingsInput struct {
	BuildingID          string
	CouncilPricePerM3   decimal.Decimal
	BoreholePricePerM3  decimal.Decimal
	PumpingCostPerMonth decimal.Decimal
	PenaltyDaily        decimal.Decimal
	ProratePrecision    int32
}

type RecordReadingInput struct {
	MeterID     string
	Period      types.Period
	Reading     decimal.Decimal
	ReadingDate time.Time
	Notes       string
}

type registryService struct {
	ServiceParams
	audit AuditService
}

// NewRegistryService creates a new registry service
func NewRegistryService(params ServiceParams) RegistryService {
	return &registryService{
		ServiceParams: params,
		audit:         NewAuditService(params),
	}
}

func (s *registryService) CreateBuilding(ctx context.Context, input CreateBuildingInput) (*building.Building, error) {
	b := &building.Building{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUILDING),
		Name:                input.Name,
		Address:             input.Address,
		Timezone:            input.Timezone,
		PumpingCostPerMonth: input.PumpingCostPerMonth,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.BuildingRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "building", b.ID, auditlog.ActionCreate, map[string]any{"name": b.Name})
	return b, nil
}

func (s *registryService) GetBuilding(ctx context.Context, id string) (*building.Building, error) {
	return s.BuildingRepo.Get(ctx, id)
}

func (s *registryService) ListBuildings(ctx context.Context) ([]*building.Building, error) {
	return s.BuildingRepo.List(ctx)
}

func (s *registryService) CreatePremise(ctx context.Context, input CreatePremiseInput) (*premise.Premise, error) {
	if _, err := s.BuildingRepo.Get(ctx, input.BuildingID); err != nil {
		return nil, err
	}

	disconnectDay := input.DisconnectAfterDay
	if disconnectDay == 0 {
		disconnectDay = types.DefaultDisconnectDay
	}

	p := &premise.Premise{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PREMISE),
		BuildingID:         input.BuildingID,
		UnitNo:             input.UnitNo,
		PremiseType:        input.PremiseType,
		MonthlyRent:        input.MonthlyRent,
		DisconnectAfterDay: disconnectDay,
		PreviousBalance:    input.PreviousBalance,
		Tags:               input.Tags,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.PremiseRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "premise", p.ID, auditlog.ActionCreate, map[string]any{
		"building_id": p.BuildingID,
		"unit_no":     p.UnitNo,
	})
	return p, nil
}

func (s *registryService) ListPremises(ctx context.Context, buildingID string) ([]*premise.Premise, error) {
	return s.PremiseRepo.ListByBuilding(ctx, buildingID)
}

func (s *registryService) CreateMeter(ctx context.Context, input CreateMeterInput) (*meter.Meter, error) {
	b, err := s.BuildingRepo.Get(ctx, input.BuildingID)
	if err != nil {
		return nil, err
	}

	if input.MeterType == types.MeterTypeSubmeter {
		if input.PremiseID == "" {
			return nil, ierr.NewError("submeter requires a premise").
				WithHint("Submeters must belong to a premise").
				Mark(ierr.ErrValidation)
		}
		if _, err := s.PremiseRepo.Get(ctx, input.PremiseID); err != nil {
			return nil, err
		}
		// A premise has exactly one submeter
		if _, err := s.MeterRepo.GetSubmeterByPremise(ctx, input.PremiseID); err == nil {
			return nil, ierr.NewError("premise already has a submeter").
				WithHint("A premise can only have one submeter").
				WithReportableDetails(map[string]any{
					"premise_id": input.PremiseID,
				}).
				Mark(ierr.ErrAlreadyExists)
		} else if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	unit := input.Unit
	if unit == "" {
		unit = types.DefaultMeterUnit
	}

	m := &meter.Meter{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER),
		BuildingID: input.BuildingID,
		MeterType:  input.MeterType,
		PremiseID:  input.PremiseID,
		Label:      input.Label,
		Unit:       unit,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.MeterRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	// Bulk meters register themselves on the building
	if m.MeterType.IsBulk() {
		switch m.MeterType {
		case types.MeterTypeCouncil:
			b.CouncilMeterID = m.ID
		case types.MeterTypeBorehole:
			b.BoreholeMeterID = m.ID
		}
		b.UpdatedAt = time.Now().UTC()
		b.UpdatedBy = types.GetUserID(ctx)
		if err := s.BuildingRepo.Update(ctx, b); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, "meter", m.ID, auditlog.ActionCreate, map[string]any{
		"building_id": m.BuildingID,
		"meter_type":  m.MeterType,
	})
	return m, nil
}

func (s *registryService) UpsertSettings(ctx context.Context, input UpsertSettingsInput) (*settings.Settings, error) {
	if _, err := s.BuildingRepo.Get(ctx, input.BuildingID); err != nil {
		return nil, err
	}

	existing, err := s.SettingsRepo.GetByBuilding(ctx, input.BuildingID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		existing.CouncilPricePerM3 = input.CouncilPricePerM3
		existing.BoreholePricePerM3 = input.BoreholePricePerM3
		existing.PumpingCostPerMonth = input.PumpingCostPerMonth
		existing.PenaltyDaily = input.PenaltyDaily
		existing.ProratePrecision = input.ProratePrecision
		existing.UpdatedAt = time.Now().UTC()
		existing.UpdatedBy = types.GetUserID(ctx)
		if err := existing.Validate(); err != nil {
			return nil, err
		}
		if err := s.SettingsRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.audit.Record(ctx, "settings", existing.ID, auditlog.ActionUpdate, map[string]any{
			"building_id": existing.BuildingID,
		})
		return existing, nil
	}

	cfg := &settings.Settings{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SETTINGS),
		BuildingID:          input.BuildingID,
		CouncilPricePerM3:   input.CouncilPricePerM3,
		BoreholePricePerM3:  input.BoreholePricePerM3,
		PumpingCostPerMonth: input.PumpingCostPerMonth,
		PenaltyDaily:        input.PenaltyDaily,
		ProratePrecision:    input.ProratePrecision,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.SettingsRepo.Create(ctx, cfg); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "settings", cfg.ID, auditlog.ActionCreate, map[string]any{
		"building_id": cfg.BuildingID,
	})
	return cfg, nil
}

func (s *registryService) RecordReading(ctx context.Context, input RecordReadingInput) (*meter.Reading, error) {
	if err := input.Period.Validate(); err != nil {
		return nil, err
	}

	m, err := s.MeterRepo.Get(ctx, input.MeterID)
	if err != nil {
		return nil, err
	}

	readingDate := input.ReadingDate
	if readingDate.IsZero() {
		readingDate = time.Now().UTC()
	}

	r := &meter.Reading{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER_READING),
		MeterID:     m.ID,
		BuildingID:  m.BuildingID,
		PremiseID:   m.PremiseID,
		Period:      input.Period,
		Reading:     input.Reading,
		ReadingDate: readingDate,
		Notes:       input.Notes,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.ReadingRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *registryService) ListReadings(ctx context.Context, buildingID string, period types.Period) ([]*meter.Reading, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return s.ReadingRepo.ListByBuildingAndPeriod(ctx, buildingID, period)
}

package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/domain/settings"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// AllocationService converts raw meter readings into the per-unit chargeable
// water amounts for a billing period. The computation is pure given its
// reading inputs: identical readings always yield the same allocation, which
// is what makes invoice re-generation and previews agree.
type AllocationService interface {
	// PreviewBuildingUsage computes the allocation without persisting anything
	PreviewBuildingUsage(ctx context.Context, buildingID string, period types.Period) (*BuildingUsage, error)
}

// BuildingUsage is the allocation output for one building and period.
type BuildingUsage struct {
	BuildingID string       `json:"building_id"`
	Period     types.Period `json:"period"`

	CouncilConsumption  decimal.Decimal `json:"council_consumption"`
	BoreholeConsumption decimal.Decimal `json:"borehole_consumption"`
	CouncilCost         decimal.Decimal `json:"council_cost"`
	BoreholeCost        decimal.Decimal `json:"borehole_cost"`
	PumpingCost         decimal.Decimal `json:"pumping_cost"`
	TotalBuildingBill   decimal.Decimal `json:"total_building_bill"`

	TotalSubmeterUnits decimal.Decimal `json:"total_submeter_units"`
	PerUnitRate        decimal.Decimal `json:"per_unit_rate"`

	Submeters []SubmeterUsage `json:"submeters"`
}

// SubmeterUsage is one premise's share of the allocation.
type SubmeterUsage struct {
	MeterID     string          `json:"meter_id"`
	PremiseID   string          `json:"premise_id"`
	Consumption decimal.Decimal `json:"consumption"`
	WaterAmount decimal.Decimal `json:"water_amount"`
}

type allocationService struct {
	ServiceParams
}

// NewAllocationService creates a new allocation service
func NewAllocationService(params ServiceParams) AllocationService {
	return &allocationService{ServiceParams: params}
}

func (s *allocationService) PreviewBuildingUsage(ctx context.Context, buildingID string, period types.Period) (*BuildingUsage, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return s.computeAllocation(ctx, buildingID, period)
}

// computeAllocation runs the full allocation for a building and period. It
// is shared by previews and invoice generation so both always agree.
func (s *allocationService) computeAllocation(ctx context.Context, buildingID string, period types.Period) (*BuildingUsage, error) {
	b, err := s.BuildingRepo.Get(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.SettingsRepo.GetByBuilding(ctx, buildingID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("billing settings missing").
				WithHint("Configure pricing settings for this building before billing").
				WithReportableDetails(map[string]any{
					"building_id": buildingID,
				}).
				Mark(ierr.ErrConfigurationMissing)
		}
		return nil, err
	}

	if !b.HasBulkMeters() {
		return nil, ierr.NewError("bulk meters missing").
			WithHint("Building must have a council meter and a borehole meter before billing").
			WithReportableDetails(map[string]any{
				"building_id": buildingID,
			}).
			Mark(ierr.ErrConfigurationMissing)
	}

	if err := s.verifyBulkMeter(ctx, b, b.CouncilMeterID, types.MeterTypeCouncil); err != nil {
		return nil, err
	}
	if err := s.verifyBulkMeter(ctx, b, b.BoreholeMeterID, types.MeterTypeBorehole); err != nil {
		return nil, err
	}

	councilConsumption, err := s.meterConsumption(ctx, b.CouncilMeterID, period)
	if err != nil {
		return nil, err
	}
	boreholeConsumption, err := s.meterConsumption(ctx, b.BoreholeMeterID, period)
	if err != nil {
		return nil, err
	}

	usage := &BuildingUsage{
		BuildingID:          buildingID,
		Period:              period,
		CouncilConsumption:  councilConsumption,
		BoreholeConsumption: boreholeConsumption,
		CouncilCost:         councilConsumption.Mul(cfg.CouncilPricePerM3),
		BoreholeCost:        boreholeConsumption.Mul(cfg.BoreholePricePerM3),
		PumpingCost:         pumpingCost(b, cfg),
	}
	usage.TotalBuildingBill = usage.CouncilCost.
		Add(usage.BoreholeCost).
		Add(usage.PumpingCost)

	submeters, err := s.MeterRepo.ListByBuilding(ctx, buildingID, types.MeterTypeSubmeter)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, sub := range submeters {
		consumption, err := s.meterConsumption(ctx, sub.ID, period)
		if err != nil {
			return nil, err
		}
		total = total.Add(consumption)
		usage.Submeters = append(usage.Submeters, SubmeterUsage{
			MeterID:     sub.ID,
			PremiseID:   sub.PremiseID,
			Consumption: consumption,
		})
	}
	usage.TotalSubmeterUnits = total

	// No recorded submeter consumption means nothing to allocate; every
	// premise gets a zero water amount rather than a division by zero.
	if total.IsPositive() {
		usage.PerUnitRate = usage.TotalBuildingBill.Div(total)
	}

	for i := range usage.Submeters {
		usage.Submeters[i].WaterAmount = roundAmount(
			usage.Submeters[i].Consumption.Mul(usage.PerUnitRate),
			cfg.ProratePrecision,
		)
	}

	return usage, nil
}

// verifyBulkMeter checks that a building's bulk meter reference resolves to a
// registered meter of the expected type in the same building. A dangling or
// mismatched reference would silently bill zero bulk consumption otherwise.
func (s *allocationService) verifyBulkMeter(ctx context.Context, b *building.Building, meterID string, want types.MeterType) error {
	m, err := s.MeterRepo.Get(ctx, meterID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return bulkMeterError(b.ID, meterID, want, "not registered")
		}
		return err
	}
	if m.MeterType != want {
		return bulkMeterError(b.ID, meterID, want, "wrong meter type")
	}
	if m.BuildingID != b.ID {
		return bulkMeterError(b.ID, meterID, want, "belongs to another building")
	}
	return nil
}

func bulkMeterError(buildingID, meterID string, want types.MeterType, reason string) error {
	return ierr.NewError("bulk meter reference invalid").
		WithHintf("Building references a %s meter that is %s", want, reason).
		WithReportableDetails(map[string]any{
			"building_id": buildingID,
			"meter_id":    meterID,
			"meter_type":  want,
		}).
		Mark(ierr.ErrConfigurationMissing)
}

// meterConsumption is current-period minus previous-period reading. A missing
// reading counts as zero. Negative consumption (meter rollover or a data
// entry error) is clamped to zero with a warning so one bad reading does not
// abort generation for the whole building.
func (s *allocationService) meterConsumption(ctx context.Context, meterID string, period types.Period) (decimal.Decimal, error) {
	current, err := s.readingValue(ctx, meterID, period)
	if err != nil {
		return decimal.Zero, err
	}
	previous, err := s.readingValue(ctx, meterID, period.Previous())
	if err != nil {
		return decimal.Zero, err
	}

	consumption := current.Sub(previous)
	if consumption.IsNegative() {
		s.Logger.Warnw("negative consumption clamped to zero",
			"meter_id", meterID,
			"period", period,
			"current_reading", current,
			"previous_reading", previous,
		)
		return decimal.Zero, nil
	}
	return consumption, nil
}

func (s *allocationService) readingValue(ctx context.Context, meterID string, period types.Period) (decimal.Decimal, error) {
	r, err := s.ReadingRepo.GetByMeterAndPeriod(ctx, meterID, period)
	if err != nil {
		if ierr.IsNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return r.Reading, nil
}

// pumpingCost prefers the building level override and falls back to settings.
func pumpingCost(b *building.Building, cfg *settings.Settings) decimal.Decimal {
	if b.PumpingCostPerMonth.IsPositive() {
		return b.PumpingCostPerMonth
	}
	return cfg.PumpingCostPerMonth
}

// roundAmount rounds a money amount to the configured proration precision.
func roundAmount(amount decimal.Decimal, precision int32) decimal.Decimal {
	return amount.Round(precision)
}

// submeterUsageFor resolves one premise's share from the allocation output.
func (u *BuildingUsage) submeterUsageFor(premiseID string) (SubmeterUsage, bool) {
	for _, sub := range u.Submeters {
		if sub.PremiseID == premiseID {
			return sub, true
		}
	}
	return SubmeterUsage{}, false
}

package dto

import (
	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/service"
)

// CreateBuildingRequest represents a request to register a building
type CreateBuildingRequest struct {
	Name                string          `json:"name" binding:"required"`
	Address             string          `json:"address" binding:"required"`
	Timezone            string          `json:"timezone"`
	PumpingCostPerMonth decimal.Decimal `json:"pumping_cost_per_month"`
}

func (r *CreateBuildingRequest) Validate() error {
	if r.Name == "" {
		return ierr.NewError("building name is required").
			WithHint("Building name is required").
			Mark(ierr.ErrValidation)
	}
	if r.Address == "" {
		return ierr.NewError("building address is required").
			WithHint("Building address is required").
			Mark(ierr.ErrValidation)
	}
	if r.PumpingCostPerMonth.IsNegative() {
		return ierr.NewError("pumping cost cannot be negative").
			WithHint("Pumping cost per month cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateBuildingRequest) ToInput() service.CreateBuildingInput {
	return service.CreateBuildingInput{
		Name:                r.Name,
		Address:             r.Address,
		Timezone:            r.Timezone,
		PumpingCostPerMonth: r.PumpingCostPerMonth,
	}
}

// UpsertSettingsRequest carries the billing rates for one building
type UpsertSettingsRequest struct {
	CouncilPricePerM3   decimal.Decimal `json:"council_price_per_m3"`
	BoreholePricePerM3  decimal.Decimal `json:"borehole_price_per_m3"`
	PumpingCostPerMonth decimal.Decimal `json:"pumping_cost_per_month"`
	PenaltyDaily        decimal.Decimal `json:"penalty_daily"`
	ProratePrecision    int32           `json:"prorate_precision"`
}

func (r *UpsertSettingsRequest) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"council_price_per_m3":   r.CouncilPricePerM3,
		"borehole_price_per_m3":  r.BoreholePricePerM3,
		"pumping_cost_per_month": r.PumpingCostPerMonth,
		"penalty_daily":          r.PenaltyDaily,
	} {
		if v.IsNegative() {
			return ierr.NewError("billing rates cannot be negative").
				WithHint("Billing rates cannot be negative").
				WithReportableDetails(map[string]any{"field": name}).
				Mark(ierr.ErrValidation)
		}
	}
	if r.ProratePrecision < 0 || r.ProratePrecision > 8 {
		return ierr.NewError("prorate precision out of range").
			WithHint("Prorate precision must be between 0 and 8").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *UpsertSettingsRequest) ToInput(buildingID string) service.UpsertSettingsInput {
	return service.UpsertSettingsInput{
		BuildingID:          buildingID,
		CouncilPricePerM3:   r.CouncilPricePerM3,
		BoreholePricePerM3:  r.BoreholePricePerM3,
		PumpingCostPerMonth: r.PumpingCostPerMonth,
		PenaltyDaily:        r.PenaltyDaily,
		ProratePrecision:    r.ProratePrecision,
	}
}

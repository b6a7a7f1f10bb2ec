package settings

import (
	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// Settings is the per-building pricing configuration, one-to-one with a
// building. Allocation aborts with a configuration missing error when it is
// absent.
type Settings struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id"`

	CouncilPricePerM3   decimal.Decimal `json:"council_price_per_m3"`
	BoreholePricePerM3  decimal.Decimal `json:"borehole_price_per_m3"`
	PumpingCostPerMonth decimal.Decimal `json:"pumping_cost_per_month"`
	// PenaltyDaily is the flat daily late fee accrued on unpaid invoices.
	PenaltyDaily decimal.Decimal `json:"penalty_daily"`
	// ProratePrecision is the decimal precision water amounts are rounded to.
	ProratePrecision int32 `json:"prorate_precision"`

	types.BaseModel
}

func (s *Settings) Validate() error {
	if s.BuildingID == "" {
		return ierr.NewError("building id is required").
			WithHint("Settings must belong to a building").
			Mark(ierr.ErrValidation)
	}
	if s.CouncilPricePerM3.IsNegative() || s.BoreholePricePerM3.IsNegative() {
		return ierr.NewError("water prices must be non-negative").
			WithHint("Per-unit water prices must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if s.PumpingCostPerMonth.IsNegative() {
		return ierr.NewError("pumping cost must be non-negative").
			WithHint("Pumping cost per month must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if s.PenaltyDaily.IsNegative() {
		return ierr.NewError("penalty rate must be non-negative").
			WithHint("Daily penalty rate must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if s.ProratePrecision < 0 || s.ProratePrecision > 4 {
		return ierr.NewError("invalid proration precision").
			WithHint("Proration precision must be between 0 and 4").
			WithReportableDetails(map[string]any{
				"prorate_precision": s.ProratePrecision,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

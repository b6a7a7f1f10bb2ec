package building

import (
	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// Building is a multi-unit property billed as one water account. It holds
// references to its two bulk meters; both must resolve before billing runs.
type Building struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Timezone string `json:"timezone"`
	// CouncilMeterID references the council bulk meter. Empty until the meter
	// is registered.
	CouncilMeterID string `json:"council_meter_id,omitempty"`
	// BoreholeMeterID references the borehole bulk meter. Empty until the
	// meter is registered.
	BoreholeMeterID     string          `json:"borehole_meter_id,omitempty"`
	PumpingCostPerMonth decimal.Decimal `json:"pumping_cost_per_month"`

	types.BaseModel
}

func (b *Building) Validate() error {
	if b.Name == "" {
		return ierr.NewError("building name is required").
			WithHint("Building name is required").
			Mark(ierr.ErrValidation)
	}
	if b.Address == "" {
		return ierr.NewError("building address is required").
			WithHint("Building address is required").
			Mark(ierr.ErrValidation)
	}
	if b.PumpingCostPerMonth.IsNegative() {
		return ierr.NewError("pumping cost must be non-negative").
			WithHint("Pumping cost per month must be non-negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// HasBulkMeters reports whether both bulk meter references are set.
func (b *Building) HasBulkMeters() bool {
	return b.CouncilMeterID != "" && b.BoreholeMeterID != ""
}

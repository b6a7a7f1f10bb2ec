package premise

import (
	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// Premise is a single rentable unit (shop or apartment) inside a building.
// (BuildingID, UnitNo) is unique.
type Premise struct {
	ID          string            `json:"id"`
	BuildingID  string            `json:"building_id"`
	UnitNo      string            `json:"unit_no"`
	PremiseType types.PremiseType `json:"premise_type"`
	MonthlyRent decimal.Decimal   `json:"monthly_rent"`
	// DisconnectAfterDay is the day of month past which an unpaid balance
	// makes this premise eligible for disconnection.
	DisconnectAfterDay int `json:"disconnect_after_day_of_month"`
	// PreviousBalance is the carry-over balance added to the next generated
	// invoice.
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Tags            []string        `json:"tags,omitempty"`

	types.BaseModel
}

func (p *Premise) Validate() error {
	if p.BuildingID == "" {
		return ierr.NewError("building id is required").
			WithHint("Premise must belong to a building").
			Mark(ierr.ErrValidation)
	}
	if p.UnitNo == "" {
		return ierr.NewError("unit number is required").
			WithHint("Unit number is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.PremiseType.Validate(); err != nil {
		return err
	}
	if p.MonthlyRent.IsNegative() {
		return ierr.NewError("monthly rent must be non-negative").
			WithHint("Monthly rent must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if p.DisconnectAfterDay < 1 || p.DisconnectAfterDay > 31 {
		return ierr.NewError("invalid disconnect day").
			WithHint("Disconnect day of month must be between 1 and 31").
			WithReportableDetails(map[string]any{
				"disconnect_after_day_of_month": p.DisconnectAfterDay,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

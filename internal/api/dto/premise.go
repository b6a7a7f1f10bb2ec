package dto

import (
	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/service"
	"github.com/waterbills/waterbills/internal/types"
)

// CreatePremiseRequest represents a request to register a rentable unit
type CreatePremiseRequest struct {
	UnitNo             string            `json:"unit_no" binding:"required"`
	PremiseType        types.PremiseType `json:"premise_type" binding:"required"`
	MonthlyRent        decimal.Decimal   `json:"monthly_rent"`
	DisconnectAfterDay int               `json:"disconnect_after_day_of_month"`
	PreviousBalance    decimal.Decimal   `json:"previous_balance"`
	Tags               []string          `json:"tags,omitempty"`
}

func (r *CreatePremiseRequest) Validate() error {
	if r.UnitNo == "" {
		return ierr.NewError("unit number is required").
			WithHint("Unit number is required").
			Mark(ierr.ErrValidation)
	}
	if err := r.PremiseType.Validate(); err != nil {
		return err
	}
	if r.MonthlyRent.IsNegative() {
		return ierr.NewError("monthly rent cannot be negative").
			WithHint("Monthly rent cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if r.DisconnectAfterDay < 0 || r.DisconnectAfterDay > 31 {
		return ierr.NewError("disconnect day out of range").
			WithHint("Disconnect day must be a day of month").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreatePremiseRequest) ToInput(buildingID string) service.CreatePremiseInput {
	return service.CreatePremiseInput{
		BuildingID:         buildingID,
		UnitNo:             r.UnitNo,
		PremiseType:        r.PremiseType,
		MonthlyRent:        r.MonthlyRent,
		DisconnectAfterDay: r.DisconnectAfterDay,
		PreviousBalance:    r.PreviousBalance,
		Tags:               r.Tags,
	}
}

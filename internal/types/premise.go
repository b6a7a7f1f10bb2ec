package types

import (
	"github.com/samber/lo"

	ierr "github.com/waterbills/waterbills/internal/errors"
)

// PremiseType is the kind of unit being billed.
type PremiseType string

const (
	PremiseTypeShop      PremiseType = "shop"
	PremiseTypeApartment PremiseType = "apartment"
)

func (t PremiseType) String() string {
	return string(t)
}

func (t PremiseType) Validate() error {
	allowed := []PremiseType{
		PremiseTypeShop,
		PremiseTypeApartment,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid premise type").
			WithHint("Premise type must be one of: shop, apartment").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DefaultDisconnectDay is the day-of-month after which an unpaid premise
// becomes eligible for disconnection when none is configured.
const DefaultDisconnectDay = 20

package dto

import (
	"github.com/waterbills/waterbills/internal/types"
)

// GenerateInvoiceRequest asks for one premise's invoice for a period.
// Generation is idempotent; repeating the request returns the stored invoice.
type GenerateInvoiceRequest struct {
	PremiseID string       `json:"premise_id" binding:"required"`
	Period    types.Period `json:"period" binding:"required"`
}

func (r *GenerateInvoiceRequest) Validate() error {
	return r.Period.Validate()
}

// GenerateBuildingInvoicesRequest fans generation out over a building
type GenerateBuildingInvoicesRequest struct {
	Period types.Period `json:"period" binding:"required"`
}

func (r *GenerateBuildingInvoicesRequest) Validate() error {
	return r.Period.Validate()
}

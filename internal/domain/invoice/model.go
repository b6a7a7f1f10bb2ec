package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// Invoice is a premise's bill for one period. (PremiseID, Period) is unique
// and is the core idempotency key of invoice generation: the storage layer
// enforces it so duplicate generation attempts are safe without locking.
//
// TotalAmount is the gross total (rent + water + previous balance + penalty);
// AmountPaid is tracked separately and settlement status derives from
// comparing the two.
type Invoice struct {
	ID          string       `json:"id"`
	PremiseID   string       `json:"premise_id"`
	BuildingID  string       `json:"building_id"`
	Period      types.Period `json:"period"`
	InvoiceDate time.Time    `json:"invoice_date"`
	DueDate     time.Time    `json:"due_date"`

	RentAmount      decimal.Decimal `json:"rent_amount"`
	WaterAmount     decimal.Decimal `json:"water_amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	PenaltyAmount   decimal.Decimal `json:"penalty_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`

	InvoiceStatus    types.InvoiceStatus    `json:"status"`
	ConnectionStatus types.ConnectionStatus `json:"water_connection_status"`

	// Payments is the embedded list of payments applied to this invoice.
	Payments []AppliedPayment `json:"payments,omitempty"`

	types.BaseModel
}

// AppliedPayment is one settlement entry embedded in an invoice.
type AppliedPayment struct {
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
}

func (i *Invoice) Validate() error {
	if i.PremiseID == "" {
		return ierr.NewError("premise id is required").
			WithHint("Invoice must reference a premise").
			Mark(ierr.ErrValidation)
	}
	if err := i.Period.Validate(); err != nil {
		return err
	}
	if i.RentAmount.IsNegative() || i.WaterAmount.IsNegative() || i.PenaltyAmount.IsNegative() {
		return ierr.NewError("invoice amounts must be non-negative").
			WithHint("Rent, water and penalty amounts must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if i.AmountPaid.IsNegative() {
		return ierr.NewError("amount paid must be non-negative").
			WithHint("Amount paid must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}
	return i.ConnectionStatus.Validate()
}

// GrossTotal is rent + water + previous balance + penalty.
func (i *Invoice) GrossTotal() decimal.Decimal {
	return i.RentAmount.
		Add(i.WaterAmount).
		Add(i.PreviousBalance).
		Add(i.PenaltyAmount)
}

// UnpaidAmount is the collectible remainder, never negative.
func (i *Invoice) UnpaidAmount() decimal.Decimal {
	unpaid := i.TotalAmount.Sub(i.AmountPaid)
	if unpaid.IsNegative() {
		return decimal.Zero
	}
	return unpaid
}

// DaysLate returns the whole days elapsed past the due date at the given
// time, never negative.
func (i *Invoice) DaysLate(now time.Time) int {
	if !now.After(i.DueDate) {
		return 0
	}
	return int(now.Sub(i.DueDate).Hours() / 24)
}

// RefreshStatus re-derives the settlement status from the stored totals.
func (i *Invoice) RefreshStatus(now time.Time) {
	i.InvoiceStatus = types.DeriveInvoiceStatus(i.TotalAmount, i.AmountPaid, i.DaysLate(now))
}

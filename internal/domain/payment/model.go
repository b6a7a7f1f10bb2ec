package payment

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// Payment is money received against one invoice. Payments are immutable
// after creation except for the pending → completed transition of
// asynchronous methods, located by TransactionRef.
type Payment struct {
	ID         string `json:"id"`
	InvoiceID  string `json:"invoice_id"`
	PremiseID  string `json:"premise_id"`
	BuildingID string `json:"building_id"`

	Amount decimal.Decimal     `json:"amount"`
	Method types.PaymentMethod `json:"method"`
	// TransactionRef is the gateway transaction reference for asynchronous
	// methods; it is the dedup key for gateway-sourced payments.
	TransactionRef string              `json:"transaction_ref,omitempty"`
	PaymentDate    time.Time           `json:"payment_date"`
	PaymentStatus  types.PaymentStatus `json:"payment_status"`

	types.BaseModel
}

func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("invoice id is required").
			WithHint("Payment must reference an invoice").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": p.Amount.String(),
			}).
			Mark(ierr.ErrInvalidAmount)
	}
	if err := p.Method.Validate(); err != nil {
		return err
	}
	return p.PaymentStatus.Validate()
}

// Receipt is the persisted record of a settled payment, numbered for tenant
// presentation.
type Receipt struct {
	ID            string              `json:"id"`
	ReceiptNumber string              `json:"receipt_number"`
	PaymentID     string              `json:"payment_id"`
	InvoiceID     string              `json:"invoice_id"`
	PremiseID     string              `json:"premise_id"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        types.PaymentMethod `json:"payment_method"`
	PaymentDate   time.Time           `json:"payment_date"`
	GeneratedAt   time.Time           `json:"generated_at"`

	types.BaseModel
}

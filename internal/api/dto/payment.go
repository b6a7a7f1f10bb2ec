package dto

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/service"
	"github.com/waterbills/waterbills/internal/types"
)

// ApplyPaymentRequest is the normalized payment event consumed by the payment
// engine. Cash payments settle immediately; asynchronous methods must carry a
// gateway transaction reference.
type ApplyPaymentRequest struct {
	Amount         decimal.Decimal     `json:"amount" binding:"required"`
	Method         types.PaymentMethod `json:"method" binding:"required"`
	TransactionRef string              `json:"transaction_ref,omitempty"`
	PaymentDate    time.Time           `json:"payment_date"`
}

func (r *ApplyPaymentRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			Mark(ierr.ErrInvalidAmount)
	}
	if err := r.Method.Validate(); err != nil {
		return err
	}
	return nil
}

func (r *ApplyPaymentRequest) ToInput() service.ApplyPaymentInput {
	paymentDate := r.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}
	return service.ApplyPaymentInput{
		Amount:         r.Amount,
		Method:         r.Method,
		TransactionRef: r.TransactionRef,
		PaymentDate:    paymentDate,
	}
}

// GatewayCallbackRequest is the confirmation a payment gateway posts once an
// asynchronous payment clears.
type GatewayCallbackRequest struct {
	TransactionRef string `json:"transaction_ref" binding:"required"`
}

func (r *GatewayCallbackRequest) Validate() error {
	if r.TransactionRef == "" {
		return ierr.NewError("transaction reference is required").
			WithHint("Gateway callbacks must carry the transaction reference").
			Mark(ierr.ErrValidation)
	}
	return nil
}

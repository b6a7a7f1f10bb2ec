package types

import (
	"github.com/samber/lo"

	ierr "github.com/waterbills/waterbills/internal/errors"
)

// PaymentMethod is how a payment reached us.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodMpesa PaymentMethod = "mpesa"
	PaymentMethodBank  PaymentMethod = "bank"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodMpesa,
		PaymentMethodBank,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Payment method must be one of: cash, mpesa, bank").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsAsync reports whether the method settles through an external gateway
// callback. Async payments are created pending and completed later by
// transaction reference.
func (m PaymentMethod) IsAsync() bool {
	return m == PaymentMethodMpesa
}

// PaymentStatus is the settlement state of a single payment record.
// Payments are immutable after creation except for the pending → completed
// transition of asynchronous methods.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusCompleted,
		PaymentStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Payment status must be one of: pending, completed, failed").
			Mark(ierr.ErrValidation)
	}
	return nil
}

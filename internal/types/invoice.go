package types

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
)

// InvoiceStatus tracks how much of an invoice has been settled and whether it
// is past due.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusUnpaid,
		InvoiceStatusPartial,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsSettleable reports whether the invoice still carries a collectible
// balance. Penalty accrual and disconnection evaluation only consider
// invoices in these statuses.
func (s InvoiceStatus) IsSettleable() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPartial || s == InvoiceStatusOverdue
}

// DeriveInvoiceStatus applies the settlement status transition rule shared by
// penalty accrual and payment application, evaluated in priority order:
// paid, partial, overdue, unpaid. The total is the gross invoice total
// (rent + water + previous balance + penalty).
func DeriveInvoiceStatus(total, amountPaid decimal.Decimal, daysLate int) InvoiceStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	case amountPaid.IsPositive():
		return InvoiceStatusPartial
	case daysLate > 0:
		return InvoiceStatusOverdue
	default:
		return InvoiceStatusUnpaid
	}
}

// ConnectionStatus marks the intended water-connection state for the premise
// an invoice belongs to. The core only records intent; physical disconnection
// is an administrative action.
type ConnectionStatus string

const (
	ConnectionStatusConnected  ConnectionStatus = "CONNECTED"
	ConnectionStatusDisconnect ConnectionStatus = "DISCONNECT"
)

func (s ConnectionStatus) String() string {
	return string(s)
}

func (s ConnectionStatus) Validate() error {
	allowed := []ConnectionStatus{
		ConnectionStatusConnected,
		ConnectionStatusDisconnect,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid water connection status").
			WithHint("Please provide a valid water connection status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

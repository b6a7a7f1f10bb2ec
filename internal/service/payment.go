package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waterbills/waterbills/internal/domain/auditlog"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	"github.com/waterbills/waterbills/internal/domain/payment"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// PaymentService applies payments to invoices and issues receipts.
//
// Application is deliberately not idempotent: applying the same amount twice
// records two settlements. Gateway retries must therefore go through
// CompleteGatewayPayment, where the transaction reference dedupes them.
type PaymentService interface {
	// ApplyPayment records a payment and settles it against the invoice
	// immediately
	ApplyPayment(ctx context.Context, invoiceID string, input ApplyPaymentInput) (*PaymentResult, error)

	// RecordPendingPayment records a payment awaiting gateway confirmation.
	// The invoice is not touched until the gateway confirms.
	RecordPendingPayment(ctx context.Context, invoiceID string, input ApplyPaymentInput) (*payment.Payment, error)

	// CompleteGatewayPayment settles the pending payment identified by its
	// gateway transaction reference. Completing an already completed payment
	// is a no-op success returning the recorded result.
	CompleteGatewayPayment(ctx context.Context, transactionRef string) (*PaymentResult, error)

	// GetReceipt retrieves the receipt issued for a payment
	GetReceipt(ctx context.Context, paymentID string) (*payment.Receipt, error)
}

// ApplyPaymentInput is the normalized payment event the engine consumes.
type ApplyPaymentInput struct {
	Amount         decimal.Decimal
	Method         types.PaymentMethod
	TransactionRef string
	PaymentDate    time.Time
}

// PaymentResult bundles the stored payment, the updated invoice and the
// issued receipt.
type PaymentResult struct {
	Payment *payment.Payment `json:"payment"`
	Invoice *invoice.Invoice `json:"invoice"`
	Receipt *payment.Receipt `json:"receipt"`
}

type paymentService struct {
	ServiceParams
	audit AuditService
}

// NewPaymentService creates a new payment service
func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
		audit:         NewAuditService(params),
	}
}

func (s *paymentService) ApplyPayment(ctx context.Context, invoiceID string, input ApplyPaymentInput) (*PaymentResult, error) {
	p, err := s.newPayment(ctx, invoiceID, input, types.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}

	var result *PaymentResult
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentRepo.Create(ctx, p); err != nil {
			return err
		}
		result, err = s.settle(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *paymentService) RecordPendingPayment(ctx context.Context, invoiceID string, input ApplyPaymentInput) (*payment.Payment, error) {
	if !input.Method.IsAsync() {
		return nil, ierr.NewError("payment method is not asynchronous").
			WithHint("Only gateway payment methods can be recorded as pending").
			WithReportableDetails(map[string]any{
				"method": input.Method,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if input.TransactionRef == "" {
		return nil, ierr.NewError("transaction reference is required").
			WithHint("Pending gateway payments need a transaction reference").
			Mark(ierr.ErrValidation)
	}

	p, err := s.newPayment(ctx, invoiceID, input, types.PaymentStatusPending)
	if err != nil {
		return nil, err
	}
	if err := s.PaymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded pending payment",
		"payment_id", p.ID,
		"invoice_id", invoiceID,
		"transaction_ref", input.TransactionRef,
	)
	return p, nil
}

func (s *paymentService) CompleteGatewayPayment(ctx context.Context, transactionRef string) (*PaymentResult, error) {
	p, err := s.PaymentRepo.GetByTransactionRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}

	// Gateway callbacks are retried; a completed payment is already applied
	if p.PaymentStatus == types.PaymentStatusCompleted {
		inv, err := s.InvoiceRepo.Get(ctx, p.InvoiceID)
		if err != nil {
			return nil, err
		}
		receipt, err := s.ReceiptRepo.GetByPayment(ctx, p.ID)
		if err != nil && !ierr.IsNotFound(err) {
			return nil, err
		}
		return &PaymentResult{Payment: p, Invoice: inv, Receipt: receipt}, nil
	}

	if p.PaymentStatus != types.PaymentStatusPending {
		return nil, ierr.NewError("payment is not pending").
			WithHintf("Payment in status %s cannot be completed", p.PaymentStatus).
			WithReportableDetails(map[string]any{
				"payment_id":      p.ID,
				"payment_status":  p.PaymentStatus,
				"transaction_ref": transactionRef,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	var result *PaymentResult
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		p.PaymentStatus = types.PaymentStatusCompleted
		p.UpdatedAt = time.Now().UTC()
		p.UpdatedBy = types.GetUserID(ctx)
		if err := s.PaymentRepo.Update(ctx, p); err != nil {
			return err
		}
		var err error
		result, err = s.settle(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *paymentService) GetReceipt(ctx context.Context, paymentID string) (*payment.Receipt, error) {
	return s.ReceiptRepo.GetByPayment(ctx, paymentID)
}

func (s *paymentService) newPayment(ctx context.Context, invoiceID string, input ApplyPaymentInput, status types.PaymentStatus) (*payment.Payment, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}

	p := &payment.Payment{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:      inv.ID,
		PremiseID:      inv.PremiseID,
		BuildingID:     inv.BuildingID,
		Amount:         input.Amount,
		Method:         input.Method,
		TransactionRef: input.TransactionRef,
		PaymentDate:    paymentDate,
		PaymentStatus:  status,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// settle applies a completed payment to its invoice and issues the receipt.
// The penalty is not recomputed here; only amount_paid changes and the
// status re-derives from the invoice's current total.
func (s *paymentService) settle(ctx context.Context, p *payment.Payment) (*PaymentResult, error) {
	inv, err := s.InvoiceRepo.Get(ctx, p.InvoiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv.AmountPaid = inv.AmountPaid.Add(p.Amount)
	inv.Payments = append(inv.Payments, invoice.AppliedPayment{
		PaymentID: p.ID,
		Amount:    p.Amount,
		Date:      p.PaymentDate,
	})
	inv.RefreshStatus(now)
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	receipt := &payment.Receipt{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECEIPT),
		ReceiptNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_RECEIPT),
		PaymentID:     p.ID,
		InvoiceID:     inv.ID,
		PremiseID:     inv.PremiseID,
		Amount:        p.Amount,
		Method:        p.Method,
		PaymentDate:   p.PaymentDate,
		GeneratedAt:   now,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := s.ReceiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}

	s.Logger.Infow("payment applied",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
		"amount", p.Amount,
		"amount_paid", inv.AmountPaid,
		"status", inv.InvoiceStatus,
	)
	s.audit.Record(ctx, "payment", p.ID, auditlog.ActionCreate, map[string]any{
		"invoice_id":     inv.ID,
		"amount":         p.Amount,
		"method":         p.Method,
		"invoice_status": inv.InvoiceStatus,
	})

	return &PaymentResult{Payment: p, Invoice: inv, Receipt: receipt}, nil
}

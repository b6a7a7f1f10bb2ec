package postgres

import (
	"context"

	"github.com/waterbills/waterbills/internal/domain/payment"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	"github.com/waterbills/waterbills/internal/types"
)

type paymentRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewPaymentRepository creates a postgres backed payment repository
func NewPaymentRepository(client postgres.IClient, log *logger.Logger) payment.Repository {
	return &paymentRepository{client: client, log: log}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	r.log.Debugw("creating payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"method", p.Method,
	)
	if err := r.client.Querier(ctx).Create(paymentToRow(p)).Error; err != nil {
		return translateErr(err, "payment")
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var row paymentRow
	err := r.client.Querier(ctx).
		Where("id = ? AND status = ?", id, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "payment")
	}
	return paymentFromRow(&row), nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	result := r.client.Querier(ctx).
		Where("id = ?", p.ID).
		Save(paymentToRow(p))
	if result.Error != nil {
		return translateErr(result.Error, "payment")
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("payment not found").
			WithHint("Payment not found").
			WithReportableDetails(map[string]any{"payment_id": p.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) GetByTransactionRef(ctx context.Context, transactionRef string) (*payment.Payment, error) {
	var row paymentRow
	err := r.client.Querier(ctx).
		Where("transaction_ref = ? AND status = ?", transactionRef, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "payment")
	}
	return paymentFromRow(&row), nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	var rows []*paymentRow
	err := r.client.Querier(ctx).
		Where("invoice_id = ? AND status = ?", invoiceID, types.StatusPublished).
		Order("payment_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err, "payment")
	}

	payments := make([]*payment.Payment, len(rows))
	for i, row := range rows {
		payments[i] = paymentFromRow(row)
	}
	return payments, nil
}

type receiptRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewReceiptRepository creates a postgres backed receipt repository
func NewReceiptRepository(client postgres.IClient, log *logger.Logger) payment.ReceiptRepository {
	return &receiptRepository{client: client, log: log}
}

func (r *receiptRepository) Create(ctx context.Context, rc *payment.Receipt) error {
	r.log.Debugw("creating receipt", "receipt_id", rc.ID, "payment_id", rc.PaymentID)
	if err := r.client.Querier(ctx).Create(receiptToRow(rc)).Error; err != nil {
		return translateErr(err, "receipt")
	}
	return nil
}

func (r *receiptRepository) GetByPayment(ctx context.Context, paymentID string) (*payment.Receipt, error) {
	var row receiptRow
	err := r.client.Querier(ctx).
		Where("payment_id = ? AND status = ?", paymentID, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "receipt")
	}
	return receiptFromRow(&row), nil
}

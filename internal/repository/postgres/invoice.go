package postgres

import (
	"context"
	"time"

	"github.com/waterbills/waterbills/internal/domain/invoice"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	"github.com/waterbills/waterbills/internal/types"
)

type invoiceRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewInvoiceRepository creates a postgres backed invoice repository
func NewInvoiceRepository(client postgres.IClient, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{client: client, log: log}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	r.log.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"premise_id", inv.PremiseID,
		"period", inv.Period,
	)
	if err := r.client.Querier(ctx).Create(invoiceToRow(inv)).Error; err != nil {
		return translateErr(err, "invoice")
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var row invoiceRow
	err := r.client.Querier(ctx).
		Where("id = ? AND status = ?", id, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "invoice")
	}
	return invoiceFromRow(&row), nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	result := r.client.Querier(ctx).
		Where("id = ?", inv.ID).
		Save(invoiceToRow(inv))
	if result.Error != nil {
		return translateErr(result.Error, "invoice")
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRepository) GetByPremiseAndPeriod(ctx context.Context, premiseID string, period types.Period) (*invoice.Invoice, error) {
	var row invoiceRow
	err := r.client.Querier(ctx).
		Where("premise_id = ? AND period = ? AND status = ?", premiseID, period, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "invoice")
	}
	return invoiceFromRow(&row), nil
}

func (r *invoiceRepository) ListByBuildingAndPeriod(ctx context.Context, buildingID string, period types.Period) ([]*invoice.Invoice, error) {
	var rows []*invoiceRow
	err := r.client.Querier(ctx).
		Where("building_id = ? AND period = ? AND status = ?", buildingID, period, types.StatusPublished).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err, "invoice")
	}
	return invoicesFromRows(rows), nil
}

func (r *invoiceRepository) ListOverdueEligible(ctx context.Context, asOf time.Time) ([]*invoice.Invoice, error) {
	var rows []*invoiceRow
	err := r.client.Querier(ctx).
		Where("invoice_status IN ? AND due_date < ? AND status = ?",
			[]types.InvoiceStatus{
				types.InvoiceStatusUnpaid,
				types.InvoiceStatusPartial,
				types.InvoiceStatusOverdue,
			},
			asOf,
			types.StatusPublished,
		).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err, "invoice")
	}
	return invoicesFromRows(rows), nil
}

func (r *invoiceRepository) GetLatestSettleableByPremise(ctx context.Context, premiseID string) (*invoice.Invoice, error) {
	var row invoiceRow
	err := r.client.Querier(ctx).
		Where("premise_id = ? AND invoice_status IN ? AND status = ?",
			premiseID,
			[]types.InvoiceStatus{
				types.InvoiceStatusUnpaid,
				types.InvoiceStatusPartial,
				types.InvoiceStatusOverdue,
			},
			types.StatusPublished,
		).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "invoice")
	}
	return invoiceFromRow(&row), nil
}

func invoicesFromRows(rows []*invoiceRow) []*invoice.Invoice {
	invoices := make([]*invoice.Invoice, len(rows))
	for i, row := range rows {
		invoices[i] = invoiceFromRow(row)
	}
	return invoices
}

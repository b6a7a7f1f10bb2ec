package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waterbills/waterbills/internal/domain/auditlog"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// InvoiceService owns the invoice lifecycle. Generation is idempotent per
// (premise, period): an existing invoice is returned unchanged, never
// duplicated or overwritten.
type InvoiceService interface {
	// GenerateInvoice creates the invoice for one premise and period, or
	// returns the existing one unchanged
	GenerateInvoice(ctx context.Context, premiseID string, period types.Period) (*invoice.Invoice, error)

	// GenerateBuildingInvoices fans generation out across every premise in
	// the building. Each premise succeeds or fails independently.
	GenerateBuildingInvoices(ctx context.Context, buildingID string, period types.Period) ([]*GenerationResult, error)

	// GetInvoice retrieves an invoice by ID
	GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error)

	// ListBuildingInvoices retrieves all invoices for a building and period
	ListBuildingInvoices(ctx context.Context, buildingID string, period types.Period) ([]*invoice.Invoice, error)
}

// GenerationResult is the per-premise outcome of a building generation run.
type GenerationResult struct {
	PremiseID string           `json:"premise_id"`
	Success   bool             `json:"success"`
	Invoice   *invoice.Invoice `json:"invoice,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type invoiceService struct {
	ServiceParams
	allocation AllocationService
	audit      AuditService
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		allocation:    NewAllocationService(params),
		audit:         NewAuditService(params),
	}
}

func (s *invoiceService) GenerateInvoice(ctx context.Context, premiseID string, period types.Period) (*invoice.Invoice, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	// Fast path: the invoice already exists
	if existing, err := s.InvoiceRepo.GetByPremiseAndPeriod(ctx, premiseID, period); err == nil {
		return existing, nil
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	p, err := s.PremiseRepo.Get(ctx, premiseID)
	if err != nil {
		return nil, err
	}

	usage, err := s.allocation.PreviewBuildingUsage(ctx, p.BuildingID, period)
	if err != nil {
		return nil, err
	}

	waterAmount := decimal.Zero
	if sub, ok := usage.submeterUsageFor(premiseID); ok {
		waterAmount = sub.WaterAmount
	}

	dueDate, err := period.DueDate()
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		PremiseID:        premiseID,
		BuildingID:       p.BuildingID,
		Period:           period,
		InvoiceDate:      time.Now().UTC(),
		DueDate:          dueDate,
		RentAmount:       p.MonthlyRent,
		WaterAmount:      waterAmount,
		PreviousBalance:  p.PreviousBalance,
		PenaltyAmount:    decimal.Zero,
		AmountPaid:       decimal.Zero,
		InvoiceStatus:    types.InvoiceStatusUnpaid,
		ConnectionStatus: types.ConnectionStatusConnected,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	inv.TotalAmount = inv.GrossTotal()

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		// A concurrent generation attempt won the race; return its invoice
		if ierr.IsAlreadyExists(err) {
			return s.InvoiceRepo.GetByPremiseAndPeriod(ctx, premiseID, period)
		}
		return nil, err
	}

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"premise_id", premiseID,
		"period", period,
		"total_amount", inv.TotalAmount,
	)
	s.audit.Record(ctx, "invoice", inv.ID, auditlog.ActionCreate, map[string]any{
		"premise_id":   premiseID,
		"period":       period.String(),
		"rent_amount":  inv.RentAmount,
		"water_amount": inv.WaterAmount,
		"total_amount": inv.TotalAmount,
	})

	return inv, nil
}

func (s *invoiceService) GenerateBuildingInvoices(ctx context.Context, buildingID string, period types.Period) ([]*GenerationResult, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	premises, err := s.PremiseRepo.ListByBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	results := make([]*GenerationResult, 0, len(premises))
	succeeded := 0
	for _, p := range premises {
		inv, err := s.GenerateInvoice(ctx, p.ID, period)
		if err != nil {
			s.Logger.Errorw("invoice generation failed for premise",
				"premise_id", p.ID,
				"period", period,
				"error", err,
			)
			results = append(results, &GenerationResult{
				PremiseID: p.ID,
				Success:   false,
				Error:     err.Error(),
			})
			continue
		}
		succeeded++
		results = append(results, &GenerationResult{
			PremiseID: p.ID,
			Success:   true,
			Invoice:   inv,
		})
	}

	s.Logger.Infow("building invoice generation finished",
		"building_id", buildingID,
		"period", period,
		"premises", len(premises),
		"succeeded", succeeded,
		"failed", len(premises)-succeeded,
	)
	return results, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.InvoiceRepo.Get(ctx, id)
}

func (s *invoiceService) ListBuildingInvoices(ctx context.Context, buildingID string, period types.Period) ([]*invoice.Invoice, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return s.InvoiceRepo.ListByBuildingAndPeriod(ctx, buildingID, period)
}

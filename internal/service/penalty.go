package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waterbills/waterbills/internal/domain/auditlog"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// PenaltyService recomputes late fees. Accrual is linear and recomputed from
// scratch on every run, so repeated invocation on the same day yields the
// same result.
type PenaltyService interface {
	// RecalculatePenalty recomputes the penalty, total and status of one
	// invoice as of now
	RecalculatePenalty(ctx context.Context, invoiceID string) (*PenaltyResult, error)
}

// PenaltyResult reports the outcome of one penalty recomputation.
type PenaltyResult struct {
	InvoiceID string              `json:"invoice_id"`
	DaysLate  int                 `json:"days_late"`
	Penalty   decimal.Decimal     `json:"penalty"`
	NewTotal  decimal.Decimal     `json:"new_total"`
	Status    types.InvoiceStatus `json:"status"`
}

type penaltyService struct {
	ServiceParams
	audit AuditService
}

// NewPenaltyService creates a new penalty service
func NewPenaltyService(params ServiceParams) PenaltyService {
	return &penaltyService{
		ServiceParams: params,
		audit:         NewAuditService(params),
	}
}

func (s *penaltyService) RecalculatePenalty(ctx context.Context, invoiceID string) (*PenaltyResult, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.SettingsRepo.GetByBuilding(ctx, inv.BuildingID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("billing settings missing").
				WithHint("Configure pricing settings for this building before accruing penalties").
				WithReportableDetails(map[string]any{
					"building_id": inv.BuildingID,
				}).
				Mark(ierr.ErrConfigurationMissing)
		}
		return nil, err
	}

	now := time.Now().UTC()
	daysLate := inv.DaysLate(now)

	// A settled invoice accrues nothing regardless of lateness
	penalty := decimal.Zero
	if daysLate > 0 && inv.UnpaidAmount().IsPositive() {
		penalty = decimal.NewFromInt(int64(daysLate)).Mul(cfg.PenaltyDaily)
	}

	previousPenalty := inv.PenaltyAmount
	inv.PenaltyAmount = penalty
	inv.TotalAmount = inv.GrossTotal()
	inv.RefreshStatus(now)
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	if !penalty.Equal(previousPenalty) {
		s.Logger.Infow("penalty recomputed",
			"invoice_id", inv.ID,
			"days_late", daysLate,
			"penalty", penalty,
			"new_total", inv.TotalAmount,
			"status", inv.InvoiceStatus,
		)
		s.audit.Record(ctx, "invoice", inv.ID, auditlog.ActionUpdate, map[string]any{
			"penalty_amount": penalty,
			"total_amount":   inv.TotalAmount,
			"status":         inv.InvoiceStatus,
			"days_late":      daysLate,
		})
	}

	return &PenaltyResult{
		InvoiceID: inv.ID,
		DaysLate:  daysLate,
		Penalty:   penalty,
		NewTotal:  inv.TotalAmount,
		Status:    inv.InvoiceStatus,
	}, nil
}

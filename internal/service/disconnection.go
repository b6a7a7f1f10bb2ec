package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waterbills/waterbills/internal/domain/auditlog"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// DisconnectionService flags premises whose unpaid balance persists past
// their grace day. It only records intent; physical disconnection and any
// reconnection are administrative actions outside the core.
type DisconnectionService interface {
	// EvaluateDisconnections checks every premise in the building and flags
	// the ones past their grace day with an unpaid balance. Returns the
	// newly flagged premises; already flagged invoices are skipped.
	EvaluateDisconnections(ctx context.Context, buildingID string) ([]*DisconnectionTask, error)
}

// DisconnectionTask is one newly flagged premise.
type DisconnectionTask struct {
	PremiseID    string          `json:"premise_id"`
	UnitNo       string          `json:"unit_no"`
	InvoiceID    string          `json:"invoice_id"`
	Period       types.Period    `json:"period"`
	UnpaidAmount decimal.Decimal `json:"unpaid_amount"`
	FlaggedAt    time.Time       `json:"flagged_at"`
}

type disconnectionService struct {
	ServiceParams
	audit AuditService
}

// NewDisconnectionService creates a new disconnection service
func NewDisconnectionService(params ServiceParams) DisconnectionService {
	return &disconnectionService{
		ServiceParams: params,
		audit:         NewAuditService(params),
	}
}

func (s *disconnectionService) EvaluateDisconnections(ctx context.Context, buildingID string) ([]*DisconnectionTask, error) {
	b, err := s.BuildingRepo.Get(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	premises, err := s.PremiseRepo.ListByBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	// Grace days are calendar days where the building stands, not UTC days.
	// Persisted timestamps stay UTC.
	now := time.Now().UTC()
	localDay := now.In(s.buildingLocation(b.ID, b.Timezone)).Day()

	var tasks []*DisconnectionTask
	for _, p := range premises {
		inv, err := s.InvoiceRepo.GetLatestSettleableByPremise(ctx, p.ID)
		if err != nil {
			if ierr.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		if localDay <= p.DisconnectAfterDay {
			continue
		}
		unpaid := inv.UnpaidAmount()
		if !unpaid.IsPositive() {
			continue
		}
		if inv.ConnectionStatus == types.ConnectionStatusDisconnect {
			continue
		}

		inv.ConnectionStatus = types.ConnectionStatusDisconnect
		inv.UpdatedAt = now
		inv.UpdatedBy = types.GetUserID(ctx)
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			s.Logger.Errorw("failed to flag premise for disconnection",
				"premise_id", p.ID,
				"invoice_id", inv.ID,
				"error", err,
			)
			continue
		}

		s.Logger.Infow("premise flagged for disconnection",
			"premise_id", p.ID,
			"unit_no", p.UnitNo,
			"invoice_id", inv.ID,
			"unpaid_amount", unpaid,
		)
		s.audit.Record(ctx, "invoice", inv.ID, auditlog.ActionUpdate, map[string]any{
			"water_connection_status": types.ConnectionStatusDisconnect,
			"premise_id":              p.ID,
			"unpaid_amount":           unpaid,
		})

		tasks = append(tasks, &DisconnectionTask{
			PremiseID:    p.ID,
			UnitNo:       p.UnitNo,
			InvoiceID:    inv.ID,
			Period:       inv.Period,
			UnpaidAmount: unpaid,
			FlaggedAt:    now,
		})
	}

	return tasks, nil
}

// buildingLocation resolves a building's IANA timezone. An empty or unknown
// zone falls back to UTC so evaluation still runs.
func (s *disconnectionService) buildingLocation(buildingID, timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		s.Logger.Warnw("unknown building timezone, using UTC",
			"building_id", buildingID,
			"timezone", timezone,
		)
		return time.UTC
	}
	return loc
}

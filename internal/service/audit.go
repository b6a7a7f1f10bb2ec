package service

import (
	"context"
	"time"

	"github.com/waterbills/waterbills/internal/domain/auditlog"
	"github.com/waterbills/waterbills/internal/types"
)

// AuditService records audit entries for billing mutations. Writes are
// best-effort: a failed audit write is logged and discarded, it must never
// fail or roll back the operation that triggered it.
type AuditService interface {
	Record(ctx context.Context, entityType, entityID string, action auditlog.Action, changes map[string]any)
}

type auditService struct {
	ServiceParams
}

// NewAuditService creates a new audit service
func NewAuditService(params ServiceParams) AuditService {
	return &auditService{ServiceParams: params}
}

func (s *auditService) Record(ctx context.Context, entityType, entityID string, action auditlog.Action, changes map[string]any) {
	entry := &auditlog.AuditLog{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Changes:     changes,
		PerformedBy: types.GetUserID(ctx),
		Timestamp:   time.Now().UTC(),
	}

	if err := s.AuditLogRepo.Create(ctx, entry); err != nil {
		s.Logger.Warnw("failed to write audit log",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
	}
}

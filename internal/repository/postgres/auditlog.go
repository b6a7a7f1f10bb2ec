package postgres

import (
	"context"

	"github.com/waterbills/waterbills/internal/domain/auditlog"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
)

type auditLogRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewAuditLogRepository creates a postgres backed audit log repository
func NewAuditLogRepository(client postgres.IClient, log *logger.Logger) auditlog.Repository {
	return &auditLogRepository{client: client, log: log}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *auditlog.AuditLog) error {
	if err := r.client.Querier(ctx).Create(auditLogToRow(entry)).Error; err != nil {
		return translateErr(err, "audit log")
	}
	return nil
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*auditlog.AuditLog, error) {
	var rows []*auditLogRow
	err := r.client.Querier(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err, "audit log")
	}

	entries := make([]*auditlog.AuditLog, len(rows))
	for i, row := range rows {
		entries[i] = auditLogFromRow(row)
	}
	return entries, nil
}

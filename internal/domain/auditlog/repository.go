package auditlog

import "context"

// Repository is the audit sink. Implementations may buffer or drop entries;
// callers must never treat a write failure as fatal.
type Repository interface {
	// Create appends an audit entry
	Create(ctx context.Context, entry *AuditLog) error

	// ListByEntity retrieves the audit trail for one entity, newest first
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*AuditLog, error)
}

package testutil

import (
	"context"

	domainAuditLog "github.com/waterbills/waterbills/internal/domain/auditlog"
)

// InMemoryAuditLogStore implements an in-memory audit log repository for testing
type InMemoryAuditLogStore struct {
	*InMemoryStore[*domainAuditLog.AuditLog]
}

// NewInMemoryAuditLogStore creates a new in-memory audit log store
func NewInMemoryAuditLogStore() *InMemoryAuditLogStore {
	return &InMemoryAuditLogStore{
		InMemoryStore: NewInMemoryStore[*domainAuditLog.AuditLog](),
	}
}

func (s *InMemoryAuditLogStore) Create(ctx context.Context, entry *domainAuditLog.AuditLog) error {
	return s.InMemoryStore.Create(ctx, entry.ID, entry)
}

func (s *InMemoryAuditLogStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domainAuditLog.AuditLog, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, entry *domainAuditLog.AuditLog, _ interface{}) bool {
			return entry.EntityType == entityType && entry.EntityID == entityID
		},
		func(i, j *domainAuditLog.AuditLog) bool {
			return i.Timestamp.After(j.Timestamp)
		},
	)
}

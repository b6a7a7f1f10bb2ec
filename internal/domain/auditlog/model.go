package auditlog

import (
	"time"
)

// Action names the mutation an audit entry records.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
)

// AuditLog is a fire-and-forget trail entry. Writes are best-effort: a
// failed audit write is logged and discarded, never failing the business
// operation that produced it.
type AuditLog struct {
	ID          string         `json:"id"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Action      Action         `json:"action"`
	Changes     map[string]any `json:"changes,omitempty"`
	PerformedBy string         `json:"performed_by"`
	Timestamp   time.Time      `json:"timestamp"`
}

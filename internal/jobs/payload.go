package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// MetadataJobKey is the message metadata field carrying the idempotent job
// key, used for dedup bookkeeping on both sides of the queue.
const MetadataJobKey = "job_key"

// GenerationPayload asks a worker to generate every invoice for a building
// and period.
type GenerationPayload struct {
	BuildingID string       `json:"building_id"`
	Period     types.Period `json:"period"`
}

// PenaltyPayload asks a worker to recompute one invoice's penalty.
type PenaltyPayload struct {
	InvoiceID string `json:"invoice_id"`
}

// DisconnectPayload asks a worker to evaluate disconnections for a building.
type DisconnectPayload struct {
	BuildingID string `json:"building_id"`
}

// GenerationKey is the dedup identity of a generation job. Re-enqueueing the
// same building and period while a job is pending collapses to one run.
func GenerationKey(buildingID string, period types.Period) string {
	return fmt.Sprintf("%s:%s:%s", types.JobKindGeneration, buildingID, period)
}

// PenaltyKey buckets penalty jobs per invoice per calendar day.
func PenaltyKey(invoiceID string, at time.Time) string {
	return fmt.Sprintf("%s:%s:%s", types.JobKindPenalty, invoiceID, at.UTC().Format("2006-01-02"))
}

// DisconnectKey buckets disconnect jobs per building per calendar day.
func DisconnectKey(buildingID string, at time.Time) string {
	return fmt.Sprintf("%s:%s:%s", types.JobKindDisconnect, buildingID, at.UTC().Format("2006-01-02"))
}

func marshalPayload(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode job payload").
			Mark(ierr.ErrSystem)
	}
	return data, nil
}

func unmarshalPayload(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to decode job payload").
			Mark(ierr.ErrValidation)
	}
	return nil
}

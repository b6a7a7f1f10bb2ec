package types

import (
	"github.com/samber/lo"

	ierr "github.com/waterbills/waterbills/internal/errors"
)

// JobKind identifies one of the three scheduled billing job queues.
type JobKind string

const (
	// JobKindGeneration produces invoices for every premise in a building.
	JobKindGeneration JobKind = "generation"
	// JobKindPenalty recomputes the late penalty on a single invoice.
	JobKindPenalty JobKind = "penalty"
	// JobKindDisconnect evaluates a building's premises for disconnection.
	JobKindDisconnect JobKind = "disconnect"
)

func (k JobKind) String() string {
	return string(k)
}

func (k JobKind) Validate() error {
	allowed := []JobKind{
		JobKindGeneration,
		JobKindPenalty,
		JobKindDisconnect,
	}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid job kind").
			WithHint("Job kind must be one of: generation, penalty, disconnect").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Topic is the queue topic jobs of this kind are published to.
func (k JobKind) Topic() string {
	switch k {
	case JobKindGeneration:
		return "jobs.invoice_generation"
	case JobKindPenalty:
		return "jobs.penalty_calculation"
	case JobKindDisconnect:
		return "jobs.disconnect_evaluation"
	default:
		return ""
	}
}

// JobsDeadLetterTopic receives jobs that exhausted their retries. Terminal
// failures stay visible to operators instead of being dropped.
const JobsDeadLetterTopic = "jobs.dead_letter"

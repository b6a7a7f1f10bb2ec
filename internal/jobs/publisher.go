package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/pubsub"
	"github.com/waterbills/waterbills/internal/types"
)

// Publisher enqueues billing jobs with idempotent keys. A key that is
// already pending is not enqueued again; the job key is the dedup identity,
// a defense in depth on top of the engines' own idempotency.
type Publisher interface {
	// EnqueueGeneration enqueues invoice generation for a building and period
	EnqueueGeneration(ctx context.Context, buildingID string, period types.Period) error

	// EnqueuePenalty enqueues a penalty recomputation for one invoice
	EnqueuePenalty(ctx context.Context, invoiceID string) error

	// EnqueueDisconnect enqueues a disconnection evaluation for a building
	EnqueueDisconnect(ctx context.Context, buildingID string) error

	// Complete releases a job key once its handler has finished
	Complete(key string)
}

type publisher struct {
	ps  pubsub.Publisher
	log *logger.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewPublisher creates a new job publisher
func NewPublisher(ps pubsub.Publisher, log *logger.Logger) Publisher {
	return &publisher{
		ps:      ps,
		log:     log,
		pending: make(map[string]struct{}),
	}
}

func (p *publisher) EnqueueGeneration(ctx context.Context, buildingID string, period types.Period) error {
	if err := period.Validate(); err != nil {
		return err
	}
	return p.enqueue(ctx, types.JobKindGeneration,
		GenerationKey(buildingID, period),
		GenerationPayload{BuildingID: buildingID, Period: period},
	)
}

func (p *publisher) EnqueuePenalty(ctx context.Context, invoiceID string) error {
	return p.enqueue(ctx, types.JobKindPenalty,
		PenaltyKey(invoiceID, time.Now()),
		PenaltyPayload{InvoiceID: invoiceID},
	)
}

func (p *publisher) EnqueueDisconnect(ctx context.Context, buildingID string) error {
	return p.enqueue(ctx, types.JobKindDisconnect,
		DisconnectKey(buildingID, time.Now()),
		DisconnectPayload{BuildingID: buildingID},
	)
}

func (p *publisher) Complete(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, key)
}

func (p *publisher) enqueue(ctx context.Context, kind types.JobKind, key string, payload any) error {
	p.mu.Lock()
	if _, exists := p.pending[key]; exists {
		p.mu.Unlock()
		p.log.Debugw("job already pending, skipping enqueue",
			"job_kind", kind,
			"job_key", key,
		)
		return nil
	}
	p.pending[key] = struct{}{}
	p.mu.Unlock()

	data, err := marshalPayload(payload)
	if err != nil {
		p.Complete(key)
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataJobKey, key)

	if err := p.ps.Publish(ctx, kind.Topic(), msg); err != nil {
		p.Complete(key)
		return err
	}

	p.log.Debugw("job enqueued",
		"job_kind", kind,
		"job_key", key,
		"message_uuid", msg.UUID,
	)
	return nil
}

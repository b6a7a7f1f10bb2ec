package jobs

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/waterbills/waterbills/internal/config"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/pubsub"
	"github.com/waterbills/waterbills/internal/pubsub/router"
	"github.com/waterbills/waterbills/internal/service"
	"github.com/waterbills/waterbills/internal/types"
)

// Worker consumes the three job queues and invokes the billing engines.
// Each handler processes one message to completion; failures propagate to
// the router's retry policy and end up on the dead letter topic once
// retries are exhausted.
type Worker struct {
	router     *router.Router
	subscriber pubsub.Subscriber
	publisher  Publisher
	cfg        *config.Configuration
	log        *logger.Logger

	invoiceService       service.InvoiceService
	penaltyService       service.PenaltyService
	disconnectionService service.DisconnectionService
}

// NewWorker creates a new job worker
func NewWorker(
	r *router.Router,
	subscriber pubsub.Subscriber,
	publisher Publisher,
	cfg *config.Configuration,
	log *logger.Logger,
	invoiceService service.InvoiceService,
	penaltyService service.PenaltyService,
	disconnectionService service.DisconnectionService,
) *Worker {
	return &Worker{
		router:               r,
		subscriber:           subscriber,
		publisher:            publisher,
		cfg:                  cfg,
		log:                  log,
		invoiceService:       invoiceService,
		penaltyService:       penaltyService,
		disconnectionService: disconnectionService,
	}
}

// RegisterHandlers attaches the three queue handlers to the router. Call
// before the router runs.
func (w *Worker) RegisterHandlers() {
	w.router.AddNoPublishHandler(
		"invoice_generation_worker",
		types.JobKindGeneration.Topic(),
		w.subscriber,
		w.handleGeneration,
		router.SkipPermanentFailures(w.log),
	)
	w.router.AddNoPublishHandler(
		"penalty_calculation_worker",
		types.JobKindPenalty.Topic(),
		w.subscriber,
		w.handlePenalty,
		router.SkipPermanentFailures(w.log),
	)
	w.router.AddNoPublishHandler(
		"disconnect_evaluation_worker",
		types.JobKindDisconnect.Topic(),
		w.subscriber,
		w.handleDisconnect,
		router.SkipPermanentFailures(w.log),
	)
	w.router.AddNoPublishHandler(
		"dead_letter_worker",
		types.JobsDeadLetterTopic,
		w.subscriber,
		w.handleDeadLetter,
	)
}

func (w *Worker) handleGeneration(msg *message.Message) (err error) {
	defer func() { w.finish(msg, err) }()

	var payload GenerationPayload
	if err = unmarshalPayload(msg.Payload, &payload); err != nil {
		return err
	}

	ctx, cancel := w.jobContext(msg)
	defer cancel()

	results, err := w.invoiceService.GenerateBuildingInvoices(ctx, payload.BuildingID, payload.Period)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	w.log.Infow("generation job finished",
		"building_id", payload.BuildingID,
		"period", payload.Period,
		"premises", len(results),
		"failed", failed,
	)
	return nil
}

func (w *Worker) handlePenalty(msg *message.Message) (err error) {
	defer func() { w.finish(msg, err) }()

	var payload PenaltyPayload
	if err = unmarshalPayload(msg.Payload, &payload); err != nil {
		return err
	}

	ctx, cancel := w.jobContext(msg)
	defer cancel()

	result, err := w.penaltyService.RecalculatePenalty(ctx, payload.InvoiceID)
	if err != nil {
		return err
	}

	w.log.Debugw("penalty job finished",
		"invoice_id", result.InvoiceID,
		"days_late", result.DaysLate,
		"penalty", result.Penalty,
	)
	return nil
}

func (w *Worker) handleDisconnect(msg *message.Message) (err error) {
	defer func() { w.finish(msg, err) }()

	var payload DisconnectPayload
	if err = unmarshalPayload(msg.Payload, &payload); err != nil {
		return err
	}

	ctx, cancel := w.jobContext(msg)
	defer cancel()

	tasks, err := w.disconnectionService.EvaluateDisconnections(ctx, payload.BuildingID)
	if err != nil {
		return err
	}

	w.log.Infow("disconnect job finished",
		"building_id", payload.BuildingID,
		"flagged", len(tasks),
	)
	return nil
}

// jobContext builds the handler context: system identity plus the configured
// handler timeout. A handler that exceeds it fails and is retried under the
// router's backoff policy.
func (w *Worker) jobContext(msg *message.Message) (context.Context, context.CancelFunc) {
	ctx := types.SetUserID(context.Background(), types.DefaultUserID)
	ctx = types.SetRequestID(ctx, msg.UUID)
	if w.cfg.Jobs.HandlerTimeout > 0 {
		return context.WithTimeout(ctx, w.cfg.Jobs.HandlerTimeout)
	}
	return ctx, func() {}
}

// finish settles the job key for one handler attempt. The key is freed on
// success and on permanent failures, which SkipPermanentFailures acks
// without redelivery. Transient failures keep the key held: the router
// still owes the message a retry, and a repeated trigger must not enqueue
// a duplicate in that window. Keys of jobs that exhaust their retries are
// freed by the dead letter handler.
func (w *Worker) finish(msg *message.Message, err error) {
	if err == nil || router.IsPermanentFailure(err) {
		w.release(msg)
	}
}

// handleDeadLetter logs jobs that exhausted their retries and frees their
// keys so the next trigger can enqueue them again.
func (w *Worker) handleDeadLetter(msg *message.Message) error {
	w.log.Errorw("job failed terminally",
		"message_uuid", msg.UUID,
		"job_key", msg.Metadata.Get(MetadataJobKey),
		"reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey),
	)
	w.release(msg)
	return nil
}

// release frees the job's dedup key
func (w *Worker) release(msg *message.Message) {
	if key := msg.Metadata.Get(MetadataJobKey); key != "" {
		w.publisher.Complete(key)
	}
}

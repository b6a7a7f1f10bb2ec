package cron

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waterbills/waterbills/internal/domain/invoice"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/jobs"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/service"
	"github.com/waterbills/waterbills/internal/types"
)

// BillingHandler exposes the scheduled billing runs as HTTP triggers so an
// external cron can drive them instead of the in-process scheduler. The
// endpoints only enqueue jobs; the worker does the actual billing, so a
// repeated trigger is deduplicated by the job keys.
type BillingHandler struct {
	publisher       jobs.Publisher
	registryService service.RegistryService
	invoiceRepo     invoice.Repository
	logger          *logger.Logger
}

func NewBillingHandler(
	publisher jobs.Publisher,
	registryService service.RegistryService,
	invoiceRepo invoice.Repository,
	logger *logger.Logger,
) *BillingHandler {
	return &BillingHandler{
		publisher:       publisher,
		registryService: registryService,
		invoiceRepo:     invoiceRepo,
		logger:          logger,
	}
}

// GenerateInvoicesRequest optionally narrows the run to one building and
// overrides the billing period.
type GenerateInvoicesRequest struct {
	BuildingID string       `json:"building_id,omitempty"`
	Period     types.Period `json:"period,omitempty"`
}

// GenerateInvoices enqueues invoice generation. Defaults to every building
// and the next calendar period, matching the monthly scheduled run.
func (h *BillingHandler) GenerateInvoices(c *gin.Context) {
	ctx := c.Request.Context()

	var req GenerateInvoicesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Errorw("failed to bind request", "error", err)
			c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
			return
		}
	}

	period := req.Period
	if period == "" {
		period = types.NextPeriod(time.Now().UTC())
	}
	if err := period.Validate(); err != nil {
		c.Error(err)
		return
	}

	buildingIDs := []string{req.BuildingID}
	if req.BuildingID == "" {
		buildings, err := h.registryService.ListBuildings(ctx)
		if err != nil {
			c.Error(err)
			return
		}
		buildingIDs = buildingIDs[:0]
		for _, b := range buildings {
			buildingIDs = append(buildingIDs, b.ID)
		}
	}

	enqueued := 0
	for _, id := range buildingIDs {
		if err := h.publisher.EnqueueGeneration(ctx, id, period); err != nil {
			h.logger.Errorw("failed to enqueue generation job", "building_id", id, "error", err)
			continue
		}
		enqueued++
	}

	h.logger.Infow("generation trigger processed", "period", period, "enqueued", enqueued)
	c.JSON(http.StatusAccepted, gin.H{"period": period, "enqueued": enqueued})
}

// RecalculatePenalties enqueues a penalty recomputation for every invoice
// past due and not settled.
func (h *BillingHandler) RecalculatePenalties(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()

	invoices, err := h.invoiceRepo.ListOverdueEligible(ctx, now)
	if err != nil {
		c.Error(err)
		return
	}

	enqueued := 0
	for _, inv := range invoices {
		if err := h.publisher.EnqueuePenalty(ctx, inv.ID); err != nil {
			h.logger.Errorw("failed to enqueue penalty job", "invoice_id", inv.ID, "error", err)
			continue
		}
		enqueued++
	}

	h.logger.Infow("penalty trigger processed", "enqueued", enqueued)
	c.JSON(http.StatusAccepted, gin.H{"enqueued": enqueued})
}

// EvaluateDisconnections enqueues a disconnection evaluation for every
// building.
func (h *BillingHandler) EvaluateDisconnections(c *gin.Context) {
	ctx := c.Request.Context()

	buildings, err := h.registryService.ListBuildings(ctx)
	if err != nil {
		c.Error(err)
		return
	}

	enqueued := 0
	for _, b := range buildings {
		if err := h.publisher.EnqueueDisconnect(ctx, b.ID); err != nil {
			h.logger.Errorw("failed to enqueue disconnect job", "building_id", b.ID, "error", err)
			continue
		}
		enqueued++
	}

	h.logger.Infow("disconnect trigger processed", "enqueued", enqueued)
	c.JSON(http.StatusAccepted, gin.H{"enqueued": enqueued})
}

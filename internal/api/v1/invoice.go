package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waterbills/waterbills/internal/api/dto"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/service"
	"github.com/waterbills/waterbills/internal/types"
)

// InvoiceHandler drives invoice generation and lookup.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// GenerateInvoice generates one premise's invoice for a period. Repeating the
// call for the same premise and period returns the stored invoice unchanged.
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	var req dto.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	inv, err := h.invoiceService.GenerateInvoice(c.Request.Context(), req.PremiseID, req.Period)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// GenerateBuildingInvoices generates invoices for every premise in a building
func (h *InvoiceHandler) GenerateBuildingInvoices(c *gin.Context) {
	buildingID := c.Param("id")
	if buildingID == "" {
		c.Error(ierr.NewError("invalid building id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.GenerateBuildingInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	results, err := h.invoiceService.GenerateBuildingInvoices(c.Request.Context(), buildingID, req.Period)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": results, "total": len(results)})
}

// GetInvoice returns one invoice by ID
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

// ListBuildingInvoices returns a building's invoices for a period
func (h *InvoiceHandler) ListBuildingInvoices(c *gin.Context) {
	buildingID := c.Param("id")
	if buildingID == "" {
		c.Error(ierr.NewError("invalid building id").Mark(ierr.ErrValidation))
		return
	}

	period := types.Period(c.Query("period"))
	if err := period.Validate(); err != nil {
		c.Error(err)
		return
	}

	invoices, err := h.invoiceService.ListBuildingInvoices(c.Request.Context(), buildingID, period)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": invoices, "total": len(invoices)})
}

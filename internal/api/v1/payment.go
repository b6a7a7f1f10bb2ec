package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waterbills/waterbills/internal/api/dto"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/service"
)

// PaymentHandler applies payments to invoices and serves receipts.
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *logger.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// ApplyPayment records a payment against an invoice and settles it
// immediately. Used for cash and other already-confirmed payments.
func (h *PaymentHandler) ApplyPayment(c *gin.Context) {
	invoiceID := c.Param("id")
	if invoiceID == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	result, err := h.paymentService.ApplyPayment(c.Request.Context(), invoiceID, req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// RecordPendingPayment records a gateway payment awaiting confirmation. The
// invoice is untouched until the gateway callback completes the payment.
func (h *PaymentHandler) RecordPendingPayment(c *gin.Context) {
	invoiceID := c.Param("id")
	if invoiceID == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	p, err := h.paymentService.RecordPendingPayment(c.Request.Context(), invoiceID, req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// GatewayCallback completes a pending payment once the gateway confirms it.
// Gateways retry callbacks; completing an already completed payment returns
// the recorded result without settling twice.
func (h *PaymentHandler) GatewayCallback(c *gin.Context) {
	var req dto.GatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	result, err := h.paymentService.CompleteGatewayPayment(c.Request.Context(), req.TransactionRef)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReceipt returns the receipt issued for a payment
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	paymentID := c.Param("id")
	if paymentID == "" {
		c.Error(ierr.NewError("invalid payment id").Mark(ierr.ErrValidation))
		return
	}

	receipt, err := h.paymentService.GetReceipt(c.Request.Context(), paymentID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

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

// MeterHandler registers meters and records monthly readings.
type MeterHandler struct {
	registryService service.RegistryService
	logger          *logger.Logger
}

func NewMeterHandler(registryService service.RegistryService, logger *logger.Logger) *MeterHandler {
	return &MeterHandler{
		registryService: registryService,
		logger:          logger,
	}
}

// CreateMeter registers a council, borehole or submeter
func (h *MeterHandler) CreateMeter(c *gin.Context) {
	var req dto.CreateMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	m, err := h.registryService.CreateMeter(c.Request.Context(), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// CreateReading records one meter reading for a period. A second reading for
// the same meter and period is rejected, never overwritten.
func (h *MeterHandler) CreateReading(c *gin.Context) {
	var req dto.CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	r, err := h.registryService.RecordReading(c.Request.Context(), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

// ListReadings returns a building's readings for a period
func (h *MeterHandler) ListReadings(c *gin.Context) {
	buildingID := c.Query("building_id")
	if buildingID == "" {
		c.Error(ierr.NewError("building_id is required").
			WithHint("Provide building_id as a query parameter").
			Mark(ierr.ErrValidation))
		return
	}

	period := types.Period(c.Query("period"))
	if err := period.Validate(); err != nil {
		c.Error(err)
		return
	}

	readings, err := h.registryService.ListReadings(c.Request.Context(), buildingID, period)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": readings, "total": len(readings)})
}

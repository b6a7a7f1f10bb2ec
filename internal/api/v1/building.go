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

// BuildingHandler exposes the billing registry: buildings, their premises and
// per-building rate settings, plus the usage allocation preview.
type BuildingHandler struct {
	registryService   service.RegistryService
	allocationService service.AllocationService
	logger            *logger.Logger
}

func NewBuildingHandler(
	registryService service.RegistryService,
	allocationService service.AllocationService,
	logger *logger.Logger,
) *BuildingHandler {
	return &BuildingHandler{
		registryService:   registryService,
		allocationService: allocationService,
		logger:            logger,
	}
}

// CreateBuilding registers a new building
func (h *BuildingHandler) CreateBuilding(c *gin.Context) {
	var req dto.CreateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	b, err := h.registryService.CreateBuilding(c.Request.Context(), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// GetBuilding returns one building by ID
func (h *BuildingHandler) GetBuilding(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid building id").Mark(ierr.ErrValidation))
		return
	}

	b, err := h.registryService.GetBuilding(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListBuildings returns all registered buildings
func (h *BuildingHandler) ListBuildings(c *gin.Context) {
	buildings, err := h.registryService.ListBuildings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": buildings, "total": len(buildings)})
}

// CreatePremise registers a rentable unit under a building
func (h *BuildingHandler) CreatePremise(c *gin.Context) {
	buildingID := c.Param("id")
	if buildingID == "" {
		c.Error(ierr.NewError("invalid building id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.CreatePremiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	p, err := h.registryService.CreatePremise(c.Request.Context(), req.ToInput(buildingID))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ListPremises returns all premises in a building
func (h *BuildingHandler) ListPremises(c *gin.Context) {
	buildingID := c.Param("id")
	if buildingID == "" {
		c.Error(ierr.NewError("invalid building id").Mark(ierr.ErrValidation))
		return
	}

	premises, err := h.registryService.ListPremises(c.Request.Context(), buildingID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": premises, "total": len(premises)})
}

// UpsertSettings creates or replaces the billing rates for a building
func (h *BuildingHandler) UpsertSettings(c *gin.Context) {
	buildingID := c.Param("id")
	if buildingID == "" {
		c.Error(ierr.NewError("invalid building id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpsertSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	s, err := h.registryService.UpsertSettings(c.Request.Context(), req.ToInput(buildingID))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, s)
}

// PreviewUsage computes the water allocation for a building and period
// without writing anything. Period comes from the query string as YYYY-MM.
func (h *BuildingHandler) PreviewUsage(c *gin.Context) {
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

	usage, err := h.allocationService.PreviewBuildingUsage(c.Request.Context(), buildingID, period)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

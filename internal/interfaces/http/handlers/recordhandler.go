package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/interfaces/dto"
	"github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/logger"
	"github.com/orris-inc/harborline/internal/shared/utils"
)

// RecordHandler serves facility and vessel CRUD against whichever store is
// authoritative at the time of the request.
type RecordHandler struct {
	gateway recordGateway
	view    viewSource
	logger  logger.Interface
}

func NewRecordHandler(gateway recordGateway, view viewSource, log logger.Interface) *RecordHandler {
	return &RecordHandler{
		gateway: gateway,
		view:    view,
		logger:  log,
	}
}

func (h *RecordHandler) listMeta() (string, string) {
	v := h.view.Snapshot()
	return v.Regime.String(), v.Phase.String()
}

func (h *RecordHandler) ListFacilities(c *gin.Context) {
	items := dto.ToFacilityDTOs(h.gateway.ListFacilities())
	regime, phase := h.listMeta()
	utils.ListSuccessResponse(c, items, len(items), regime, phase)
}

func (h *RecordHandler) CreateFacility(c *gin.Context) {
	var req FacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create facility", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	id, err := h.gateway.CreateFacility(c.Request.Context(), req.draft())
	if err != nil {
		h.logger.Errorw("failed to create facility", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"id": id}, "Storage facility created successfully")
}

func (h *RecordHandler) UpdateFacility(c *gin.Context) {
	var req FacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update facility", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	id := c.Param("id")
	// LastUpdate is assigned by the gateway.
	f := asset.NewStorageFacility(id, req.draft(), time.Time{})
	if err := h.gateway.UpdateFacility(c.Request.Context(), f); err != nil {
		h.logger.Errorw("failed to update facility", "id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Storage facility updated successfully", gin.H{"id": id})
}

func (h *RecordHandler) DeleteFacility(c *gin.Context) {
	id := c.Param("id")
	if err := h.gateway.DeleteFacility(c.Request.Context(), id); err != nil {
		h.logger.Errorw("failed to delete facility", "id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func (h *RecordHandler) ListVessels(c *gin.Context) {
	items := dto.ToVesselDTOs(h.gateway.ListVessels())
	regime, phase := h.listMeta()
	utils.ListSuccessResponse(c, items, len(items), regime, phase)
}

func (h *RecordHandler) CreateVessel(c *gin.Context) {
	var req VesselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create vessel", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	id, err := h.gateway.CreateVessel(c.Request.Context(), req.draft())
	if err != nil {
		h.logger.Errorw("failed to create vessel", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"id": id}, "Vessel created successfully")
}

func (h *RecordHandler) UpdateVessel(c *gin.Context) {
	var req VesselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update vessel", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	id := c.Param("id")
	if err := h.gateway.UpdateVessel(c.Request.Context(), asset.NewVessel(id, req.draft())); err != nil {
		h.logger.Errorw("failed to update vessel", "id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vessel updated successfully", gin.H{"id": id})
}

func (h *RecordHandler) DeleteVessel(c *gin.Context) {
	id := c.Param("id")
	if err := h.gateway.DeleteVessel(c.Request.Context(), id); err != nil {
		h.logger.Errorw("failed to delete vessel", "id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

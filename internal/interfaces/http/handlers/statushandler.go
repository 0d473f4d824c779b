package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/harborline/internal/interfaces/dto"
	"github.com/orris-inc/harborline/internal/shared/logger"
	"github.com/orris-inc/harborline/internal/shared/utils"
)

type StatusHandler struct {
	view   viewSource
	logger logger.Interface
}

func NewStatusHandler(view viewSource, log logger.Interface) *StatusHandler {
	return &StatusHandler{view: view, logger: log}
}

// Status reports the regime, phase and principal the records are served under.
func (h *StatusHandler) Status(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", dto.ToStatusDTO(h.view.Snapshot()))
}

// Healthcheck round-trips a probe document through the shared backend.
func (h *StatusHandler) Healthcheck(c *gin.Context) {
	latency, err := h.view.SelfTest(c.Request.Context())
	if err != nil {
		h.logger.Warnw("backend self-test failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Backend reachable", dto.HealthcheckDTO{
		Namespace: h.view.Snapshot().Namespace.String(),
		LatencyMS: latency.Milliseconds(),
	})
}

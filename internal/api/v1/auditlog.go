package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/intunedeck/intunedeck/internal/api/dto"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/service"
)

type AuditLogHandler struct {
	service service.AuditLogService
	log     *logger.Logger
}

func NewAuditLogHandler(service service.AuditLogService, log *logger.Logger) *AuditLogHandler {
	return &AuditLogHandler{service: service, log: log}
}

// @Summary Get audit events
// @Description List tenant device-management audit events
// @Tags Audit
// @Produce json
// @Param filter query dto.ListAuditEventsRequest false "Filter"
// @Success 200 {object} dto.ListAuditEventsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /audit/events [get]
func (h *AuditLogHandler) GetAuditEvents(c *gin.Context) {
	var req dto.ListAuditEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetAuditEvents(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/service"
	"github.com/intunedeck/intunedeck/internal/types"
)

type ApplicationHandler struct {
	service service.ApplicationService
	log     *logger.Logger
}

func NewApplicationHandler(service service.ApplicationService, log *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{service: service, log: log}
}

// @Summary Get applications
// @Description List the application catalog
// @Tags Applications
// @Produce json
// @Param filter query types.QueryFilter false "Filter"
// @Success 200 {object} dto.ListApplicationsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /applications [get]
func (h *ApplicationHandler) GetApplications(c *gin.Context) {
	var filter types.QueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetApplications(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get an application
// @Description Get one application with its current assignments
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	resp, err := h.service.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/service"
	"github.com/intunedeck/intunedeck/internal/types"
)

type DeviceHandler struct {
	service service.DeviceService
	log     *logger.Logger
}

func NewDeviceHandler(service service.DeviceService, log *logger.Logger) *DeviceHandler {
	return &DeviceHandler{service: service, log: log}
}

// @Summary Get devices
// @Description List enrolled devices
// @Tags Devices
// @Produce json
// @Param filter query types.QueryFilter false "Filter"
// @Success 200 {object} dto.ListDevicesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /devices [get]
func (h *DeviceHandler) GetDevices(c *gin.Context) {
	var filter types.QueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetDevices(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a device
// @Description Get one enrolled device by id
// @Tags Devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} dto.DeviceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /devices/{id} [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	resp, err := h.service.GetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

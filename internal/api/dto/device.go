package dto

import (
	"github.com/intunedeck/intunedeck/internal/domain/device"
	"github.com/intunedeck/intunedeck/internal/types"
)

// DeviceResponse is one enrolled device.
type DeviceResponse struct {
	*device.ManagedDevice
}

// ListDevicesResponse is the paginated device listing.
type ListDevicesResponse = types.ListResponse[*DeviceResponse]

func NewDeviceResponse(d *device.ManagedDevice) *DeviceResponse {
	return &DeviceResponse{ManagedDevice: d}
}

package service

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/api/dto"
	"github.com/intunedeck/intunedeck/internal/types"
)

// DeviceService exposes enrolled devices to the API layer.
type DeviceService interface {
	GetDevice(ctx context.Context, id string) (*dto.DeviceResponse, error)
	GetDevices(ctx context.Context, filter *types.QueryFilter) (*dto.ListDevicesResponse, error)
}

type deviceService struct {
	ServiceParams
}

func NewDeviceService(params ServiceParams) DeviceService {
	return &deviceService{ServiceParams: params}
}

func (s *deviceService) GetDevice(ctx context.Context, id string) (*dto.DeviceResponse, error) {
	d, err := s.DeviceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewDeviceResponse(d), nil
}

func (s *deviceService) GetDevices(ctx context.Context, filter *types.QueryFilter) (*dto.ListDevicesResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	devices, err := s.DeviceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DeviceResponse, len(devices))
	for i, d := range devices {
		items[i] = dto.NewDeviceResponse(d)
	}

	response := types.NewListResponse(items, len(items), filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/intunedeck/intunedeck/internal/domain/device"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/types"
)

type InMemoryDeviceStore struct {
	mu      sync.RWMutex
	devices map[string]*device.ManagedDevice
}

func NewInMemoryDeviceStore() *InMemoryDeviceStore {
	return &InMemoryDeviceStore{devices: make(map[string]*device.ManagedDevice)}
}

func (s *InMemoryDeviceStore) Add(d *device.ManagedDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.ID] = d
}

func (s *InMemoryDeviceStore) List(_ context.Context, filter *types.QueryFilter) ([]*device.ManagedDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*device.ManagedDevice
	for _, d := range s.devices {
		if search := filter.GetSearch(); search != "" {
			if !strings.Contains(strings.ToLower(d.DeviceName), strings.ToLower(search)) {
				continue
			}
		}
		result = append(result, d)
	}
	return result, nil
}

func (s *InMemoryDeviceStore) Get(_ context.Context, id string) (*device.ManagedDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.devices[id]; ok {
		return d, nil
	}
	return nil, ierr.NewError("device not found").
		WithHintf("No device with id %s", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryDeviceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = make(map[string]*device.ManagedDevice)
}

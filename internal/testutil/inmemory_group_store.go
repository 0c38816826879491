package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/intunedeck/intunedeck/internal/domain/group"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/types"
)

type InMemoryGroupStore struct {
	mu     sync.RWMutex
	groups map[string]*group.DeviceGroup
}

func NewInMemoryGroupStore() *InMemoryGroupStore {
	return &InMemoryGroupStore{groups: make(map[string]*group.DeviceGroup)}
}

func (s *InMemoryGroupStore) Add(g *group.DeviceGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
}

func (s *InMemoryGroupStore) List(_ context.Context, filter *types.QueryFilter) ([]*group.DeviceGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*group.DeviceGroup
	if filter.GetSearch() == "" {
		result = append(result, group.BuiltInTargets()...)
	}
	for _, g := range s.groups {
		if search := filter.GetSearch(); search != "" {
			if !strings.Contains(strings.ToLower(g.DisplayName), strings.ToLower(search)) {
				continue
			}
		}
		result = append(result, g)
	}
	return result, nil
}

func (s *InMemoryGroupStore) Get(_ context.Context, id string) (*group.DeviceGroup, error) {
	for _, builtIn := range group.BuiltInTargets() {
		if builtIn.ID == id {
			return builtIn, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.groups[id]; ok {
		return g, nil
	}
	return nil, ierr.NewError("group not found").
		WithHintf("No group with id %s", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryGroupStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = make(map[string]*group.DeviceGroup)
}

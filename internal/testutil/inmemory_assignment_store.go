package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/types"
)

// InMemoryAssignmentStore retains assignment history, newest first.
type InMemoryAssignmentStore struct {
	mu          sync.RWMutex
	assignments []*assignment.Assignment
}

func NewInMemoryAssignmentStore() *InMemoryAssignmentStore {
	return &InMemoryAssignmentStore{}
}

func (s *InMemoryAssignmentStore) CreateBulk(_ context.Context, assignments []*assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clones := make([]*assignment.Assignment, len(assignments))
	for i, a := range assignments {
		clones[i] = a.Clone()
	}
	s.assignments = append(clones, s.assignments...)
	return nil
}

func (s *InMemoryAssignmentStore) List(_ context.Context, filter *types.QueryFilter) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.match(filter)
	offset := filter.GetOffset()
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + filter.GetLimit()
	if end > len(matched) {
		end = len(matched)
	}

	result := make([]*assignment.Assignment, 0, end-offset)
	for _, a := range matched[offset:end] {
		result = append(result, a.Clone())
	}
	return result, nil
}

func (s *InMemoryAssignmentStore) Count(_ context.Context, filter *types.QueryFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.match(filter)), nil
}

func (s *InMemoryAssignmentStore) match(filter *types.QueryFilter) []*assignment.Assignment {
	search := strings.ToLower(filter.GetSearch())
	if search == "" {
		return s.assignments
	}

	var matched []*assignment.Assignment
	for _, a := range s.assignments {
		if strings.Contains(strings.ToLower(a.ApplicationName), search) ||
			strings.Contains(strings.ToLower(a.GroupName), search) {
			matched = append(matched, a)
		}
	}
	return matched
}

func (s *InMemoryAssignmentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = nil
}

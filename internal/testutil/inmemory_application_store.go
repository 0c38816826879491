package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/intunedeck/intunedeck/internal/domain/application"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/types"
)

// InMemoryApplicationStore doubles as the application catalog and the remote
// assignment state: RecordAssignments is wired to the mock Graph client so
// successful writes become visible to the next FetchAssignments.
type InMemoryApplicationStore struct {
	mu           sync.RWMutex
	applications map[string]*application.Application
	assignments  map[string][]*assignment.Assignment
	fetchErrs    map[string]error
	fetchCalls   map[string]int

	// OnFetch runs before each FetchAssignments, outside the store lock.
	OnFetch func(appID string)
}

func NewInMemoryApplicationStore() *InMemoryApplicationStore {
	return &InMemoryApplicationStore{
		applications: make(map[string]*application.Application),
		assignments:  make(map[string][]*assignment.Assignment),
		fetchErrs:    make(map[string]error),
		fetchCalls:   make(map[string]int),
	}
}

func (s *InMemoryApplicationStore) Add(app *application.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.ID] = app
}

// SeedAssignments sets the remote assignment state for an application.
func (s *InMemoryApplicationStore) SeedAssignments(appID string, assignments []*assignment.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[appID] = assignments
}

// FailFetch makes FetchAssignments fail for one application.
func (s *InMemoryApplicationStore) FailFetch(appID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErrs[appID] = err
}

// RecordAssignments appends successfully written assignments to the remote
// state, replacing entries for the same target.
func (s *InMemoryApplicationStore) RecordAssignments(appID string, written []*assignment.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.assignments[appID]
	for _, w := range written {
		replaced := false
		for i, existing := range current {
			if existing.PairKey() == w.PairKey() {
				current[i] = w.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			current = append(current, w.Clone())
		}
	}
	s.assignments[appID] = current
}

func (s *InMemoryApplicationStore) FetchCalls(appID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchCalls[appID]
}

func (s *InMemoryApplicationStore) List(_ context.Context, filter *types.QueryFilter) ([]*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*application.Application
	for _, app := range s.applications {
		if search := filter.GetSearch(); search != "" {
			if !strings.Contains(strings.ToLower(app.DisplayName), strings.ToLower(search)) {
				continue
			}
		}
		result = append(result, app)
	}
	return result, nil
}

func (s *InMemoryApplicationStore) Get(_ context.Context, id string) (*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if app, ok := s.applications[id]; ok {
		return app, nil
	}
	return nil, ierr.NewError("application not found").
		WithHintf("No application with id %s", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryApplicationStore) FetchAssignments(_ context.Context, appID string) ([]*assignment.Assignment, error) {
	if s.OnFetch != nil {
		s.OnFetch(appID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetchCalls[appID]++
	if err := s.fetchErrs[appID]; err != nil {
		return nil, err
	}

	current := s.assignments[appID]
	result := make([]*assignment.Assignment, len(current))
	for i, a := range current {
		result[i] = a.Clone()
	}
	return result, nil
}

func (s *InMemoryApplicationStore) InvalidateAssignments(_ context.Context, _ string) {}

func (s *InMemoryApplicationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = make(map[string]*application.Application)
	s.assignments = make(map[string][]*assignment.Assignment)
	s.fetchErrs = make(map[string]error)
	s.fetchCalls = make(map[string]int)
}

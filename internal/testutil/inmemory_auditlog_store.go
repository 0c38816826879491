package testutil

import (
	"context"
	"sync"

	"github.com/intunedeck/intunedeck/internal/domain/auditlog"
)

type InMemoryAuditLogStore struct {
	mu     sync.RWMutex
	events []*auditlog.AuditEvent
}

func NewInMemoryAuditLogStore() *InMemoryAuditLogStore {
	return &InMemoryAuditLogStore{}
}

func (s *InMemoryAuditLogStore) Add(e *auditlog.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *InMemoryAuditLogStore) List(_ context.Context, filter *auditlog.Filter) ([]*auditlog.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*auditlog.AuditEvent
	for _, e := range s.events {
		if filter != nil {
			if filter.Category != "" && e.Category != filter.Category {
				continue
			}
			if filter.From != nil && e.ActivityDate.Before(*filter.From) {
				continue
			}
			if filter.To != nil && e.ActivityDate.After(*filter.To) {
				continue
			}
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *InMemoryAuditLogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

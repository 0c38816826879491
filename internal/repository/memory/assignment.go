package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/types"
)

// assignmentRepository retains assignment history in memory for the lifetime
// of the process, newest first. The console has no relational store; durable
// history lives in the tenant's audit log.
type assignmentRepository struct {
	mu      sync.RWMutex
	history []*assignment.Assignment
	log     *logger.Logger
}

func NewAssignmentRepository(log *logger.Logger) assignment.Repository {
	return &assignmentRepository{
		log: log,
	}
}

func (r *assignmentRepository) CreateBulk(_ context.Context, assignments []*assignment.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clones := make([]*assignment.Assignment, len(assignments))
	for i, a := range assignments {
		clones[i] = a.Clone()
	}
	r.history = append(clones, r.history...)
	return nil
}

func (r *assignmentRepository) List(_ context.Context, filter *types.QueryFilter) ([]*assignment.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.match(filter)

	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*assignment.Assignment, 0, end-offset)
	for _, a := range matched[offset:end] {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (r *assignmentRepository) Count(_ context.Context, filter *types.QueryFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.match(filter)), nil
}

func (r *assignmentRepository) match(filter *types.QueryFilter) []*assignment.Assignment {
	search := strings.ToLower(filter.GetSearch())
	if search == "" {
		return r.history
	}

	var matched []*assignment.Assignment
	for _, a := range r.history {
		if strings.Contains(strings.ToLower(a.ApplicationName), search) ||
			strings.Contains(strings.ToLower(a.GroupName), search) {
			matched = append(matched, a)
		}
	}
	return matched
}

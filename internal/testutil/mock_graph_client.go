package testutil

import (
	"context"
	"sync"

	"github.com/intunedeck/intunedeck/internal/domain/application"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/domain/auditlog"
	"github.com/intunedeck/intunedeck/internal/domain/device"
	"github.com/intunedeck/intunedeck/internal/domain/group"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
)

// MockGraphClient scripts per-application outcomes for assignment writes.
// Queued errors are consumed one per attempt; once the queue drains, writes
// succeed. OnSuccess lets the suite mirror successful writes back into the
// remote assignment state.
type MockGraphClient struct {
	mu          sync.Mutex
	assignErrs  map[string][]error
	assignCalls map[string]int
	totalCalls  int

	// OnAssign runs at the start of every AssignApp call.
	OnAssign func(appID string)
	// OnSuccess runs after a successful AssignApp call.
	OnSuccess func(appID string, written []*assignment.Assignment)
}

func NewMockGraphClient() *MockGraphClient {
	return &MockGraphClient{
		assignErrs:  make(map[string][]error),
		assignCalls: make(map[string]int),
	}
}

// QueueAssignError makes the next AssignApp call for the application fail.
func (m *MockGraphClient) QueueAssignError(appID string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignErrs[appID] = append(m.assignErrs[appID], errs...)
}

func (m *MockGraphClient) AssignCalls(appID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignCalls[appID]
}

func (m *MockGraphClient) TotalAssignCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalCalls
}

func (m *MockGraphClient) AssignApp(_ context.Context, appID string, batch []*assignment.Assignment) error {
	m.mu.Lock()
	m.assignCalls[appID]++
	m.totalCalls++
	onAssign := m.OnAssign
	var err error
	if queue := m.assignErrs[appID]; len(queue) > 0 {
		err = queue[0]
		m.assignErrs[appID] = queue[1:]
	}
	onSuccess := m.OnSuccess
	m.mu.Unlock()

	if onAssign != nil {
		onAssign(appID)
	}
	if err != nil {
		return err
	}
	if onSuccess != nil {
		onSuccess(appID, batch)
	}
	return nil
}

func (m *MockGraphClient) ListMobileApps(_ context.Context, _ string) ([]*application.Application, error) {
	return nil, errNotScripted()
}

func (m *MockGraphClient) GetMobileApp(_ context.Context, _ string) (*application.Application, error) {
	return nil, errNotScripted()
}

func (m *MockGraphClient) FetchAssignments(_ context.Context, _ string) ([]*assignment.Assignment, error) {
	return nil, errNotScripted()
}

func (m *MockGraphClient) ListGroups(_ context.Context, _ string) ([]*group.DeviceGroup, error) {
	return nil, errNotScripted()
}

func (m *MockGraphClient) GetGroup(_ context.Context, _ string) (*group.DeviceGroup, error) {
	return nil, errNotScripted()
}

func (m *MockGraphClient) ListManagedDevices(_ context.Context) ([]*device.ManagedDevice, error) {
	return nil, errNotScripted()
}

func (m *MockGraphClient) ListAuditEvents(_ context.Context, _ *auditlog.Filter) ([]*auditlog.AuditEvent, error) {
	return nil, errNotScripted()
}

func (m *MockGraphClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignErrs = make(map[string][]error)
	m.assignCalls = make(map[string]int)
	m.totalCalls = 0
	m.OnAssign = nil
	m.OnSuccess = nil
}

func errNotScripted() error {
	return ierr.NewError("not scripted in mock graph client").
		WithHint("Use the in-memory stores for read paths").
		Mark(ierr.ErrInvalidOperation)
}

package assignment

import (
	"sync"
	"time"

	"github.com/intunedeck/intunedeck/internal/types"
)

// Progress tracks one in-flight bulk operation. All mutation goes through
// methods that hold the internal mutex; readers get consistent snapshots.
// Completed is monotonically non-decreasing until the operation terminates.
type Progress struct {
	mu sync.Mutex

	operationID  string
	total        int
	completed    int
	currentApp   string
	currentGroup string
	state        types.OperationState
	startedAt    time.Time
}

// ProgressSnapshot is the immutable view handed to observers.
type ProgressSnapshot struct {
	OperationID  string               `json:"operationId"`
	Total        int                  `json:"total"`
	Completed    int                  `json:"completed"`
	CurrentApp   string               `json:"currentApp,omitempty"`
	CurrentGroup string               `json:"currentGroup,omitempty"`
	State        types.OperationState `json:"state"`
	StartedAt    time.Time            `json:"startedAt"`
	Elapsed      time.Duration        `json:"elapsed"`
}

// NewProgress starts tracking a new operation.
func NewProgress(operationID string, total int) *Progress {
	return &Progress{
		operationID: operationID,
		total:       total,
		state:       types.OperationStateExecuting,
		startedAt:   time.Now().UTC(),
	}
}

// Advance records n more executed tasks and the labels of the write that
// produced them.
func (p *Progress) Advance(n int, appName, groupName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed += n
	p.currentApp = appName
	p.currentGroup = groupName
}

// SetState moves the operation to a new state.
func (p *Progress) SetState(state types.OperationState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// Snapshot returns a consistent copy of the current progress.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ProgressSnapshot{
		OperationID:  p.operationID,
		Total:        p.total,
		Completed:    p.completed,
		CurrentApp:   p.currentApp,
		CurrentGroup: p.currentGroup,
		State:        p.state,
		StartedAt:    p.startedAt,
		Elapsed:      time.Since(p.startedAt),
	}
}

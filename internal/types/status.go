package types

import (
	"github.com/intunedeck/intunedeck/internal/errors"
	"github.com/samber/lo"
)

// AssignmentStatus tracks the lifecycle of a single planned assignment task.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusSuccess   AssignmentStatus = "success"
	AssignmentStatusFailed    AssignmentStatus = "failed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

func (s AssignmentStatus) String() string {
	return string(s)
}

func (s AssignmentStatus) Validate() error {
	allowed := []AssignmentStatus{
		AssignmentStatusPending,
		AssignmentStatusSuccess,
		AssignmentStatusFailed,
		AssignmentStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return errors.New(errors.ErrCodeValidation, "invalid assignment status")
	}
	return nil
}

// IsTerminal reports whether the status will no longer change for this run.
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusSuccess || s == AssignmentStatusFailed || s == AssignmentStatusCancelled
}

// OperationState is the state of the bulk assignment orchestrator. One
// operation is in flight at a time; terminal states reset to idle on the next
// invocation.
type OperationState string

const (
	OperationStateIdle            OperationState = "idle"
	OperationStatePlanning        OperationState = "planning"
	OperationStateExecuting       OperationState = "executing"
	OperationStateCompleted       OperationState = "completed"
	OperationStatePartiallyFailed OperationState = "partially_failed"
	OperationStateCancelled       OperationState = "cancelled"
	OperationStateFatallyFailed   OperationState = "fatally_failed"
)

func (s OperationState) String() string {
	return string(s)
}

// IsActive reports whether a new bulk operation would interleave with a
// running one and must be rejected as busy.
func (s OperationState) IsActive() bool {
	return s == OperationStatePlanning || s == OperationStateExecuting
}

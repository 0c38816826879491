package assignment

import (
	"github.com/intunedeck/intunedeck/internal/types"
)

// ConflictResolution classifies a candidate (group, intent) against an
// application's current assignments.
type ConflictResolution string

const (
	// ResolutionNew means no existing assignment targets the group.
	ResolutionNew ConflictResolution = "new"
	// ResolutionDuplicate means the same target already carries the same
	// intent; the pair is skipped, not re-sent.
	ResolutionDuplicate ConflictResolution = "duplicate"
	// ResolutionConflicting means the target is already assigned with a
	// different intent; policy decides overwrite or skip.
	ResolutionConflicting ConflictResolution = "conflicting"
)

// DetectConflict decides whether assigning intent to the given target would
// duplicate or conflict with the application's existing assignments. Pure:
// no I/O, no mutation. Built-in targets (all devices, all users) are matched
// by target type, never by group id.
func DetectConflict(existing []*Assignment, target GroupRef, intent types.AssignmentIntent) ConflictResolution {
	for _, current := range existing {
		if current == nil {
			continue
		}
		if !sameTarget(current, target) {
			continue
		}
		if current.Intent == intent {
			return ResolutionDuplicate
		}
		return ResolutionConflicting
	}
	return ResolutionNew
}

func sameTarget(current *Assignment, target GroupRef) bool {
	if target.TargetType.IsBuiltIn() || current.TargetType.IsBuiltIn() {
		return current.TargetType == target.TargetType
	}
	return current.GroupID == target.ID
}

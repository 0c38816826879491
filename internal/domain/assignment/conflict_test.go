package assignment

import (
	"testing"

	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestDetectConflict(t *testing.T) {
	existing := []*Assignment{
		{
			ApplicationID: "app-1",
			GroupID:       "grp-1",
			TargetType:    types.TargetTypeGroup,
			Intent:        types.IntentRequired,
		},
		{
			ApplicationID: "app-1",
			GroupID:       "builtin-all-devices",
			TargetType:    types.TargetTypeAllDevices,
			Intent:        types.IntentAvailable,
		},
	}

	tests := []struct {
		name   string
		target GroupRef
		intent types.AssignmentIntent
		want   ConflictResolution
	}{
		{
			name:   "same group same intent is duplicate",
			target: GroupRef{ID: "grp-1", TargetType: types.TargetTypeGroup},
			intent: types.IntentRequired,
			want:   ResolutionDuplicate,
		},
		{
			name:   "same group different intent conflicts",
			target: GroupRef{ID: "grp-1", TargetType: types.TargetTypeGroup},
			intent: types.IntentAvailable,
			want:   ResolutionConflicting,
		},
		{
			name:   "unassigned group is new",
			target: GroupRef{ID: "grp-2", TargetType: types.TargetTypeGroup},
			intent: types.IntentRequired,
			want:   ResolutionNew,
		},
		{
			name:   "built-in target matches by type not id",
			target: GroupRef{ID: "some-other-id", TargetType: types.TargetTypeAllDevices},
			intent: types.IntentAvailable,
			want:   ResolutionDuplicate,
		},
		{
			name:   "built-in target with different intent conflicts",
			target: GroupRef{ID: "some-other-id", TargetType: types.TargetTypeAllDevices},
			intent: types.IntentRequired,
			want:   ResolutionConflicting,
		},
		{
			name:   "different built-in target is new",
			target: GroupRef{ID: "ignored", TargetType: types.TargetTypeAllUsers},
			intent: types.IntentAvailable,
			want:   ResolutionNew,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectConflict(existing, tt.target, tt.intent)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectConflictEmptyState(t *testing.T) {
	target := GroupRef{ID: "grp-1", TargetType: types.TargetTypeGroup}
	assert.Equal(t, ResolutionNew, DetectConflict(nil, target, types.IntentRequired))
	assert.Equal(t, ResolutionNew, DetectConflict([]*Assignment{nil}, target, types.IntentRequired))
}

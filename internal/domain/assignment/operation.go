package assignment

import (
	"time"

	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/types"
)

// ApplicationRef is the frozen slice of application state a bulk operation
// needs: identity, type and supported platforms.
type ApplicationRef struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	AppType   types.AppType          `json:"appType"`
	Platforms []types.DevicePlatform `json:"platforms"`
}

// GroupRef is the frozen slice of group state a bulk operation needs.
type GroupRef struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	TargetType types.TargetType `json:"targetType"`
}

// GroupSettings overrides the operation-level app type and intent for one
// selected group. It lives only for the duration of one bulk operation.
type GroupSettings struct {
	AppType  *types.AppType          `json:"appType,omitempty"`
	Intent   *types.AssignmentIntent `json:"intent,omitempty"`
	Settings *AssignmentSettings     `json:"settings,omitempty"`
}

// BulkOperation is the immutable request describing one bulk assignment run.
// It is built from value snapshots of the selection, never from live UI
// state: NewBulkOperation deep-copies everything it is given, so a mutation
// of the caller's collections after construction cannot leak into an
// in-flight run.
type BulkOperation struct {
	ID                 string                   `json:"id"`
	DisplayID          string                   `json:"displayId"`
	Applications       []ApplicationRef         `json:"applications"`
	Groups             []GroupRef               `json:"groups"`
	Intent             types.AssignmentIntent   `json:"intent"`
	Settings           *AssignmentSettings      `json:"settings,omitempty"`
	GroupOverrides     map[string]GroupSettings `json:"groupOverrides,omitempty"`
	OverwriteConflicts bool                     `json:"overwriteConflicts"`
	CreatedDate        time.Time                `json:"createdDate"`
}

// NewBulkOperation freezes the selection into an operation value.
func NewBulkOperation(
	apps []ApplicationRef,
	groups []GroupRef,
	intent types.AssignmentIntent,
	settings *AssignmentSettings,
	overrides map[string]GroupSettings,
	overwriteConflicts bool,
) (*BulkOperation, error) {
	if len(apps) == 0 {
		return nil, ierr.NewError("no applications selected").
			WithHint("Select at least one application").
			Mark(ierr.ErrValidation)
	}
	if len(groups) == 0 {
		return nil, ierr.NewError("no groups selected").
			WithHint("Select at least one group").
			Mark(ierr.ErrValidation)
	}
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	op := &BulkOperation{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BULK_OPERATION),
		DisplayID:          types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_OPERATION),
		Applications:       make([]ApplicationRef, len(apps)),
		Groups:             make([]GroupRef, len(groups)),
		Intent:             intent,
		Settings:           settings.Clone(),
		OverwriteConflicts: overwriteConflicts,
		CreatedDate:        time.Now().UTC(),
	}

	for i, app := range apps {
		op.Applications[i] = app.clone()
	}
	for i, grp := range groups {
		op.Groups[i] = grp
	}
	if len(overrides) > 0 {
		op.GroupOverrides = make(map[string]GroupSettings, len(overrides))
		for id, o := range overrides {
			op.GroupOverrides[id] = o.clone()
		}
	}

	return op, nil
}

func (r ApplicationRef) clone() ApplicationRef {
	clone := r
	clone.Platforms = make([]types.DevicePlatform, len(r.Platforms))
	copy(clone.Platforms, r.Platforms)
	return clone
}

func (o GroupSettings) clone() GroupSettings {
	clone := o
	if o.AppType != nil {
		appType := *o.AppType
		clone.AppType = &appType
	}
	if o.Intent != nil {
		intent := *o.Intent
		clone.Intent = &intent
	}
	clone.Settings = o.Settings.Clone()
	return clone
}

// IntentFor resolves the effective intent for a group, honoring any
// per-group override.
func (o *BulkOperation) IntentFor(groupID string) types.AssignmentIntent {
	if override, ok := o.GroupOverrides[groupID]; ok && override.Intent != nil {
		return *override.Intent
	}
	return o.Intent
}

// AppTypeFor resolves the effective app type for an (application, group)
// pair, honoring any per-group override.
func (o *BulkOperation) AppTypeFor(app ApplicationRef, groupID string) types.AppType {
	if override, ok := o.GroupOverrides[groupID]; ok && override.AppType != nil {
		return *override.AppType
	}
	return app.AppType
}

// SettingsFor resolves the effective settings for a group.
func (o *BulkOperation) SettingsFor(groupID string) *AssignmentSettings {
	if override, ok := o.GroupOverrides[groupID]; ok && override.Settings != nil {
		return override.Settings.Clone()
	}
	return o.Settings.Clone()
}

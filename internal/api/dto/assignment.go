package dto

import (
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/types"
)

// ApplicationSelection is one selected application in a bulk request.
type ApplicationSelection struct {
	ID        string                 `json:"id" binding:"required"`
	Name      string                 `json:"name" binding:"required"`
	AppType   types.AppType          `json:"appType" binding:"required"`
	Platforms []types.DevicePlatform `json:"platforms,omitempty"`
}

// GroupSelection is one selected target in a bulk request.
type GroupSelection struct {
	ID         string           `json:"id" binding:"required"`
	Name       string           `json:"name" binding:"required"`
	TargetType types.TargetType `json:"targetType,omitempty"`
}

// GroupSettingsOverride overrides intent/app type for one selected group.
type GroupSettingsOverride struct {
	AppType  *types.AppType                 `json:"appType,omitempty"`
	Intent   *types.AssignmentIntent        `json:"intent,omitempty"`
	Settings *assignment.AssignmentSettings `json:"settings,omitempty"`
}

// BulkAssignmentRequest describes one user-initiated cross-product
// assignment run.
type BulkAssignmentRequest struct {
	Applications       []ApplicationSelection           `json:"applications" binding:"required"`
	Groups             []GroupSelection                 `json:"groups" binding:"required"`
	Intent             types.AssignmentIntent           `json:"intent" binding:"required"`
	Settings           *assignment.AssignmentSettings   `json:"settings,omitempty"`
	GroupSettings      map[string]GroupSettingsOverride `json:"groupSettings,omitempty"`
	OverwriteConflicts *bool                            `json:"overwriteConflicts,omitempty"`
}

func (r *BulkAssignmentRequest) Validate() error {
	if len(r.Applications) == 0 {
		return ierr.NewError("applications are required").
			WithHint("Select at least one application").
			Mark(ierr.ErrValidation)
	}
	if len(r.Groups) == 0 {
		return ierr.NewError("groups are required").
			WithHint("Select at least one group").
			Mark(ierr.ErrValidation)
	}
	if err := r.Intent.Validate(); err != nil {
		return err
	}
	for _, app := range r.Applications {
		if err := app.AppType.Validate(); err != nil {
			return ierr.NewError("invalid app type").
				WithHintf("Application %s has an unknown app type", app.Name).
				WithReportableDetails(map[string]any{"application_id": app.ID, "app_type": app.AppType}).
				Mark(ierr.ErrValidation)
		}
	}
	for _, grp := range r.Groups {
		if grp.TargetType != "" {
			if err := grp.TargetType.Validate(); err != nil {
				return err
			}
		}
	}
	for groupID, override := range r.GroupSettings {
		if override.Intent != nil {
			if err := override.Intent.Validate(); err != nil {
				return ierr.NewError("invalid intent override").
					WithHintf("Group %s carries an unknown intent override", groupID).
					Mark(ierr.ErrValidation)
			}
		}
		if override.AppType != nil {
			if err := override.AppType.Validate(); err != nil {
				return ierr.NewError("invalid app type override").
					WithHintf("Group %s carries an unknown app type override", groupID).
					Mark(ierr.ErrValidation)
			}
		}
	}
	return nil
}

// ToBulkOperation freezes the request into an immutable operation value.
func (r *BulkAssignmentRequest) ToBulkOperation() (*assignment.BulkOperation, error) {
	apps := make([]assignment.ApplicationRef, len(r.Applications))
	for i, app := range r.Applications {
		platforms := app.Platforms
		if len(platforms) == 0 {
			platforms = app.AppType.Platforms()
		}
		apps[i] = assignment.ApplicationRef{
			ID:        app.ID,
			Name:      app.Name,
			AppType:   app.AppType,
			Platforms: platforms,
		}
	}

	groups := make([]assignment.GroupRef, len(r.Groups))
	for i, grp := range r.Groups {
		targetType := grp.TargetType
		if targetType == "" {
			targetType = types.TargetTypeGroup
		}
		groups[i] = assignment.GroupRef{
			ID:         grp.ID,
			Name:       grp.Name,
			TargetType: targetType,
		}
	}

	var overrides map[string]assignment.GroupSettings
	if len(r.GroupSettings) > 0 {
		overrides = make(map[string]assignment.GroupSettings, len(r.GroupSettings))
		for id, o := range r.GroupSettings {
			overrides[id] = assignment.GroupSettings{
				AppType:  o.AppType,
				Intent:   o.Intent,
				Settings: o.Settings,
			}
		}
	}

	overwrite := true
	if r.OverwriteConflicts != nil {
		overwrite = *r.OverwriteConflicts
	}

	return assignment.NewBulkOperation(apps, groups, r.Intent, r.Settings, overrides, overwrite)
}

// RetryAssignmentsRequest controls which failed tasks are replayed.
type RetryAssignmentsRequest struct {
	// Selective replays only the retained failed set; when false the whole
	// previous operation is replayed (duplicates are skipped in planning).
	Selective bool `json:"selective"`
}

// BulkAssignmentResponse carries every per-assignment outcome of one run.
type BulkAssignmentResponse struct {
	OperationID string                        `json:"operationId"`
	State       types.OperationState          `json:"state"`
	Assignments []*assignment.Assignment      `json:"assignments"`
	Completed   []*assignment.Assignment      `json:"completed"`
	Failed      []*assignment.Assignment      `json:"failed"`
	Cancelled   []*assignment.Assignment      `json:"cancelled"`
	Skipped     []*assignment.Assignment      `json:"skipped,omitempty"`
	Progress    assignment.ProgressSnapshot   `json:"progress"`
}

// ProgressResponse is the observable progress snapshot.
type ProgressResponse struct {
	assignment.ProgressSnapshot
	IsProcessing bool `json:"isProcessing"`
}

// ListAssignmentsResponse is the paginated assignment history.
type ListAssignmentsResponse = types.ListResponse[*assignment.Assignment]

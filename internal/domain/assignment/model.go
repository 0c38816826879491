package assignment

import (
	"time"

	"github.com/intunedeck/intunedeck/internal/types"
)

// AssignmentSettings carries the optional per-assignment install settings
// sent with the remote write.
type AssignmentSettings struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	DeliveryOptimization string `json:"deliveryOptimization,omitempty"`
}

// Clone returns a value copy, nil-safe.
func (s *AssignmentSettings) Clone() *AssignmentSettings {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// Assignment represents one application-to-group binding. The engine creates
// it when a task is planned and mutates it to reflect the remote-call
// outcome. The JSON shape is stable: exported batches must round-trip.
type Assignment struct {
	ID              string                 `json:"id"`
	ApplicationID   string                 `json:"applicationId"`
	ApplicationName string                 `json:"applicationName"`
	GroupID         string                 `json:"groupId"`
	GroupName       string                 `json:"groupName"`
	TargetType      types.TargetType       `json:"targetType"`
	Intent          types.AssignmentIntent `json:"intent"`
	Settings        *AssignmentSettings    `json:"settings,omitempty"`
	CreatedDate     time.Time              `json:"createdDate"`
	Status          types.AssignmentStatus `json:"status"`
	ErrorDetail     string                 `json:"errorDetail,omitempty"`
}

// PairKey identifies the (application, group) pair of an assignment. The
// engine never emits two tasks for the same pair within one operation.
// Built-in targets key on the target type so that e.g. two "all devices"
// selections collapse regardless of synthetic ids.
func (a *Assignment) PairKey() string {
	return PairKey(a.ApplicationID, a.GroupID, a.TargetType)
}

// PairKey builds the canonical (application, target) pair key.
func PairKey(appID, groupID string, targetType types.TargetType) string {
	if targetType.IsBuiltIn() {
		return appID + "|" + string(targetType)
	}
	return appID + "|" + groupID
}

// MarkSuccess records a successful remote write.
func (a *Assignment) MarkSuccess() {
	a.Status = types.AssignmentStatusSuccess
	a.ErrorDetail = ""
}

// MarkFailed records a failed remote write with its error detail.
func (a *Assignment) MarkFailed(detail string) {
	a.Status = types.AssignmentStatusFailed
	a.ErrorDetail = detail
}

// MarkCancelled records that the task was planned but never executed.
func (a *Assignment) MarkCancelled() {
	a.Status = types.AssignmentStatusCancelled
}

// Clone returns a deep copy of the assignment.
func (a *Assignment) Clone() *Assignment {
	clone := *a
	clone.Settings = a.Settings.Clone()
	return &clone
}

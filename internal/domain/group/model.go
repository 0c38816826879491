package group

import (
	"time"

	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/types"
)

// DeviceGroup is an Azure AD group usable as an assignment target. Read-only
// to the assignment engine.
type DeviceGroup struct {
	ID              string           `json:"id"`
	DisplayName     string           `json:"displayName"`
	Description     string           `json:"description,omitempty"`
	SecurityEnabled bool             `json:"securityEnabled"`
	MailEnabled     bool             `json:"mailEnabled"`
	IsDynamic       bool             `json:"isDynamic"`
	MembershipRule  string           `json:"membershipRule,omitempty"`
	TargetType      types.TargetType `json:"targetType"`
	CreatedDate     time.Time        `json:"createdDateTime"`
}

// BuiltInTargets returns the virtual all-devices / all-users targets that
// appear alongside directory groups in the selection UI.
func BuiltInTargets() []*DeviceGroup {
	return []*DeviceGroup{
		{
			ID:          string(types.TargetTypeAllDevices),
			DisplayName: "All Devices",
			TargetType:  types.TargetTypeAllDevices,
		},
		{
			ID:          string(types.TargetTypeAllUsers),
			DisplayName: "All Users",
			TargetType:  types.TargetTypeAllUsers,
		},
	}
}

// Ref returns the frozen value snapshot used when building a bulk operation.
func (g *DeviceGroup) Ref() assignment.GroupRef {
	targetType := g.TargetType
	if targetType == "" {
		targetType = types.TargetTypeGroup
	}
	return assignment.GroupRef{
		ID:         g.ID,
		Name:       g.DisplayName,
		TargetType: targetType,
	}
}

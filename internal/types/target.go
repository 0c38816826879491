package types

import (
	"github.com/intunedeck/intunedeck/internal/errors"
	"github.com/samber/lo"
)

// TargetType identifies what an assignment applies to: a directory group or
// one of the built-in virtual targets.
type TargetType string

const (
	TargetTypeGroup      TargetType = "group"
	TargetTypeAllDevices TargetType = "allDevices"
	TargetTypeAllUsers   TargetType = "allUsers"
)

func (t TargetType) String() string {
	return string(t)
}

func (t TargetType) Validate() error {
	allowed := []TargetType{
		TargetTypeGroup,
		TargetTypeAllDevices,
		TargetTypeAllUsers,
	}
	if !lo.Contains(allowed, t) {
		return errors.New(errors.ErrCodeValidation, "invalid target type")
	}
	return nil
}

// IsBuiltIn reports whether the target is one of the virtual all-devices /
// all-users targets. Built-in targets are matched by type, not by group id.
func (t TargetType) IsBuiltIn() bool {
	return t == TargetTypeAllDevices || t == TargetTypeAllUsers
}

// ODataType returns the Graph type discriminator for the assignment target.
func (t TargetType) ODataType() string {
	switch t {
	case TargetTypeAllDevices:
		return "#microsoft.graph.allDevicesAssignmentTarget"
	case TargetTypeAllUsers:
		return "#microsoft.graph.allLicensedUsersAssignmentTarget"
	default:
		return "#microsoft.graph.groupAssignmentTarget"
	}
}

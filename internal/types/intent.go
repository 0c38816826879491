package types

import (
	"github.com/intunedeck/intunedeck/internal/errors"
	"github.com/samber/lo"
)

// AssignmentIntent is the deployment mode of an app assignment. The values
// mirror the wire values Microsoft Graph uses for mobileAppAssignment.intent.
type AssignmentIntent string

const (
	IntentRequired                   AssignmentIntent = "required"
	IntentAvailable                  AssignmentIntent = "available"
	IntentUninstall                  AssignmentIntent = "uninstall"
	IntentAvailableWithoutEnrollment AssignmentIntent = "availableWithoutEnrollment"
)

func (i AssignmentIntent) String() string {
	return string(i)
}

func (i AssignmentIntent) Validate() error {
	allowed := []AssignmentIntent{
		IntentRequired,
		IntentAvailable,
		IntentUninstall,
		IntentAvailableWithoutEnrollment,
	}
	if !lo.Contains(allowed, i) {
		return errors.New(errors.ErrCodeValidation, "invalid assignment intent")
	}
	return nil
}

package application

import (
	"time"

	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/types"
)

// Application is a mobile app in the Intune catalog. The catalog is
// read-only from the assignment engine's perspective except for Assignments,
// which the engine refreshes after a successful write.
type Application struct {
	ID             string                   `json:"id"`
	DisplayName    string                   `json:"displayName"`
	Description    string                   `json:"description,omitempty"`
	Publisher      string                   `json:"publisher,omitempty"`
	AppType        types.AppType            `json:"appType"`
	Platforms      []types.DevicePlatform   `json:"platforms"`
	IsFeatured     bool                     `json:"isFeatured"`
	CreatedDate    time.Time                `json:"createdDateTime"`
	LastModified   time.Time                `json:"lastModifiedDateTime"`
	Assignments    []*assignment.Assignment `json:"assignments,omitempty"`
	AssignmentsSet bool                     `json:"-"`
}

// Ref returns the frozen value snapshot of the application used when
// building a bulk operation. It never aliases live catalog state.
func (a *Application) Ref() assignment.ApplicationRef {
	platforms := make([]types.DevicePlatform, len(a.Platforms))
	copy(platforms, a.Platforms)
	return assignment.ApplicationRef{
		ID:        a.ID,
		Name:      a.DisplayName,
		AppType:   a.AppType,
		Platforms: platforms,
	}
}

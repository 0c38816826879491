package dto

import (
	"github.com/intunedeck/intunedeck/internal/domain/application"
	"github.com/intunedeck/intunedeck/internal/types"
)

// ApplicationResponse is the catalog view of one application.
type ApplicationResponse struct {
	*application.Application
}

// ListApplicationsResponse is the paginated application catalog.
type ListApplicationsResponse = types.ListResponse[*ApplicationResponse]

func NewApplicationResponse(app *application.Application) *ApplicationResponse {
	return &ApplicationResponse{Application: app}
}

package service

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/api/dto"
	"github.com/intunedeck/intunedeck/internal/types"
)

// ApplicationService exposes the application catalog to the API layer.
type ApplicationService interface {
	GetApplication(ctx context.Context, id string) (*dto.ApplicationResponse, error)
	GetApplications(ctx context.Context, filter *types.QueryFilter) (*dto.ListApplicationsResponse, error)
}

type applicationService struct {
	ServiceParams
}

func NewApplicationService(params ServiceParams) ApplicationService {
	return &applicationService{ServiceParams: params}
}

func (s *applicationService) GetApplication(ctx context.Context, id string) (*dto.ApplicationResponse, error) {
	app, err := s.AppRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Listing leaves assignments unfetched; a single-app read resolves them
	// so the console can show current targets.
	if !app.AssignmentsSet {
		assignments, err := s.AppRepo.FetchAssignments(ctx, id)
		if err != nil {
			s.Logger.Warnw("could not fetch assignments for application",
				"application_id", id,
				"error", err,
			)
		} else {
			app.Assignments = assignments
			app.AssignmentsSet = true
		}
	}

	return dto.NewApplicationResponse(app), nil
}

func (s *applicationService) GetApplications(ctx context.Context, filter *types.QueryFilter) (*dto.ListApplicationsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	apps, err := s.AppRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ApplicationResponse, len(apps))
	for i, app := range apps {
		items[i] = dto.NewApplicationResponse(app)
	}

	response := types.NewListResponse(items, len(items), filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

package service

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/api/dto"
	"github.com/intunedeck/intunedeck/internal/types"
)

// GroupService exposes assignable targets to the API layer.
type GroupService interface {
	GetGroup(ctx context.Context, id string) (*dto.GroupResponse, error)
	GetGroups(ctx context.Context, filter *types.QueryFilter) (*dto.ListGroupsResponse, error)
}

type groupService struct {
	ServiceParams
}

func NewGroupService(params ServiceParams) GroupService {
	return &groupService{ServiceParams: params}
}

func (s *groupService) GetGroup(ctx context.Context, id string) (*dto.GroupResponse, error) {
	grp, err := s.GroupRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupResponse(grp), nil
}

func (s *groupService) GetGroups(ctx context.Context, filter *types.QueryFilter) (*dto.ListGroupsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	groups, err := s.GroupRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.GroupResponse, len(groups))
	for i, grp := range groups {
		items[i] = dto.NewGroupResponse(grp)
	}

	response := types.NewListResponse(items, len(items), filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

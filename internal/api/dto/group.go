package dto

import (
	"github.com/intunedeck/intunedeck/internal/domain/group"
	"github.com/intunedeck/intunedeck/internal/types"
)

// GroupResponse is one assignable target, directory group or built-in.
type GroupResponse struct {
	*group.DeviceGroup
}

// ListGroupsResponse is the paginated target listing.
type ListGroupsResponse = types.ListResponse[*GroupResponse]

func NewGroupResponse(g *group.DeviceGroup) *GroupResponse {
	return &GroupResponse{DeviceGroup: g}
}

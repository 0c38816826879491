package service

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/api/dto"
	"github.com/intunedeck/intunedeck/internal/types"
)

// AuditLogService exposes tenant audit events to the API layer.
type AuditLogService interface {
	GetAuditEvents(ctx context.Context, req dto.ListAuditEventsRequest) (*dto.ListAuditEventsResponse, error)
}

type auditLogService struct {
	ServiceParams
}

func NewAuditLogService(params ServiceParams) AuditLogService {
	return &auditLogService{ServiceParams: params}
}

func (s *auditLogService) GetAuditEvents(ctx context.Context, req dto.ListAuditEventsRequest) (*dto.ListAuditEventsResponse, error) {
	filter, err := req.ToFilter()
	if err != nil {
		return nil, err
	}

	events, err := s.AuditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AuditEventResponse, len(events))
	for i, e := range events {
		items[i] = dto.NewAuditEventResponse(e)
	}

	response := types.NewListResponse(items, len(items), types.FilterDefaultLimit, types.FilterDefaultOffset)
	return &response, nil
}

package dto

import (
	"time"

	"github.com/intunedeck/intunedeck/internal/domain/auditlog"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/types"
)

// ListAuditEventsRequest narrows the audit event listing.
type ListAuditEventsRequest struct {
	Category string `form:"category"`
	From     string `form:"from"`
	To       string `form:"to"`
}

func (r *ListAuditEventsRequest) ToFilter() (*auditlog.Filter, error) {
	f := &auditlog.Filter{Category: r.Category}
	if r.From != "" {
		t, err := time.Parse(time.RFC3339, r.From)
		if err != nil {
			return nil, ierr.NewError("invalid from timestamp").
				WithHint("Use RFC3339, e.g. 2026-01-02T15:04:05Z").
				Mark(ierr.ErrValidation)
		}
		f.From = &t
	}
	if r.To != "" {
		t, err := time.Parse(time.RFC3339, r.To)
		if err != nil {
			return nil, ierr.NewError("invalid to timestamp").
				WithHint("Use RFC3339, e.g. 2026-01-02T15:04:05Z").
				Mark(ierr.ErrValidation)
		}
		f.To = &t
	}
	return f, nil
}

// AuditEventResponse is one tenant audit record.
type AuditEventResponse struct {
	*auditlog.AuditEvent
}

// ListAuditEventsResponse is the paginated audit listing.
type ListAuditEventsResponse = types.ListResponse[*AuditEventResponse]

func NewAuditEventResponse(e *auditlog.AuditEvent) *AuditEventResponse {
	return &AuditEventResponse{AuditEvent: e}
}

package graphrepo

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/domain/auditlog"
	"github.com/intunedeck/intunedeck/internal/graph"
	"github.com/intunedeck/intunedeck/internal/logger"
)

type auditLogRepository struct {
	client graph.Client
	log    *logger.Logger
}

// NewAuditLogRepository builds a Graph-backed audit event reader. Audit
// queries are not cached: review always wants fresh data.
func NewAuditLogRepository(client graph.Client, log *logger.Logger) auditlog.Repository {
	return &auditLogRepository{
		client: client,
		log:    log,
	}
}

func (r *auditLogRepository) List(ctx context.Context, filter *auditlog.Filter) ([]*auditlog.AuditEvent, error) {
	return r.client.ListAuditEvents(ctx, filter)
}

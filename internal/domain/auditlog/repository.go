package auditlog

import (
	"context"
)

// Repository provides read access to tenant audit events.
type Repository interface {
	List(ctx context.Context, filter *Filter) ([]*AuditEvent, error)
}

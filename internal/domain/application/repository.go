package application

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/types"
)

// Repository provides read access to the application catalog.
type Repository interface {
	// List returns the catalog page matching the filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*Application, error)

	// Get returns a single application by id.
	Get(ctx context.Context, id string) (*Application, error)

	// FetchAssignments returns the current assignments of an application.
	FetchAssignments(ctx context.Context, appID string) ([]*assignment.Assignment, error)

	// InvalidateAssignments drops any cached assignment state for an
	// application after the engine has written to it.
	InvalidateAssignments(ctx context.Context, appID string)
}

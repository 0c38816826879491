package assignment

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/types"
)

// Repository retains assignment history across bulk operations. The engine
// itself does not persist; the surrounding application layer writes each
// operation's results here after it completes.
type Repository interface {
	// CreateBulk appends the results of one operation to the history.
	CreateBulk(ctx context.Context, assignments []*Assignment) error

	// List returns retained assignments, newest first.
	List(ctx context.Context, filter *types.QueryFilter) ([]*Assignment, error)

	// Count returns the number of retained assignments.
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)
}

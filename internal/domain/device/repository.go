package device

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/types"
)

// Repository provides read access to managed devices.
type Repository interface {
	List(ctx context.Context, filter *types.QueryFilter) ([]*ManagedDevice, error)
	Get(ctx context.Context, id string) (*ManagedDevice, error)
}

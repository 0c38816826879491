package group

import (
	"context"

	"github.com/intunedeck/intunedeck/internal/types"
)

// Repository provides read access to directory groups.
type Repository interface {
	List(ctx context.Context, filter *types.QueryFilter) ([]*DeviceGroup, error)
	Get(ctx context.Context, id string) (*DeviceGroup, error)
}

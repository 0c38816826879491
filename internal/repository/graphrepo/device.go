package graphrepo

import (
	"context"
	"time"

	"github.com/intunedeck/intunedeck/internal/cache"
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/domain/device"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/graph"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/samber/lo"
)

type deviceRepository struct {
	client graph.Client
	cache  cache.Cache
	ttl    time.Duration
	log    *logger.Logger
}

// NewDeviceRepository builds a Graph-backed managed-device listing.
func NewDeviceRepository(client graph.Client, c cache.Cache, cfg *config.Configuration, log *logger.Logger) device.Repository {
	return &deviceRepository{
		client: client,
		cache:  c,
		ttl:    cfg.Cache.TTL,
		log:    log,
	}
}

func (r *deviceRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*device.ManagedDevice, error) {
	key := cache.GenerateKey(cache.PrefixDevice, "list")

	if cached, found := r.cache.Get(ctx, key); found {
		if devices, ok := cached.([]*device.ManagedDevice); ok {
			return paginate(devices, filter), nil
		}
	}

	devices, err := r.client.ListManagedDevices(ctx)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, devices, r.ttl)
	return paginate(devices, filter), nil
}

func (r *deviceRepository) Get(ctx context.Context, id string) (*device.ManagedDevice, error) {
	devices, err := r.List(ctx, &types.QueryFilter{Limit: lo.ToPtr(types.FilterMaxLimit)})
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, ierr.NewError("device not found").
		WithHint("The device does not exist or is not enrolled").
		WithReportableDetails(map[string]any{"device_id": id}).
		Mark(ierr.ErrNotFound)
}

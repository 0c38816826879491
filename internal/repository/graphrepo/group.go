package graphrepo

import (
	"context"
	"time"

	"github.com/intunedeck/intunedeck/internal/cache"
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/domain/group"
	"github.com/intunedeck/intunedeck/internal/graph"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/types"
)

type groupRepository struct {
	client graph.Client
	cache  cache.Cache
	ttl    time.Duration
	log    *logger.Logger
}

// NewGroupRepository builds a Graph-backed group directory. The built-in
// all-devices / all-users targets are prepended to every unfiltered listing.
func NewGroupRepository(client graph.Client, c cache.Cache, cfg *config.Configuration, log *logger.Logger) group.Repository {
	return &groupRepository{
		client: client,
		cache:  c,
		ttl:    cfg.Cache.TTL,
		log:    log,
	}
}

func (r *groupRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*group.DeviceGroup, error) {
	search := filter.GetSearch()
	key := cache.GenerateKey(cache.PrefixGroup, "list", search)

	if cached, found := r.cache.Get(ctx, key); found {
		if groups, ok := cached.([]*group.DeviceGroup); ok {
			return paginate(groups, filter), nil
		}
	}

	groups, err := r.client.ListGroups(ctx, search)
	if err != nil {
		return nil, err
	}
	if search == "" {
		groups = append(group.BuiltInTargets(), groups...)
	}

	r.cache.Set(ctx, key, groups, r.ttl)
	return paginate(groups, filter), nil
}

func (r *groupRepository) Get(ctx context.Context, id string) (*group.DeviceGroup, error) {
	for _, builtin := range group.BuiltInTargets() {
		if builtin.ID == id {
			return builtin, nil
		}
	}

	key := cache.GenerateKey(cache.PrefixGroup, id)
	if cached, found := r.cache.Get(ctx, key); found {
		if g, ok := cached.(*group.DeviceGroup); ok {
			return g, nil
		}
	}

	g, err := r.client.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, g, r.ttl)
	return g, nil
}

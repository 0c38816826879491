package graphrepo

import (
	"context"
	"time"

	"github.com/intunedeck/intunedeck/internal/cache"
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/domain/application"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/graph"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/samber/lo"
)

type applicationRepository struct {
	client graph.Client
	cache  cache.Cache
	ttl    time.Duration
	log    *logger.Logger
}

// NewApplicationRepository builds a Graph-backed application catalog with a
// TTL cache in front of the listing and assignment reads.
func NewApplicationRepository(client graph.Client, c cache.Cache, cfg *config.Configuration, log *logger.Logger) application.Repository {
	return &applicationRepository{
		client: client,
		cache:  c,
		ttl:    cfg.Cache.TTL,
		log:    log,
	}
}

func (r *applicationRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*application.Application, error) {
	search := filter.GetSearch()
	key := cache.GenerateKey(cache.PrefixApplication, "list", search)

	if cached, found := r.cache.Get(ctx, key); found {
		if apps, ok := cached.([]*application.Application); ok {
			return paginate(apps, filter), nil
		}
	}

	apps, err := r.client.ListMobileApps(ctx, search)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, apps, r.ttl)
	return paginate(apps, filter), nil
}

func (r *applicationRepository) Get(ctx context.Context, id string) (*application.Application, error) {
	key := cache.GenerateKey(cache.PrefixApplication, id)

	if cached, found := r.cache.Get(ctx, key); found {
		if app, ok := cached.(*application.Application); ok {
			return app, nil
		}
	}

	app, err := r.client.GetMobileApp(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, app, r.ttl)
	return app, nil
}

func (r *applicationRepository) FetchAssignments(ctx context.Context, appID string) ([]*assignment.Assignment, error) {
	key := cache.GenerateKey(cache.PrefixAssignment, appID)

	if cached, found := r.cache.Get(ctx, key); found {
		if assignments, ok := cached.([]*assignment.Assignment); ok {
			return assignments, nil
		}
	}

	assignments, err := r.client.FetchAssignments(ctx, appID)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, assignments, r.ttl)
	return assignments, nil
}

func (r *applicationRepository) InvalidateAssignments(ctx context.Context, appID string) {
	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixAssignment, appID))
	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixApplication, appID))
}

// paginate applies the filter's window to an already-fetched slice.
func paginate[T any](items []T, filter *types.QueryFilter) []T {
	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset >= len(items) {
		return nil
	}
	return lo.Slice(items, offset, offset+limit)
}

package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/production-portal-backend/internal/data/aggregates"
	catalogrepo "github.com/yungbote/production-portal-backend/internal/data/repos/catalog"
	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/observability"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

const (
	defaultCatalogTTL  = 5 * time.Minute
	catalogFillTimeout = 10 * time.Second
)

// SharedCatalogCache is an optional cross-replica layer under the in-process cache.
type SharedCatalogCache interface {
	Get(ctx context.Context, kind types.CatalogKind) ([]types.CatalogEntry, bool, error)
	Set(ctx context.Context, kind types.CatalogKind, entries []types.CatalogEntry) error
}

type CatalogService interface {
	ListAll(ctx context.Context, kind string) ([]types.CatalogEntry, error)
	// ListBundle loads every kind. Keys are the kind names used in routes.
	ListBundle(ctx context.Context) (map[string][]types.CatalogEntry, error)
	// Missing reads the database directly and returns ids with no row.
	Missing(ctx context.Context, kind string, ids []int) ([]int, error)
	Invalidate(kind types.CatalogKind)
}

type CatalogServiceDeps struct {
	Log     *logger.Logger
	Repo    catalogrepo.CatalogRepo
	Shared  SharedCatalogCache
	Metrics *observability.Metrics
	TTL     time.Duration
	Clock   func() time.Time
}

type catalogEntryCache struct {
	entries   []types.CatalogEntry
	expiresAt time.Time
}

type catalogService struct {
	log     *logger.Logger
	repo    catalogrepo.CatalogRepo
	shared  SharedCatalogCache
	metrics *observability.Metrics
	ttl     time.Duration
	clock   func() time.Time

	mu    sync.RWMutex
	cache map[types.CatalogKind]catalogEntryCache
	group singleflight.Group
}

func NewCatalogService(deps CatalogServiceDeps) CatalogService {
	if deps.TTL <= 0 {
		deps.TTL = defaultCatalogTTL
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &catalogService{
		log:     deps.Log.With("service", "CatalogService"),
		repo:    deps.Repo,
		shared:  deps.Shared,
		metrics: deps.Metrics,
		ttl:     deps.TTL,
		clock:   deps.Clock,
		cache:   map[types.CatalogKind]catalogEntryCache{},
	}
}

func (s *catalogService) ListAll(ctx context.Context, raw string) ([]types.CatalogEntry, error) {
	kind, err := catalog.ParseKind(raw)
	if err != nil {
		return nil, aggregates.MapError("catalog.list", err)
	}
	entries, err := s.load(ctx, kind)
	if err != nil {
		return nil, aggregates.MapError("catalog.list", err)
	}
	return entries, nil
}

func (s *catalogService) ListBundle(ctx context.Context) (map[string][]types.CatalogEntry, error) {
	kinds := catalog.Kinds()
	results := make([][]types.CatalogEntry, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			entries, err := s.load(gctx, kind)
			if err != nil {
				return err
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, aggregates.MapError("catalog.bundle", err)
	}
	out := make(map[string][]types.CatalogEntry, len(kinds))
	for i, kind := range kinds {
		out[string(kind)] = results[i]
	}
	return out, nil
}

func (s *catalogService) Missing(ctx context.Context, raw string, ids []int) ([]int, error) {
	kind, err := catalog.ParseKind(raw)
	if err != nil {
		return nil, aggregates.MapError("catalog.missing", err)
	}
	missing, err := s.repo.Missing(dbctx.Context{Ctx: ctx}, kind, ids)
	if err != nil {
		return nil, aggregates.MapError("catalog.missing", err)
	}
	return missing, nil
}

func (s *catalogService) Invalidate(kind types.CatalogKind) {
	s.mu.Lock()
	delete(s.cache, kind)
	s.mu.Unlock()
}

// load is the read-through path: memory, then the shared layer, then the database.
// Concurrent misses for one kind share a single fill.
func (s *catalogService) load(ctx context.Context, kind types.CatalogKind) ([]types.CatalogEntry, error) {
	now := s.clock()
	s.mu.RLock()
	hit, ok := s.cache[kind]
	s.mu.RUnlock()
	if ok && now.Before(hit.expiresAt) {
		s.metrics.IncCatalogCache("memory", "hit")
		return hit.entries, nil
	}
	s.metrics.IncCatalogCache("memory", "miss")

	// The fill is shared, so it must not die with whichever caller started it.
	ch := s.group.DoChan(string(kind), func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogFillTimeout)
		defer cancel()
		entries, err := s.fill(fillCtx, kind)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[kind] = catalogEntryCache{entries: entries, expiresAt: s.clock().Add(s.ttl)}
		s.mu.Unlock()
		return entries, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]types.CatalogEntry), nil
	}
}

func (s *catalogService) fill(ctx context.Context, kind types.CatalogKind) ([]types.CatalogEntry, error) {
	if s.shared != nil {
		entries, ok, err := s.shared.Get(ctx, kind)
		switch {
		case err != nil:
			s.log.Warn("shared catalog cache read failed", "kind", kind, "error", err)
		case ok:
			s.metrics.IncCatalogCache("redis", "hit")
			return entries, nil
		default:
			s.metrics.IncCatalogCache("redis", "miss")
		}
	}
	entries, err := s.repo.List(dbctx.Context{Ctx: ctx}, kind)
	if err != nil {
		return nil, err
	}
	if s.shared != nil {
		if err := s.shared.Set(ctx, kind, entries); err != nil {
			s.log.Warn("shared catalog cache write failed", "kind", kind, "error", err)
		}
	}
	return entries, nil
}

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

type stubCatalogRepo struct {
	lists   atomic.Int64
	missing atomic.Int64
	gate    chan struct{}
	started chan struct{}
	fail    error
}

func (r *stubCatalogRepo) List(dbc dbctx.Context, kind catalog.Kind) ([]catalog.Entry, error) {
	r.lists.Add(1)
	if r.started != nil {
		close(r.started)
	}
	if r.gate != nil {
		<-r.gate
	}
	if r.fail != nil {
		return nil, r.fail
	}
	if dbc.Ctx != nil && dbc.Ctx.Err() != nil {
		return nil, dbc.Ctx.Err()
	}
	return []catalog.Entry{{ID: 1, Name: string(kind) + "-1"}}, nil
}

func (r *stubCatalogRepo) Missing(_ dbctx.Context, _ catalog.Kind, ids []int) ([]int, error) {
	r.missing.Add(1)
	var out []int
	for _, id := range ids {
		if id != 1 {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) Insert(dbctx.Context, catalog.Kind, []catalog.Entry) error { return nil }

type mapSharedCache struct {
	mu   sync.Mutex
	data map[types.CatalogKind][]types.CatalogEntry
	sets int
}

func (c *mapSharedCache) Get(_ context.Context, kind types.CatalogKind) ([]types.CatalogEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[kind]
	return v, ok, nil
}

func (c *mapSharedCache) Set(_ context.Context, kind types.CatalogKind, entries []types.CatalogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[types.CatalogKind][]types.CatalogEntry{}
	}
	c.data[kind] = entries
	c.sets++
	return nil
}

func TestCatalogListAllCachesUntilTTL(t *testing.T) {
	repo := &stubCatalogRepo{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewCatalogService(CatalogServiceDeps{
		Log:   logger.Nop(),
		Repo:  repo,
		TTL:   time.Minute,
		Clock: func() time.Time { return now },
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := svc.ListAll(ctx, "genders")
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(got) != 1 || got[0].Name != "genders-1" {
			t.Fatalf("entries: %+v", got)
		}
	}
	if n := repo.lists.Load(); n != 1 {
		t.Fatalf("repo loads before expiry: want=1 got=%d", n)
	}

	now = now.Add(2 * time.Minute)
	if _, err := svc.ListAll(ctx, "genders"); err != nil {
		t.Fatalf("ListAll after ttl: %v", err)
	}
	if n := repo.lists.Load(); n != 2 {
		t.Fatalf("repo loads after expiry: want=2 got=%d", n)
	}

	svc.Invalidate(catalog.KindGenders)
	if _, err := svc.ListAll(ctx, "genders"); err != nil {
		t.Fatalf("ListAll after invalidate: %v", err)
	}
	if n := repo.lists.Load(); n != 3 {
		t.Fatalf("repo loads after invalidate: want=3 got=%d", n)
	}
}

func TestCatalogListAllUnknownKind(t *testing.T) {
	svc := NewCatalogService(CatalogServiceDeps{Log: logger.Nop(), Repo: &stubCatalogRepo{}})
	_, err := svc.ListAll(context.Background(), "colors")
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestCatalogConcurrentMissesCollapse(t *testing.T) {
	repo := &stubCatalogRepo{gate: make(chan struct{})}
	svc := NewCatalogService(CatalogServiceDeps{Log: logger.Nop(), Repo: repo})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ListAll(context.Background(), "products")
			errs <- err
		}()
	}
	// let the callers pile up on the in-flight fill
	time.Sleep(50 * time.Millisecond)
	close(repo.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
	}
	if n := repo.lists.Load(); n != 1 {
		t.Fatalf("repo loads: want=1 got=%d", n)
	}
}

func TestCatalogFillOutlivesCancelledCaller(t *testing.T) {
	repo := &stubCatalogRepo{gate: make(chan struct{}), started: make(chan struct{})}
	svc := NewCatalogService(CatalogServiceDeps{Log: logger.Nop(), Repo: repo})

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ListAll(first, "products")
		firstErr <- err
	}()
	<-repo.started

	waiter := make(chan error, 1)
	go func() {
		_, err := svc.ListAll(context.Background(), "products")
		waiter <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: want=%v got=%v", context.Canceled, err)
	}
	close(repo.gate)
	if err := <-waiter; err != nil {
		t.Fatalf("waiter: want=nil got=%v", err)
	}
	if n := repo.lists.Load(); n != 1 {
		t.Fatalf("repo loads: want=1 got=%d", n)
	}
}

func TestCatalogSharedLayerFillsAndServes(t *testing.T) {
	repo := &stubCatalogRepo{}
	shared := &mapSharedCache{}
	ctx := context.Background()

	first := NewCatalogService(CatalogServiceDeps{Log: logger.Nop(), Repo: repo, Shared: shared})
	if _, err := first.ListAll(ctx, "teams"); err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if shared.sets != 1 {
		t.Fatalf("shared sets: want=1 got=%d", shared.sets)
	}

	second := NewCatalogService(CatalogServiceDeps{Log: logger.Nop(), Repo: repo, Shared: shared})
	if _, err := second.ListAll(ctx, "teams"); err != nil {
		t.Fatalf("ListAll second replica: %v", err)
	}
	if n := repo.lists.Load(); n != 1 {
		t.Fatalf("second replica should be served by the shared layer: repo loads=%d", n)
	}
}

func TestCatalogListBundle(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc := NewCatalogService(CatalogServiceDeps{Log: logger.Nop(), Repo: repo})
	bundle, err := svc.ListBundle(context.Background())
	if err != nil {
		t.Fatalf("ListBundle: %v", err)
	}
	if len(bundle) != len(catalog.Kinds()) {
		t.Fatalf("bundle kinds: want=%d got=%d", len(catalog.Kinds()), len(bundle))
	}
	if got := bundle["age-ranges"]; len(got) != 1 || got[0].Name != "age-ranges-1" {
		t.Fatalf("age-ranges: %+v", got)
	}

	failing := NewCatalogService(CatalogServiceDeps{Log: logger.Nop(), Repo: &stubCatalogRepo{fail: errors.New("boom")}})
	if _, err := failing.ListBundle(context.Background()); !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("failing bundle: want internal, got %v", err)
	}
}

func TestCatalogMissingBypassesCache(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc := NewCatalogService(CatalogServiceDeps{Log: logger.Nop(), Repo: repo})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		missing, err := svc.Missing(ctx, "objectives", []int{1, 7})
		if err != nil {
			t.Fatalf("Missing: %v", err)
		}
		if len(missing) != 1 || missing[0] != 7 {
			t.Fatalf("missing: %v", missing)
		}
	}
	if n := repo.missing.Load(); n != 2 {
		t.Fatalf("Missing must hit the repo each time: got=%d", n)
	}
}

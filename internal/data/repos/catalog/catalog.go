package catalog

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

type CatalogRepo interface {
	List(dbc dbctx.Context, kind catalog.Kind) ([]catalog.Entry, error)
	// Missing returns the ids in ids that have no row in kind's table.
	Missing(dbc dbctx.Context, kind catalog.Kind, ids []int) ([]int, error)
	Insert(dbc dbctx.Context, kind catalog.Kind, entries []catalog.Entry) error
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{db: db, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *catalogRepo) table(dbc dbctx.Context, kind catalog.Kind) (*gorm.DB, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownKind, string(kind))
	}
	return dbc.DB(r.db).Table(kind.Table()), nil
}

func (r *catalogRepo) List(dbc dbctx.Context, kind catalog.Kind) ([]catalog.Entry, error) {
	q, err := r.table(dbc, kind)
	if err != nil {
		return nil, err
	}
	out := []catalog.Entry{}
	if err := q.Order("sort_order ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) Missing(dbc dbctx.Context, kind catalog.Kind, ids []int) ([]int, error) {
	q, err := r.table(dbc, kind)
	if err != nil {
		return nil, err
	}
	want := map[int]struct{}{}
	for _, id := range ids {
		want[id] = struct{}{}
	}
	if len(want) == 0 {
		return nil, nil
	}
	uniq := make([]int, 0, len(want))
	for id := range want {
		uniq = append(uniq, id)
	}
	var found []int
	if err := q.Where("id IN ?", uniq).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		delete(want, id)
	}
	var missing []int
	for id := range want {
		missing = append(missing, id)
	}
	sort.Ints(missing)
	return missing, nil
}

func (r *catalogRepo) Insert(dbc dbctx.Context, kind catalog.Kind, entries []catalog.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	q, err := r.table(dbc, kind)
	if err != nil {
		return err
	}
	return q.Create(&entries).Error
}

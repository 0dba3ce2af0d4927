package production

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

type ListFilter struct {
	Stage          production.Stage
	AssignedUserID *uuid.UUID
	Department     string
	Limit          int
	Offset         int
}

type ProductionRequestRepo interface {
	Create(dbc dbctx.Context, req *types.ProductionRequest) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProductionRequest, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ProductionRequest, error)
	// Save writes every parent column. Detail records are not touched.
	Save(dbc dbctx.Context, req *types.ProductionRequest) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
	List(dbc dbctx.Context, f ListFilter) ([]*types.ProductionRequest, int64, error)
}

type productionRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductionRequestRepo(db *gorm.DB, baseLog *logger.Logger) ProductionRequestRepo {
	return &productionRequestRepo{db: db, log: baseLog.With("repo", "ProductionRequestRepo")}
}

func (r *productionRequestRepo) Create(dbc dbctx.Context, req *types.ProductionRequest) error {
	if req == nil || req.ID == uuid.Nil {
		return fmt.Errorf("missing request id")
	}
	return dbc.DB(r.db).Omit(clause.Associations).Create(req).Error
}

func (r *productionRequestRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProductionRequest, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.ProductionRequest
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productionRequestRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ProductionRequest, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID required dbc.Tx")
	}
	var out types.ProductionRequest
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productionRequestRepo) Save(dbc dbctx.Context, req *types.ProductionRequest) error {
	if req == nil || req.ID == uuid.Nil {
		return fmt.Errorf("missing request id")
	}
	return dbc.DB(r.db).Omit(clause.Associations).Save(req).Error
}

func (r *productionRequestRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.ProductionRequest{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *productionRequestRepo) List(dbc dbctx.Context, f ListFilter) ([]*types.ProductionRequest, int64, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	q := dbc.DB(r.db).Model(&types.ProductionRequest{})
	if f.Stage != "" {
		q = q.Where("stage = ?", string(f.Stage))
	}
	if f.AssignedUserID != nil {
		q = q.Where("assigned_user_id = ?", *f.AssignedUserID)
	}
	if d := strings.TrimSpace(f.Department); d != "" {
		q = q.Where("department = ?", d)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []*types.ProductionRequest{}
	if err := q.Order("updated_at DESC").Order("id ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

package production

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

// HistoryRepo is append-only: rows are never updated or deleted.
type HistoryRepo interface {
	Append(dbc dbctx.Context, rows []*types.ProductionRequestHistory) error
	// ListByRequest orders newest first, ties broken by field name.
	ListByRequest(dbc dbctx.Context, requestID uuid.UUID, limit, offset int) ([]*types.ProductionRequestHistory, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return &historyRepo{db: db, log: baseLog.With("repo", "ProductionRequestHistoryRepo")}
}

func (r *historyRepo) Append(dbc dbctx.Context, rows []*types.ProductionRequestHistory) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row == nil || row.ProductionRequestID == uuid.Nil || row.ChangeField == "" {
			return fmt.Errorf("invalid history row")
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *historyRepo) ListByRequest(dbc dbctx.Context, requestID uuid.UUID, limit, offset int) ([]*types.ProductionRequestHistory, error) {
	if requestID == uuid.Nil {
		return nil, fmt.Errorf("missing request id")
	}
	q := dbc.DB(r.db).
		Where("production_request_id = ?", requestID).
		Order("created_at DESC").
		Order("change_field ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	out := []*types.ProductionRequestHistory{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

package production

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

// DetailRepo persists the four one-to-one detail records and the campaign products.
type DetailRepo interface {
	// Load attaches every detail record of req, leaving absent ones nil.
	Load(dbc dbctx.Context, req *types.ProductionRequest) error
	// Save inserts row when create is set, otherwise overwrites it by primary key.
	// row is one of the detail record pointers.
	Save(dbc dbctx.Context, row any, create bool) error
	ReplaceProducts(dbc dbctx.Context, campaignDetailID uuid.UUID, products []types.CampaignProduct) error
	DeleteByRequestID(dbc dbctx.Context, requestID uuid.UUID) error
}

type detailRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDetailRepo(db *gorm.DB, baseLog *logger.Logger) DetailRepo {
	return &detailRepo{db: db, log: baseLog.With("repo", "DetailRepo")}
}

func (r *detailRepo) Load(dbc dbctx.Context, req *types.ProductionRequest) error {
	if req == nil || req.ID == uuid.Nil {
		return fmt.Errorf("missing request")
	}
	db := dbc.DB(r.db)

	var cd types.CustomerData
	found, err := takeOptional(db.Where("production_request_id = ?", req.ID), &cd)
	if err != nil {
		return err
	}
	req.CustomerData = nil
	if found {
		req.CustomerData = &cd
	}

	var ad types.AudienceData
	if found, err = takeOptional(db.Where("production_request_id = ?", req.ID), &ad); err != nil {
		return err
	}
	req.AudienceData = nil
	if found {
		req.AudienceData = &ad
	}

	var camp types.CampaignDetail
	if found, err = takeOptional(db.Where("production_request_id = ?", req.ID), &camp); err != nil {
		return err
	}
	req.CampaignDetail = nil
	if found {
		products := []types.CampaignProduct{}
		if err := db.Where("campaign_detail_id = ?", camp.ID).
			Order("product_id ASC").
			Find(&products).Error; err != nil {
			return err
		}
		camp.Products = products
		req.CampaignDetail = &camp
	}

	var pi types.ProductionInfo
	if found, err = takeOptional(db.Where("production_request_id = ?", req.ID), &pi); err != nil {
		return err
	}
	req.ProductionInfo = nil
	if found {
		req.ProductionInfo = &pi
	}
	return nil
}

func takeOptional(q *gorm.DB, dest any) (bool, error) {
	res := q.Limit(1).Find(dest)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *detailRepo) Save(dbc dbctx.Context, row any, create bool) error {
	switch row.(type) {
	case *types.CustomerData, *types.AudienceData, *types.CampaignDetail, *types.ProductionInfo:
	default:
		return fmt.Errorf("unsupported detail row %T", row)
	}
	db := dbc.DB(r.db).Omit(clause.Associations)
	if create {
		return db.Create(row).Error
	}
	return db.Save(row).Error
}

func (r *detailRepo) ReplaceProducts(dbc dbctx.Context, campaignDetailID uuid.UUID, products []types.CampaignProduct) error {
	if campaignDetailID == uuid.Nil {
		return fmt.Errorf("missing campaign detail id")
	}
	db := dbc.DB(r.db)
	if err := db.Where("campaign_detail_id = ?", campaignDetailID).Delete(&types.CampaignProduct{}).Error; err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	rows := make([]types.CampaignProduct, len(products))
	copy(rows, products)
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
		rows[i].CampaignDetailID = campaignDetailID
	}
	return db.Create(&rows).Error
}

func (r *detailRepo) DeleteByRequestID(dbc dbctx.Context, requestID uuid.UUID) error {
	if requestID == uuid.Nil {
		return fmt.Errorf("missing request id")
	}
	db := dbc.DB(r.db)
	var campaignIDs []uuid.UUID
	if err := db.Model(&types.CampaignDetail{}).
		Where("production_request_id = ?", requestID).
		Pluck("id", &campaignIDs).Error; err != nil {
		return err
	}
	if len(campaignIDs) > 0 {
		if err := db.Where("campaign_detail_id IN ?", campaignIDs).Delete(&types.CampaignProduct{}).Error; err != nil {
			return err
		}
	}
	for _, model := range []any{&types.CustomerData{}, &types.AudienceData{}, &types.CampaignDetail{}, &types.ProductionInfo{}} {
		if err := db.Where("production_request_id = ?", requestID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

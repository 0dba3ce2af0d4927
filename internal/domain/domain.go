package domain

import (
	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
	"github.com/yungbote/production-portal-backend/internal/domain/user"
)

type User = user.User

type CatalogKind = catalog.Kind
type CatalogEntry = catalog.Entry

type ProductionRequest = production.ProductionRequest
type CustomerData = production.CustomerData
type AudienceData = production.AudienceData
type CampaignDetail = production.CampaignDetail
type CampaignProduct = production.CampaignProduct
type ProductionInfo = production.ProductionInfo
type ProductionRequestHistory = production.ProductionRequestHistory
type UploadedFile = production.UploadedFile
type Stage = production.Stage
type Scope = production.Scope

// Models lists every table this service migrates, in dependency order.
func Models() []any {
	return []any{
		&User{},
		&ProductionRequest{},
		&CustomerData{},
		&AudienceData{},
		&CampaignDetail{},
		&CampaignProduct{},
		&ProductionInfo{},
		&ProductionRequestHistory{},
	}
}

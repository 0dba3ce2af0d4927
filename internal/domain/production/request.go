package production

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProductionRequest is the root of the aggregate. The four detail records are
// one-to-one children keyed by ProductionRequestID.
type ProductionRequest struct {
	ID             uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string                            `gorm:"column:name;not null" json:"name"`
	RequestDate    time.Time                         `gorm:"column:request_date;not null" json:"requestDate"`
	Department     string                            `gorm:"column:department;not null;index" json:"department"`
	DeliveryDate   time.Time                         `gorm:"column:delivery_date;not null" json:"deliveryDate"`
	Observations   string                            `gorm:"column:observations;type:text" json:"observations"`
	Stage          Stage                             `gorm:"column:stage;not null;index" json:"stage"`
	Status         string                            `gorm:"column:status;size:64" json:"status"`
	UserCreatorID  uuid.UUID                         `gorm:"type:uuid;column:user_creator_id;not null;index" json:"userCreatorId"`
	AssignedUserID *uuid.UUID                        `gorm:"type:uuid;column:assigned_user_id;index" json:"assignedUserId"`
	AssignedTeam   string                            `gorm:"column:assigned_team" json:"assignedTeam"`
	MaterialData   datatypes.JSON                    `gorm:"column:material_data" json:"materialData,omitempty"`
	Files          datatypes.JSONSlice[UploadedFile] `gorm:"column:files" json:"files"`
	Version        int                               `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt      time.Time                         `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt      time.Time                         `gorm:"column:updated_at;not null" json:"updatedAt"`

	CustomerData   *CustomerData   `gorm:"foreignKey:ProductionRequestID;references:ID" json:"customerData,omitempty"`
	AudienceData   *AudienceData   `gorm:"foreignKey:ProductionRequestID;references:ID" json:"audienceData,omitempty"`
	CampaignDetail *CampaignDetail `gorm:"foreignKey:ProductionRequestID;references:ID" json:"campaignDetail,omitempty"`
	ProductionInfo *ProductionInfo `gorm:"foreignKey:ProductionRequestID;references:ID" json:"productionInfo,omitempty"`
}

func (ProductionRequest) TableName() string { return "production_request" }

type CustomerData struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductionRequestID uuid.UUID `gorm:"type:uuid;column:production_request_id;not null;uniqueIndex" json:"productionRequestId"`
	ClientName          string    `gorm:"column:client_name" json:"clientName"`
	ClientAgency        string    `gorm:"column:client_agency" json:"clientAgency"`
	Brand               string    `gorm:"column:brand" json:"brand"`
	ContactName         string    `gorm:"column:contact_name" json:"contactName"`
	ContactEmail        string    `gorm:"column:contact_email" json:"contactEmail"`
	ContactPhone        string    `gorm:"column:contact_phone" json:"contactPhone"`
	CreatedAt           time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt           time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (CustomerData) TableName() string { return "customer_data" }

type AudienceData struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductionRequestID  uuid.UUID `gorm:"type:uuid;column:production_request_id;not null;uniqueIndex" json:"productionRequestId"`
	GenderID             *int      `gorm:"column:gender_id;index" json:"genderId"`
	AgeRangeID           *int      `gorm:"column:age_range_id;index" json:"ageRangeId"`
	SocioeconomicLevelID *int      `gorm:"column:socioeconomic_level_id;index" json:"socioeconomicLevelId"`
	TargetDescription    string    `gorm:"column:target_description;type:text" json:"targetDescription"`
	Interests            string    `gorm:"column:interests;type:text" json:"interests"`
	CreatedAt            time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt            time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (AudienceData) TableName() string { return "audience_data" }

type CampaignDetail struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProductionRequestID uuid.UUID         `gorm:"type:uuid;column:production_request_id;not null;uniqueIndex" json:"productionRequestId"`
	CampaignName        string            `gorm:"column:campaign_name" json:"campaignName"`
	ObjectiveID         *int              `gorm:"column:objective_id;index" json:"objectiveId"`
	FormatTypeID        *int              `gorm:"column:format_type_id;index" json:"formatTypeId"`
	RightsDurationID    *int              `gorm:"column:rights_duration_id;index" json:"rightsDurationId"`
	StartDate           *time.Time        `gorm:"column:start_date" json:"startDate"`
	EndDate             *time.Time        `gorm:"column:end_date" json:"endDate"`
	Budget              string            `gorm:"column:budget;size:32" json:"budget"`
	KeyMessage          string            `gorm:"column:key_message;type:text" json:"keyMessage"`
	Products            []CampaignProduct `gorm:"foreignKey:CampaignDetailID;references:ID" json:"products"`
	CreatedAt           time.Time         `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (CampaignDetail) TableName() string { return "campaign_detail" }

// CampaignProduct replaced the legacy fixed four product slots.
type CampaignProduct struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignDetailID uuid.UUID `gorm:"type:uuid;column:campaign_detail_id;not null;index" json:"campaignDetailId"`
	ProductID        int       `gorm:"column:product_id;not null;index" json:"productId"`
	Quantity         int       `gorm:"column:quantity;not null" json:"quantity"`
}

func (CampaignProduct) TableName() string { return "campaign_product" }

type ProductionInfo struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProductionRequestID uuid.UUID  `gorm:"type:uuid;column:production_request_id;not null;uniqueIndex" json:"productionRequestId"`
	ProductionType      string     `gorm:"column:production_type" json:"productionType"`
	Location            string     `gorm:"column:location" json:"location"`
	ShootingDate        *time.Time `gorm:"column:shooting_date" json:"shootingDate"`
	Deliverables        string     `gorm:"column:deliverables;type:text" json:"deliverables"`
	ProductionDetails   string     `gorm:"column:production_details;type:text" json:"productionDetails"`
	AdditionalComments  string     `gorm:"column:additional_comments;type:text" json:"additionalComments"`
	CreatedAt           time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (ProductionInfo) TableName() string { return "production_info" }

// Clone deep-copies the aggregate so a proposed state can be built without touching the loaded one.
func (r *ProductionRequest) Clone() *ProductionRequest {
	if r == nil {
		return nil
	}
	out := *r
	if r.AssignedUserID != nil {
		id := *r.AssignedUserID
		out.AssignedUserID = &id
	}
	if r.MaterialData != nil {
		out.MaterialData = append(datatypes.JSON(nil), r.MaterialData...)
	}
	out.Files = append(datatypes.JSONSlice[UploadedFile]{}, r.Files...)
	if r.CustomerData != nil {
		cd := *r.CustomerData
		out.CustomerData = &cd
	}
	if r.AudienceData != nil {
		ad := *r.AudienceData
		ad.GenderID = cloneInt(r.AudienceData.GenderID)
		ad.AgeRangeID = cloneInt(r.AudienceData.AgeRangeID)
		ad.SocioeconomicLevelID = cloneInt(r.AudienceData.SocioeconomicLevelID)
		out.AudienceData = &ad
	}
	if r.CampaignDetail != nil {
		cd := *r.CampaignDetail
		cd.ObjectiveID = cloneInt(r.CampaignDetail.ObjectiveID)
		cd.FormatTypeID = cloneInt(r.CampaignDetail.FormatTypeID)
		cd.RightsDurationID = cloneInt(r.CampaignDetail.RightsDurationID)
		cd.StartDate = cloneTime(r.CampaignDetail.StartDate)
		cd.EndDate = cloneTime(r.CampaignDetail.EndDate)
		cd.Products = append([]CampaignProduct(nil), r.CampaignDetail.Products...)
		out.CampaignDetail = &cd
	}
	if r.ProductionInfo != nil {
		pi := *r.ProductionInfo
		pi.ShootingDate = cloneTime(r.ProductionInfo.ShootingDate)
		out.ProductionInfo = &pi
	}
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

package production

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RequestPatch is the write payload for create and update. A nil field is absent.
// An empty string clears an optional text, date or uuid field. A catalog id of 0 clears it.
type RequestPatch struct {
	Name           *string         `json:"name" validate:"omitempty,max=255"`
	RequestDate    *string         `json:"requestDate"`
	Department     *string         `json:"department" validate:"omitempty,max=255"`
	DeliveryDate   *string         `json:"deliveryDate"`
	Observations   *string         `json:"observations"`
	Stage          *string         `json:"stage"`
	Status         *string         `json:"status" validate:"omitempty,max=64"`
	AssignedUserID *string         `json:"assignedUserId"`
	AssignedTeam   *string         `json:"assignedTeam" validate:"omitempty,max=255"`
	MaterialData   json.RawMessage `json:"materialData"`
	Files          []UploadedFile  `json:"files" validate:"omitempty,dive"`
	Version        *int            `json:"version" validate:"omitempty,gt=0"`

	CustomerData   *CustomerDataPatch   `json:"customerData"`
	AudienceData   *AudienceDataPatch   `json:"audienceData"`
	CampaignDetail *CampaignDetailPatch `json:"campaignDetail"`
	ProductionInfo *ProductionInfoPatch `json:"productionInfo"`
}

type CustomerDataPatch struct {
	ClientName   *string `json:"clientName"`
	ClientAgency *string `json:"clientAgency"`
	Brand        *string `json:"brand"`
	ContactName  *string `json:"contactName"`
	ContactEmail *string `json:"contactEmail"`
	ContactPhone *string `json:"contactPhone" validate:"omitempty,max=32"`
}

type AudienceDataPatch struct {
	GenderID             *int    `json:"genderId" validate:"omitempty,gte=0"`
	AgeRangeID           *int    `json:"ageRangeId" validate:"omitempty,gte=0"`
	SocioeconomicLevelID *int    `json:"socioeconomicLevelId" validate:"omitempty,gte=0"`
	TargetDescription    *string `json:"targetDescription"`
	Interests            *string `json:"interests"`
}

type CampaignDetailPatch struct {
	CampaignName     *string `json:"campaignName"`
	ObjectiveID      *int    `json:"objectiveId" validate:"omitempty,gte=0"`
	FormatTypeID     *int    `json:"formatTypeId" validate:"omitempty,gte=0"`
	RightsDurationID *int    `json:"rightsDurationId" validate:"omitempty,gte=0"`
	StartDate        *string `json:"startDate"`
	EndDate          *string `json:"endDate"`
	Budget           *string `json:"budget"`
	KeyMessage       *string `json:"keyMessage"`
	// Products replaces the whole product list when non-nil. An empty list clears it.
	Products []CampaignProductInput `json:"products" validate:"omitempty,dive"`
}

type CampaignProductInput struct {
	ProductID int `json:"productId" validate:"gt=0"`
	Quantity  int `json:"quantity" validate:"gt=0"`
}

type ProductionInfoPatch struct {
	ProductionType     *string `json:"productionType"`
	Location           *string `json:"location"`
	ShootingDate       *string `json:"shootingDate"`
	Deliverables       *string `json:"deliverables"`
	ProductionDetails  *string `json:"productionDetails"`
	AdditionalComments *string `json:"additionalComments"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks formats only. Which fields are required depends on the operation.
func (p *RequestPatch) Validate() error {
	if p == nil {
		return validationf("payload is required")
	}
	if err := validate.Struct(p); err != nil {
		return validatorError(err)
	}
	var bad []string
	if p.CustomerData != nil && p.CustomerData.ContactEmail != nil {
		if email := strings.TrimSpace(*p.CustomerData.ContactEmail); email != "" {
			if validate.Var(email, "email") != nil {
				bad = append(bad, FieldCustomerContactEmail)
			}
		}
	}
	if p.CampaignDetail != nil && p.CampaignDetail.Budget != nil {
		if b := strings.TrimSpace(*p.CampaignDetail.Budget); b != "" {
			if validate.Var(b, "numeric") != nil {
				bad = append(bad, FieldCampaignBudget)
			}
		}
	}
	if len(p.MaterialData) > 0 && !json.Valid(p.MaterialData) {
		bad = append(bad, FieldMaterialData)
	}
	if len(bad) > 0 {
		return validationf("invalid value for %s", strings.Join(bad, ", "))
	}
	return nil
}

func validatorError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return validationf("%v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		fields = append(fields, ns+" ("+fe.Tag()+")")
	}
	return validationf("invalid value for %s", strings.Join(fields, ", "))
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and truncates to a UTC calendar day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, validationf("invalid date %q", raw)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Today is the UTC calendar day containing now.
func Today(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// NewProductionRequest builds a fresh aggregate for creator from p.
func NewProductionRequest(p *RequestPatch, creator uuid.UUID, now time.Time) (*ProductionRequest, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var missing []string
	if strings.TrimSpace(deref(p.Name)) == "" {
		missing = append(missing, FieldName)
	}
	if strings.TrimSpace(deref(p.Department)) == "" {
		missing = append(missing, FieldDepartment)
	}
	if strings.TrimSpace(deref(p.DeliveryDate)) == "" {
		missing = append(missing, FieldDeliveryDate)
	}
	if len(missing) > 0 {
		return nil, validationf("missing required %s", strings.Join(missing, ", "))
	}
	now = now.UTC()
	base := &ProductionRequest{
		ID:            uuid.New(),
		RequestDate:   Today(now),
		Stage:         InitialStage,
		UserCreatorID: creator,
		Files:         datatypes.JSONSlice[UploadedFile]{},
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return ApplyPatch(base, p, now)
}

// ApplyPatch returns a copy of cur with p merged in. cur is not modified. Files are appended,
// never replaced.
func ApplyPatch(cur *ProductionRequest, p *RequestPatch, now time.Time) (*ProductionRequest, error) {
	if cur == nil {
		return nil, validationf("request is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()
	next := cur.Clone()

	if p.Name != nil {
		if v := strings.TrimSpace(*p.Name); v != "" {
			next.Name = v
		} else {
			return nil, validationf("%s may not be empty", FieldName)
		}
	}
	if p.Department != nil {
		if v := strings.TrimSpace(*p.Department); v != "" {
			next.Department = v
		} else {
			return nil, validationf("%s may not be empty", FieldDepartment)
		}
	}
	if p.RequestDate != nil {
		d, err := requiredDate(FieldRequestDate, *p.RequestDate)
		if err != nil {
			return nil, err
		}
		next.RequestDate = d
	}
	if p.DeliveryDate != nil {
		d, err := requiredDate(FieldDeliveryDate, *p.DeliveryDate)
		if err != nil {
			return nil, err
		}
		next.DeliveryDate = d
	}
	setString(&next.Observations, p.Observations)
	setString(&next.Status, p.Status)
	setString(&next.AssignedTeam, p.AssignedTeam)
	if p.Stage != nil {
		st, err := ParseStage(*p.Stage)
		if err != nil {
			return nil, err
		}
		next.Stage = st
	}
	if p.AssignedUserID != nil {
		raw := strings.TrimSpace(*p.AssignedUserID)
		if raw == "" {
			next.AssignedUserID = nil
		} else {
			id, err := uuid.Parse(raw)
			if err != nil || id == uuid.Nil {
				return nil, validationf("invalid %s %q", FieldAssignedUserID, raw)
			}
			next.AssignedUserID = &id
		}
	}
	if len(p.MaterialData) > 0 {
		if bytes.Equal(bytes.TrimSpace(p.MaterialData), []byte("null")) {
			next.MaterialData = nil
		} else {
			next.MaterialData = datatypes.JSON(append([]byte(nil), p.MaterialData...))
		}
	}
	if len(p.Files) > 0 {
		next.Files = datatypes.JSONSlice[UploadedFile](Reconcile(next.Files, p.Files))
	}

	if cp := p.CustomerData; cp != nil {
		if next.CustomerData == nil {
			next.CustomerData = &CustomerData{ID: uuid.New(), ProductionRequestID: next.ID, CreatedAt: now}
		}
		cd := next.CustomerData
		setString(&cd.ClientName, cp.ClientName)
		setString(&cd.ClientAgency, cp.ClientAgency)
		setString(&cd.Brand, cp.Brand)
		setString(&cd.ContactName, cp.ContactName)
		setString(&cd.ContactEmail, cp.ContactEmail)
		setString(&cd.ContactPhone, cp.ContactPhone)
	}
	if ap := p.AudienceData; ap != nil {
		if next.AudienceData == nil {
			next.AudienceData = &AudienceData{ID: uuid.New(), ProductionRequestID: next.ID, CreatedAt: now}
		}
		ad := next.AudienceData
		setCatalogID(&ad.GenderID, ap.GenderID)
		setCatalogID(&ad.AgeRangeID, ap.AgeRangeID)
		setCatalogID(&ad.SocioeconomicLevelID, ap.SocioeconomicLevelID)
		setString(&ad.TargetDescription, ap.TargetDescription)
		setString(&ad.Interests, ap.Interests)
	}
	if cp := p.CampaignDetail; cp != nil {
		if next.CampaignDetail == nil {
			next.CampaignDetail = &CampaignDetail{ID: uuid.New(), ProductionRequestID: next.ID, CreatedAt: now}
		}
		cd := next.CampaignDetail
		setString(&cd.CampaignName, cp.CampaignName)
		setCatalogID(&cd.ObjectiveID, cp.ObjectiveID)
		setCatalogID(&cd.FormatTypeID, cp.FormatTypeID)
		setCatalogID(&cd.RightsDurationID, cp.RightsDurationID)
		if err := setOptionalDate(&cd.StartDate, FieldCampaignStartDate, cp.StartDate); err != nil {
			return nil, err
		}
		if err := setOptionalDate(&cd.EndDate, FieldCampaignEndDate, cp.EndDate); err != nil {
			return nil, err
		}
		setString(&cd.Budget, cp.Budget)
		setString(&cd.KeyMessage, cp.KeyMessage)
		if cp.Products != nil {
			cd.Products = make([]CampaignProduct, 0, len(cp.Products))
			for _, in := range cp.Products {
				cd.Products = append(cd.Products, CampaignProduct{
					ID:               uuid.New(),
					CampaignDetailID: cd.ID,
					ProductID:        in.ProductID,
					Quantity:         in.Quantity,
				})
			}
		}
		if cd.StartDate != nil && cd.EndDate != nil && cd.EndDate.Before(*cd.StartDate) {
			return nil, validationf("%s is before %s", FieldCampaignEndDate, FieldCampaignStartDate)
		}
	}
	if pp := p.ProductionInfo; pp != nil {
		if next.ProductionInfo == nil {
			next.ProductionInfo = &ProductionInfo{ID: uuid.New(), ProductionRequestID: next.ID, CreatedAt: now}
		}
		pi := next.ProductionInfo
		setString(&pi.ProductionType, pp.ProductionType)
		setString(&pi.Location, pp.Location)
		if err := setOptionalDate(&pi.ShootingDate, FieldProductionInfoShootingDate, pp.ShootingDate); err != nil {
			return nil, err
		}
		setString(&pi.Deliverables, pp.Deliverables)
		setString(&pi.ProductionDetails, pp.ProductionDetails)
		setString(&pi.AdditionalComments, pp.AdditionalComments)
	}
	return next, nil
}

// CatalogRefs lists the catalog ids set on req, keyed by catalog kind name. When
// include is non-nil only fields it accepts are reported.
func CatalogRefs(req *ProductionRequest, include func(field string) bool) map[string][]int {
	out := map[string][]int{}
	add := func(field, kind string, v *int) {
		if v == nil {
			return
		}
		if include != nil && !include(field) {
			return
		}
		out[kind] = append(out[kind], *v)
	}
	if req == nil {
		return out
	}
	if ad := req.AudienceData; ad != nil {
		add(FieldAudienceGenderID, "genders", ad.GenderID)
		add(FieldAudienceAgeRangeID, "age-ranges", ad.AgeRangeID)
		add(FieldAudienceSocioeconomicLevelID, "socioeconomic-levels", ad.SocioeconomicLevelID)
	}
	if cd := req.CampaignDetail; cd != nil {
		add(FieldCampaignObjectiveID, "objectives", cd.ObjectiveID)
		add(FieldCampaignFormatTypeID, "format-types", cd.FormatTypeID)
		add(FieldCampaignRightsDurationID, "rights-durations", cd.RightsDurationID)
		for _, p := range cd.Products {
			id := p.ProductID
			add(FieldCampaignProducts, "products", &id)
		}
	}
	return out
}

// AddedCatalogRefs is CatalogRefs(next, include) minus the ids cur already holds for
// the same kind. A reference carried over from cur is
// not reported again, even when its catalog row has since been deleted.
func AddedCatalogRefs(cur, next *ProductionRequest, include func(field string) bool) map[string][]int {
	held := CatalogRefs(cur, nil)
	out := map[string][]int{}
	for kind, ids := range CatalogRefs(next, include) {
		for _, id := range ids {
			if !slices.Contains(held[kind], id) {
				out[kind] = append(out[kind], id)
			}
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setCatalogID(dst **int, v *int) {
	if v == nil {
		return
	}
	if *v == 0 {
		*dst = nil
		return
	}
	x := *v
	*dst = &x
}

func requiredDate(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, validationf("%s may not be empty", field)
	}
	return ParseDate(raw)
}

func setOptionalDate(dst **time.Time, field string, raw *string) error {
	if raw == nil {
		return nil
	}
	if strings.TrimSpace(*raw) == "" {
		*dst = nil
		return nil
	}
	d, err := ParseDate(*raw)
	if err != nil {
		return validationf("invalid %s %q", field, *raw)
	}
	*dst = &d
	return nil
}

package production

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the on-the-wire and audit format for calendar dates.
const DateLayout = "2006-01-02"

// Snapshot flattens req into field path -> audit string. Empty values are omitted so an
// absent key and an empty value compare equal.
func Snapshot(req *ProductionRequest) map[string]string {
	out := map[string]string{}
	if req == nil {
		return out
	}
	putString(out, FieldName, req.Name)
	putDate(out, FieldRequestDate, &req.RequestDate)
	putString(out, FieldDepartment, req.Department)
	putDate(out, FieldDeliveryDate, &req.DeliveryDate)
	putString(out, FieldObservations, req.Observations)
	putString(out, FieldStage, string(req.Stage))
	putString(out, FieldStatus, req.Status)
	putUUID(out, FieldAssignedUserID, req.AssignedUserID)
	putString(out, FieldAssignedTeam, req.AssignedTeam)
	if len(req.MaterialData) > 0 {
		putString(out, FieldMaterialData, canonicalJSON(req.MaterialData))
	}
	if len(req.Files) > 0 {
		putString(out, FieldFiles, marshalCanonical(req.Files))
	}

	if cd := req.CustomerData; cd != nil {
		putString(out, FieldCustomerClientName, cd.ClientName)
		putString(out, FieldCustomerClientAgency, cd.ClientAgency)
		putString(out, FieldCustomerBrand, cd.Brand)
		putString(out, FieldCustomerContactName, cd.ContactName)
		putString(out, FieldCustomerContactEmail, cd.ContactEmail)
		putString(out, FieldCustomerContactPhone, cd.ContactPhone)
	}
	if ad := req.AudienceData; ad != nil {
		putInt(out, FieldAudienceGenderID, ad.GenderID)
		putInt(out, FieldAudienceAgeRangeID, ad.AgeRangeID)
		putInt(out, FieldAudienceSocioeconomicLevelID, ad.SocioeconomicLevelID)
		putString(out, FieldAudienceTargetDescription, ad.TargetDescription)
		putString(out, FieldAudienceInterests, ad.Interests)
	}
	if cd := req.CampaignDetail; cd != nil {
		putString(out, FieldCampaignName, cd.CampaignName)
		putInt(out, FieldCampaignObjectiveID, cd.ObjectiveID)
		putInt(out, FieldCampaignFormatTypeID, cd.FormatTypeID)
		putInt(out, FieldCampaignRightsDurationID, cd.RightsDurationID)
		putDate(out, FieldCampaignStartDate, cd.StartDate)
		putDate(out, FieldCampaignEndDate, cd.EndDate)
		putString(out, FieldCampaignBudget, cd.Budget)
		putString(out, FieldCampaignKeyMessage, cd.KeyMessage)
		if len(cd.Products) > 0 {
			putString(out, FieldCampaignProducts, productsJSON(cd.Products))
		}
	}
	if pi := req.ProductionInfo; pi != nil {
		putString(out, FieldProductionInfoProductionType, pi.ProductionType)
		putString(out, FieldProductionInfoLocation, pi.Location)
		putDate(out, FieldProductionInfoShootingDate, pi.ShootingDate)
		putString(out, FieldProductionInfoDeliverables, pi.Deliverables)
		putString(out, FieldProductionInfoProductionDetails, pi.ProductionDetails)
		putString(out, FieldProductionInfoAdditionalComments, pi.AdditionalComments)
	}
	return out
}

func putString(m map[string]string, k, v string) {
	if v = strings.TrimSpace(v); v != "" {
		m[k] = v
	}
}

func putDate(m map[string]string, k string, v *time.Time) {
	if v == nil || v.IsZero() {
		return
	}
	m[k] = v.UTC().Format(DateLayout)
}

func putInt(m map[string]string, k string, v *int) {
	if v == nil {
		return
	}
	m[k] = strconv.Itoa(*v)
}

func putUUID(m map[string]string, k string, v *uuid.UUID) {
	if v == nil || *v == uuid.Nil {
		return
	}
	m[k] = strings.ToLower(v.String())
}

// productsJSON ignores row ids, which are regenerated on every save.
func productsJSON(in []CampaignProduct) string {
	type item struct {
		ProductID int `json:"productId"`
		Quantity  int `json:"quantity"`
	}
	items := make([]item, 0, len(in))
	for _, p := range in {
		items = append(items, item{ProductID: p.ProductID, Quantity: p.Quantity})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ProductID != items[j].ProductID {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].Quantity < items[j].Quantity
	})
	return marshalCanonical(items)
}

// marshalCanonical round-trips v through a generic value so object keys come out sorted.
func marshalCanonical(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return canonicalJSON(raw)
}

func canonicalJSON(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

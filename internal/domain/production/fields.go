package production

// Field paths used by the scope resolver and the change history. Detail fields are
// addressed as "<section>.<field>".
const (
	FieldName           = "name"
	FieldRequestDate    = "requestDate"
	FieldDepartment     = "department"
	FieldDeliveryDate   = "deliveryDate"
	FieldObservations   = "observations"
	FieldStage          = "stage"
	FieldStatus         = "status"
	FieldAssignedUserID = "assignedUserId"
	FieldAssignedTeam   = "assignedTeam"
	FieldMaterialData   = "materialData"
	FieldFiles          = "files"

	SectionCustomerData   = "customerData"
	SectionAudienceData   = "audienceData"
	SectionCampaignDetail = "campaignDetail"
	SectionProductionInfo = "productionInfo"

	FieldCustomerClientName   = SectionCustomerData + ".clientName"
	FieldCustomerClientAgency = SectionCustomerData + ".clientAgency"
	FieldCustomerBrand        = SectionCustomerData + ".brand"
	FieldCustomerContactName  = SectionCustomerData + ".contactName"
	FieldCustomerContactEmail = SectionCustomerData + ".contactEmail"
	FieldCustomerContactPhone = SectionCustomerData + ".contactPhone"

	FieldAudienceGenderID             = SectionAudienceData + ".genderId"
	FieldAudienceAgeRangeID           = SectionAudienceData + ".ageRangeId"
	FieldAudienceSocioeconomicLevelID = SectionAudienceData + ".socioeconomicLevelId"
	FieldAudienceTargetDescription    = SectionAudienceData + ".targetDescription"
	FieldAudienceInterests            = SectionAudienceData + ".interests"

	FieldCampaignName             = SectionCampaignDetail + ".campaignName"
	FieldCampaignObjectiveID      = SectionCampaignDetail + ".objectiveId"
	FieldCampaignFormatTypeID     = SectionCampaignDetail + ".formatTypeId"
	FieldCampaignRightsDurationID = SectionCampaignDetail + ".rightsDurationId"
	FieldCampaignStartDate        = SectionCampaignDetail + ".startDate"
	FieldCampaignEndDate          = SectionCampaignDetail + ".endDate"
	FieldCampaignBudget           = SectionCampaignDetail + ".budget"
	FieldCampaignKeyMessage       = SectionCampaignDetail + ".keyMessage"
	FieldCampaignProducts         = SectionCampaignDetail + ".products"

	FieldProductionInfoProductionType     = SectionProductionInfo + ".productionType"
	FieldProductionInfoLocation           = SectionProductionInfo + ".location"
	FieldProductionInfoShootingDate       = SectionProductionInfo + ".shootingDate"
	FieldProductionInfoDeliverables       = SectionProductionInfo + ".deliverables"
	FieldProductionInfoProductionDetails  = SectionProductionInfo + ".productionDetails"
	FieldProductionInfoAdditionalComments = SectionProductionInfo + ".additionalComments"
)

// SectionOf returns the detail section a field belongs to, or "" for parent fields.
func SectionOf(field string) string {
	for i := 0; i < len(field); i++ {
		if field[i] == '.' {
			return field[:i]
		}
	}
	return ""
}

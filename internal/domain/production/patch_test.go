package production

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

var fixedNow = time.Date(2026, 5, 4, 13, 30, 0, 0, time.UTC)

func TestNewProductionRequestDefaults(t *testing.T) {
	creator := uuid.New()
	req, err := NewProductionRequest(&RequestPatch{
		Name:         strPtr("Launch"),
		Department:   strPtr("Marketing"),
		DeliveryDate: strPtr("2026-06-01T10:00:00-05:00"),
	}, creator, fixedNow)
	if err != nil {
		t.Fatalf("NewProductionRequest: %v", err)
	}
	if req.Stage != StageRequest {
		t.Fatalf("stage: want=request got=%s", req.Stage)
	}
	if req.Version != 1 || req.UserCreatorID != creator || req.ID == uuid.Nil {
		t.Fatalf("unexpected identity fields: %+v", req)
	}
	if got := req.RequestDate.Format(DateLayout); got != "2026-05-04" {
		t.Fatalf("requestDate: want=2026-05-04 got=%s", got)
	}
	if got := req.DeliveryDate.Format(DateLayout); got != "2026-06-01" {
		t.Fatalf("deliveryDate: want=2026-06-01 got=%s", got)
	}
}

func TestNewProductionRequestRequiresFields(t *testing.T) {
	_, err := NewProductionRequest(&RequestPatch{Name: strPtr("  ")}, uuid.New(), fixedNow)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestApplyPatchDoesNotMutateInput(t *testing.T) {
	cur, err := NewProductionRequest(&RequestPatch{
		Name:         strPtr("Launch"),
		Department:   strPtr("Marketing"),
		DeliveryDate: strPtr("2026-06-01"),
		CampaignDetail: &CampaignDetailPatch{
			Products: []CampaignProductInput{{ProductID: 1, Quantity: 2}},
		},
	}, uuid.New(), fixedNow)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	next, err := ApplyPatch(cur, &RequestPatch{
		Observations:   strPtr("note"),
		CampaignDetail: &CampaignDetailPatch{Products: []CampaignProductInput{}},
	}, fixedNow)
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if cur.Observations != "" || len(cur.CampaignDetail.Products) != 1 {
		t.Fatalf("input mutated: %+v", cur)
	}
	if next.Observations != "note" || len(next.CampaignDetail.Products) != 0 {
		t.Fatalf("patch not applied: %+v", next)
	}
	if next.CampaignDetail.ID != cur.CampaignDetail.ID {
		t.Fatalf("existing detail id should be kept")
	}
}

func TestApplyPatchClearsOptionalValues(t *testing.T) {
	assignee := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := &ProductionRequest{
		ID:             uuid.New(),
		Name:           "x",
		AssignedUserID: &assignee,
		MaterialData:   []byte(`{"a":1}`),
		AudienceData:   &AudienceData{GenderID: intPtr(3)},
		CampaignDetail: &CampaignDetail{StartDate: &start},
	}
	zero := 0
	next, err := ApplyPatch(cur, &RequestPatch{
		AssignedUserID: strPtr(""),
		MaterialData:   json.RawMessage(`null`),
		AudienceData:   &AudienceDataPatch{GenderID: &zero},
		CampaignDetail: &CampaignDetailPatch{StartDate: strPtr("")},
	}, fixedNow)
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if next.AssignedUserID != nil || next.MaterialData != nil || next.AudienceData.GenderID != nil || next.CampaignDetail.StartDate != nil {
		t.Fatalf("values not cleared: %+v", next)
	}
}

func TestApplyPatchRejectsBadInput(t *testing.T) {
	cur := &ProductionRequest{ID: uuid.New(), Name: "x"}
	cases := []struct {
		name  string
		patch *RequestPatch
		want  error
	}{
		{"bad stage", &RequestPatch{Stage: strPtr("shipped")}, ErrInvalidStage},
		{"bad email", &RequestPatch{CustomerData: &CustomerDataPatch{ContactEmail: strPtr("nope")}}, ErrValidation},
		{"bad budget", &RequestPatch{CampaignDetail: &CampaignDetailPatch{Budget: strPtr("lots")}}, ErrValidation},
		{"bad quantity", &RequestPatch{CampaignDetail: &CampaignDetailPatch{Products: []CampaignProductInput{{ProductID: 1, Quantity: 0}}}}, ErrValidation},
		{"bad assignee", &RequestPatch{AssignedUserID: strPtr("abc")}, ErrValidation},
		{"bad date", &RequestPatch{DeliveryDate: strPtr("31/12/2026")}, ErrValidation},
		{"blank name", &RequestPatch{Name: strPtr(" ")}, ErrValidation},
		{"end before start", &RequestPatch{CampaignDetail: &CampaignDetailPatch{StartDate: strPtr("2026-02-02"), EndDate: strPtr("2026-02-01")}}, ErrValidation},
		{"file without id", &RequestPatch{Files: []UploadedFile{{Name: "x"}}}, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ApplyPatch(cur, tc.patch, fixedNow); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyPatchAppendsFiles(t *testing.T) {
	cur := &ProductionRequest{ID: uuid.New(), Files: []UploadedFile{{ID: "a", Name: "a"}}}
	next, err := ApplyPatch(cur, &RequestPatch{Files: []UploadedFile{{ID: "a", Name: "dup"}, {ID: "b", Name: "b"}}}, fixedNow)
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if ids := FileIDs(next.Files); len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("files: got %v", ids)
	}
}

func TestCatalogRefs(t *testing.T) {
	req := &ProductionRequest{
		AudienceData:   &AudienceData{GenderID: intPtr(1)},
		CampaignDetail: &CampaignDetail{ObjectiveID: intPtr(2), Products: []CampaignProduct{{ProductID: 5}, {ProductID: 6}}},
	}
	refs := CatalogRefs(req, nil)
	if len(refs["genders"]) != 1 || len(refs["objectives"]) != 1 || len(refs["products"]) != 2 {
		t.Fatalf("unexpected refs: %v", refs)
	}
	only := CatalogRefs(req, func(f string) bool { return f == FieldCampaignProducts })
	if len(only) != 1 || len(only["products"]) != 2 {
		t.Fatalf("filtered refs: %v", only)
	}
}

func TestAddedCatalogRefs(t *testing.T) {
	cur := &ProductionRequest{
		AudienceData:   &AudienceData{GenderID: intPtr(1)},
		CampaignDetail: &CampaignDetail{Products: []CampaignProduct{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}}},
	}
	next := &ProductionRequest{
		AudienceData:   &AudienceData{GenderID: intPtr(3)},
		CampaignDetail: &CampaignDetail{Products: []CampaignProduct{{ProductID: 1, Quantity: 5}, {ProductID: 2, Quantity: 1}, {ProductID: 7, Quantity: 1}}},
	}
	added := AddedCatalogRefs(cur, next, nil)
	if got := added["products"]; len(got) != 1 || got[0] != 7 {
		t.Fatalf("added products: want=[7] got=%v", got)
	}
	if got := added["genders"]; len(got) != 1 || got[0] != 3 {
		t.Fatalf("added genders: want=[3] got=%v", got)
	}
	if fresh := AddedCatalogRefs(nil, next, nil); len(fresh["products"]) != 3 {
		t.Fatalf("create refs: want=3 got=%v", fresh["products"])
	}
}

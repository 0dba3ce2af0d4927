package production

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestResolveScope(t *testing.T) {
	assignee := uuid.New()
	req := &ProductionRequest{ID: uuid.New(), AssignedUserID: &assignee}

	if got := ResolveScope(Caller{UserID: uuid.New(), Permissions: []string{"Admin"}}, req); got != ScopeFull {
		t.Fatalf("admin: want=full got=%s", got)
	}
	if got := ResolveScope(Caller{UserID: assignee, Permissions: []string{PermissionSupervisor}}, req); got != ScopeFull {
		t.Fatalf("assigned supervisor: want=full got=%s", got)
	}
	if got := ResolveScope(Caller{UserID: assignee}, req); got != ScopeRestricted {
		t.Fatalf("assignee: want=restricted got=%s", got)
	}
	if got := ResolveScope(Caller{UserID: uuid.New(), Permissions: []string{"editor"}}, req); got != ScopeReadOnly {
		t.Fatalf("stranger: want=read_only got=%s", got)
	}
	if got := ResolveScope(Caller{UserID: uuid.Nil}, &ProductionRequest{}); got != ScopeReadOnly {
		t.Fatalf("nil caller on unassigned: want=read_only got=%s", got)
	}
}

func TestScopeCanWrite(t *testing.T) {
	restricted := []string{
		FieldObservations,
		FieldStage,
		FieldAssignedTeam,
		FieldAssignedUserID,
		FieldProductionInfoProductionDetails,
		FieldProductionInfoAdditionalComments,
	}
	for _, f := range restricted {
		if !ScopeRestricted.CanWrite(f) {
			t.Fatalf("restricted should write %s", f)
		}
		if ScopeReadOnly.CanWrite(f) {
			t.Fatalf("read only should not write %s", f)
		}
	}
	for _, f := range []string{FieldName, FieldFiles, FieldStatus, FieldCampaignBudget, FieldProductionInfoLocation} {
		if ScopeRestricted.CanWrite(f) {
			t.Fatalf("restricted should not write %s", f)
		}
		if !ScopeFull.CanWrite(f) {
			t.Fatalf("full should write %s", f)
		}
	}
}

func TestScopeCheckFieldsNamesEveryViolation(t *testing.T) {
	err := ScopeRestricted.CheckFields([]string{FieldObservations, FieldName, FieldCampaignBudget})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	var sv *ScopeViolationError
	if !errors.As(err, &sv) {
		t.Fatalf("want *ScopeViolationError, got %T", err)
	}
	if len(sv.Fields) != 2 || sv.Fields[0] != FieldName || sv.Fields[1] != FieldCampaignBudget {
		t.Fatalf("fields: got %v", sv.Fields)
	}
	if !strings.Contains(err.Error(), "campaignDetail.budget") {
		t.Fatalf("message should name field: %s", err.Error())
	}
	if err := ScopeRestricted.CheckFields([]string{FieldStage}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

package production

import (
	"errors"
	"testing"
)

func TestParseStage(t *testing.T) {
	got, err := ParseStage("  In_Production ")
	if err != nil {
		t.Fatalf("ParseStage: %v", err)
	}
	if got != StageInProduction {
		t.Fatalf("stage: want=%s got=%s", StageInProduction, got)
	}
	if _, err := ParseStage("archived"); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("want ErrInvalidStage, got %v", err)
	}
	if _, err := ParseStage(""); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("want ErrInvalidStage for empty, got %v", err)
	}
}

func TestStagesOrder(t *testing.T) {
	st := Stages()
	if len(st) != 9 {
		t.Fatalf("stage count: want=9 got=%d", len(st))
	}
	if st[0] != StageRequest || st[8] != StageCompleted {
		t.Fatalf("unexpected bounds: %v", st)
	}
	st[0] = "mutated"
	if Stages()[0] != StageRequest {
		t.Fatalf("Stages returned shared slice")
	}
	if StageClientApproved.Index() != 7 {
		t.Fatalf("client_approved index: want=7 got=%d", StageClientApproved.Index())
	}
}

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		name      string
		from, to  Stage
		scope     Scope
		wantErr   error
		wantTrans bool
	}{
		{"full forward jump", StageRequest, StageCompleted, ScopeFull, nil, false},
		{"full reopen", StageCompleted, StageRequest, ScopeFull, nil, false},
		{"restricted forward", StageQuotation, StageInEditing, ScopeRestricted, nil, false},
		{"restricted backward", StageInEditing, StageRequest, ScopeRestricted, nil, false},
		{"restricted into completed", StageClientApproved, StageCompleted, ScopeRestricted, ErrForbidden, true},
		{"restricted out of completed", StageCompleted, StageClientApproved, ScopeRestricted, ErrForbidden, true},
		{"read only", StageRequest, StageQuotation, ScopeReadOnly, ErrForbidden, true},
		{"same stage", StageQuotation, StageQuotation, ScopeFull, ErrValidation, false},
		{"unknown target", StageRequest, Stage("shipped"), ScopeFull, ErrInvalidStage, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.from, tc.to, tc.scope)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if IsTransitionError(err) != tc.wantTrans {
				t.Fatalf("IsTransitionError: want=%v got=%v", tc.wantTrans, IsTransitionError(err))
			}
		})
	}
}

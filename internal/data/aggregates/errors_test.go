package aggregates

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_ProductionErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"scope", &production.ScopeViolationError{Scope: production.ScopeRestricted, Fields: []string{"name"}}, domainagg.CodeForbidden},
		{"transition", &production.TransitionError{From: production.StageRequest, To: production.StageCompleted, Scope: production.ScopeRestricted}, domainagg.CodeForbidden},
		{"invalid stage", production.CheckTransition(production.StageRequest, "shipped", production.ScopeFull), domainagg.CodeInvalidStage},
		{"same stage", production.CheckTransition(production.StageRequest, production.StageRequest, production.ScopeFull), domainagg.CodeValidation},
		{"file", production.ErrFileNotLinked, domainagg.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("op", tc.err)
			if !domainagg.IsCode(got, tc.want) {
				t.Fatalf("want %s got %q (%v)", tc.want, domainagg.CodeOf(got), got)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("cause should be preserved")
			}
		})
	}
}

func TestMapError_PgCodes(t *testing.T) {
	if got := MapError("op", &pgconn.PgError{Code: "23505"}); !domainagg.IsCode(got, domainagg.CodeConflict) {
		t.Fatalf("23505: got %q", domainagg.CodeOf(got))
	}
	if got := MapError("op", &pgconn.PgError{Code: "40P01"}); !domainagg.IsCode(got, domainagg.CodeRetryable) {
		t.Fatalf("40P01: got %q", domainagg.CodeOf(got))
	}
	if got := MapError("op", errors.New("boom")); !domainagg.IsCode(got, domainagg.CodeInternal) {
		t.Fatalf("unknown: got %q", domainagg.CodeOf(got))
	}
}

func TestTaggedErrorsKeepCallerMessage(t *testing.T) {
	err := MapError("production_request.update", ConflictError("  version mismatch  "))
	if got := domainagg.MessageOf(err); got != "version mismatch" {
		t.Fatalf("message: want=%q got=%q", "version mismatch", got)
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("sentinel should survive mapping")
	}
	if got := RetryableError("").Error(); got != ErrRetryable.Error() {
		t.Fatalf("empty message: want=%q got=%q", ErrRetryable.Error(), got)
	}
}

package production

import (
	"fmt"
	"strings"
)

// Stage is one position in the fixed production workflow.
type Stage string

const (
	StageRequest            Stage = "request"
	StageQuotation          Stage = "quotation"
	StageMaterialAdjustment Stage = "material_adjustment"
	StagePreProduction      Stage = "pre_production"
	StageInProduction       Stage = "in_production"
	StageInEditing          Stage = "in_editing"
	StageDeliveredApproval  Stage = "delivered_approval"
	StageClientApproved     Stage = "client_approved"
	StageCompleted          Stage = "completed"
)

// InitialStage is assigned to new requests that do not specify one.
const InitialStage = StageRequest

var stageOrder = []Stage{
	StageRequest,
	StageQuotation,
	StageMaterialAdjustment,
	StagePreProduction,
	StageInProduction,
	StageInEditing,
	StageDeliveredApproval,
	StageClientApproved,
	StageCompleted,
}

// Stages returns the workflow in forward order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Index is the position of s in the workflow, or -1.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool { return s.Index() >= 0 }

// Terminal reports whether s is the locked end state.
func (s Stage) Terminal() bool { return s == StageCompleted }

func (s Stage) String() string { return string(s) }

// ParseStage normalizes raw and checks it against the stage set.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
	}
	return s, nil
}

// CheckTransition validates a move from -> to for a caller holding scope.
//
// Full scope may jump anywhere. Restricted scope may move forward or back by any
// distance but never into or out of the terminal stage. ReadOnly may not move.
func CheckTransition(from, to Stage, scope Scope) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStage, string(to))
	}
	if from == to {
		return validationf("request is already in stage %s", to)
	}
	switch scope {
	case ScopeFull:
		return nil
	case ScopeRestricted:
		if from.Terminal() || to.Terminal() {
			return &TransitionError{From: from, To: to, Scope: scope}
		}
		return nil
	default:
		return &TransitionError{From: from, To: to, Scope: scope}
	}
}

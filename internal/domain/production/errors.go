package production

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("production request validation")
	// ErrForbidden marks a change outside the caller's field scope or an illegal transition for that scope.
	ErrForbidden = errors.New("production request forbidden")
	// ErrInvalidStage marks a stage value outside the fixed stage set.
	ErrInvalidStage = errors.New("invalid stage")
	// ErrFileNotLinked marks a file id that is not on the request.
	ErrFileNotLinked = errors.New("file not linked to request")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ScopeViolationError lists every changed field the caller may not write.
type ScopeViolationError struct {
	Scope  Scope
	Fields []string
}

func (e *ScopeViolationError) Error() string {
	if e == nil {
		return ErrForbidden.Error()
	}
	return fmt.Sprintf("%s scope may not change: %s", e.Scope, strings.Join(e.Fields, ", "))
}

func (e *ScopeViolationError) Is(target error) bool { return target == ErrForbidden }

// TransitionError is an illegal stage move for the caller's scope.
type TransitionError struct {
	From  Stage
	To    Stage
	Scope Scope
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ErrForbidden.Error()
	}
	if e.Scope == ScopeReadOnly {
		return fmt.Sprintf("%s scope may not move stages", e.Scope)
	}
	return fmt.Sprintf("%s scope may not move %s -> %s", e.Scope, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrForbidden }

// IsTransitionError reports whether err was raised by the stage rules rather than the field scope.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// CheckInitialStage enforces that only privileged callers create a request outside the initial stage.
func CheckInitialStage(caller Caller, stage Stage) error {
	if stage == InitialStage || caller.Privileged() {
		return nil
	}
	return fmt.Errorf("%w: only admin or supervisor may create a request in stage %s", ErrForbidden, stage)
}

// CheckDelete enforces that only Full scope may hard-delete a request.
func CheckDelete(scope Scope) error {
	if scope == ScopeFull {
		return nil
	}
	return fmt.Errorf("%w: %s scope may not delete requests", ErrForbidden, scope)
}

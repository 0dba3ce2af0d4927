package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
)

// Sentinels for failures raised inside aggregate write bodies.
var (
	ErrValidation = errors.New("aggregate validation")
	ErrInvariant  = errors.New("aggregate invariant violation")
	ErrConflict   = errors.New("aggregate conflict")
	ErrRetryable  = errors.New("aggregate retryable")
)

// taggedError carries a caller-facing message and matches its sentinel under errors.Is.
type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string        { return e.msg }
func (e *taggedError) Is(target error) bool { return target == e.kind }

func tag(kind error, msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = kind.Error()
	}
	return &taggedError{kind: kind, msg: msg}
}

func ValidationError(msg string) error { return tag(ErrValidation, msg) }
func InvariantError(msg string) error  { return tag(ErrInvariant, msg) }
func ConflictError(msg string) error   { return tag(ErrConflict, msg) }
func RetryableError(msg string) error  { return tag(ErrRetryable, msg) }

// sentinelCodes is checked in order; the first match wins.
var sentinelCodes = []struct {
	err  error
	code domainagg.ErrorCode
}{
	{ErrValidation, domainagg.CodeValidation},
	{production.ErrValidation, domainagg.CodeValidation},
	{catalog.ErrUnknownKind, domainagg.CodeValidation},
	{production.ErrInvalidStage, domainagg.CodeInvalidStage},
	{production.ErrForbidden, domainagg.CodeForbidden},
	{production.ErrFileNotLinked, domainagg.CodeNotFound},
	{ErrInvariant, domainagg.CodeInvariantViolation},
	{ErrConflict, domainagg.CodeConflict},
	{ErrRetryable, domainagg.CodeRetryable},
	{gorm.ErrRecordNotFound, domainagg.CodeNotFound},
	{context.Canceled, domainagg.CodeRetryable},
	{context.DeadlineExceeded, domainagg.CodeRetryable},
}

var pgCodes = map[string]domainagg.ErrorCode{
	"23505": domainagg.CodeConflict,           // unique_violation
	"23503": domainagg.CodePreconditionFailed, // foreign_key_violation
	"40001": domainagg.CodeRetryable,          // serialization_failure
	"40P01": domainagg.CodeRetryable,          // deadlock_detected
	"55P03": domainagg.CodeRetryable,          // lock_not_available
}

// MapError gives err an aggregate code. Errors that already carry one pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *domainagg.Error
	if errors.As(err, &coded) {
		return err
	}
	return domainagg.Wrap(classify(err), op, err)
}

func classify(err error) domainagg.ErrorCode {
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if code, ok := pgCodes[strings.TrimSpace(pgErr.Code)]; ok {
			return code
		}
	}
	// sqlite and wrapped driver errors only expose text
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"duplicate key", "unique constraint"} {
		if strings.Contains(msg, hint) {
			return domainagg.CodeConflict
		}
	}
	for _, hint := range []string{"deadlock", "serialization", "database is locked", "timeout", "temporar"} {
		if strings.Contains(msg, hint) {
			return domainagg.CodeRetryable
		}
	}
	return domainagg.CodeInternal
}

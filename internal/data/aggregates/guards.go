package aggregates

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
)

// CASGuard bumps versioned rows with a compare-and-set on (id, version).
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

// UpdateByVersion applies updates only while the row still carries expectedVersion.
// ok=false means another writer got there first.
func (g CASGuard) UpdateByVersion(dbc dbctx.Context, table string, id uuid.UUID, expectedVersion int, updates map[string]any) (ok bool, err error) {
	if dbc.Tx == nil && g.db == nil {
		return false, ValidationError("missing db transaction context")
	}
	if table = strings.TrimSpace(table); table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for UpdateByVersion")
	}
	if expectedVersion < 0 {
		return false, ValidationError(fmt.Sprintf("expected version %d is negative", expectedVersion))
	}
	res := dbc.DB(g.db).Table(table).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// BumpVersion moves a row from version `from` to from+1 and stamps updated_at.
func (g CASGuard) BumpVersion(dbc dbctx.Context, table string, id uuid.UUID, from int, at time.Time) error {
	ok, err := g.UpdateByVersion(dbc, table, id, from, map[string]any{
		"version":    from + 1,
		"updated_at": at,
	})
	if err != nil {
		return err
	}
	return RequireCASSuccess(ok, table+" was modified concurrently")
}

func RequireCASSuccess(ok bool, message string) error {
	if !ok {
		return ConflictError(strings.TrimSpace(message))
	}
	return nil
}

// RequireVersionMatch rejects a client-supplied version that no longer matches the row.
func RequireVersionMatch(current, expected int) error {
	switch {
	case expected < 0:
		return ValidationError("expected version must be >= 0")
	case current != expected:
		return ConflictError(fmt.Sprintf("version mismatch: request is at %d, got %d", current, expected))
	}
	return nil
}

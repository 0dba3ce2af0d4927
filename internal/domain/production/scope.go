package production

import (
	"strings"

	"github.com/google/uuid"
)

// Scope classifies which fields of a request a caller may change.
type Scope int

const (
	ScopeReadOnly Scope = iota
	ScopeRestricted
	ScopeFull
)

func (s Scope) String() string {
	switch s {
	case ScopeFull:
		return "full"
	case ScopeRestricted:
		return "restricted"
	default:
		return "read_only"
	}
}

const (
	PermissionAdmin      = "admin"
	PermissionSupervisor = "supervisor"
)

// Caller is the acting user as seen by the resolver.
type Caller struct {
	UserID      uuid.UUID
	Permissions []string
}

func (c Caller) HasPermission(p string) bool {
	p = strings.ToLower(strings.TrimSpace(p))
	for _, have := range c.Permissions {
		if strings.ToLower(strings.TrimSpace(have)) == p {
			return true
		}
	}
	return false
}

// Privileged reports admin or supervisor.
func (c Caller) Privileged() bool {
	return c.HasPermission(PermissionAdmin) || c.HasPermission(PermissionSupervisor)
}

// restrictedWritable is the complete field set an assigned user may change.
var restrictedWritable = map[string]struct{}{
	FieldObservations:                     {},
	FieldStage:                            {},
	FieldAssignedTeam:                     {},
	FieldAssignedUserID:                   {},
	FieldProductionInfoProductionDetails:  {},
	FieldProductionInfoAdditionalComments: {},
}

// ResolveScope computes the caller's scope on req. It has no side effects and must be
// called against the current row on every write.
func ResolveScope(caller Caller, req *ProductionRequest) Scope {
	if caller.Privileged() {
		return ScopeFull
	}
	if req != nil && caller.UserID != uuid.Nil && req.AssignedUserID != nil && *req.AssignedUserID == caller.UserID {
		return ScopeRestricted
	}
	return ScopeReadOnly
}

// CanWrite reports whether field may be changed under s.
func (s Scope) CanWrite(field string) bool {
	switch s {
	case ScopeFull:
		return true
	case ScopeRestricted:
		_, ok := restrictedWritable[field]
		return ok
	default:
		return false
	}
}

// Violations returns the fields s may not write, in input order.
func (s Scope) Violations(fields []string) []string {
	var out []string
	for _, f := range fields {
		if !s.CanWrite(f) {
			out = append(out, f)
		}
	}
	return out
}

// CheckFields rejects the whole change set if any field is outside s.
func (s Scope) CheckFields(fields []string) error {
	if v := s.Violations(fields); len(v) > 0 {
		return &ScopeViolationError{Scope: s, Fields: v}
	}
	return nil
}

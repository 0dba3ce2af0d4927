package production

import (
	"sort"
	"strings"

	"github.com/wI2L/jsondiff"
)

// FieldChange is one differing field between two snapshots. An empty value means absent.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// Diff compares two snapshots and returns the changed fields ordered by path.
func Diff(before, after map[string]string) ([]FieldChange, error) {
	if before == nil {
		before = map[string]string{}
	}
	if after == nil {
		after = map[string]string{}
	}
	patch, err := jsondiff.Compare(before, after)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var fields []string
	for _, op := range patch {
		field := decodePointer(op.Path)
		if field == "" {
			// whole-document replace; fall back to the key union
			fields = unionKeys(before, after)
			break
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}

	out := make([]FieldChange, 0, len(fields))
	for _, f := range fields {
		oldV, newV := before[f], after[f]
		if oldV == newV {
			continue
		}
		out = append(out, FieldChange{Field: f, OldValue: oldV, NewValue: newV})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, nil
}

// ChangedFields lists the paths in changes.
func ChangedFields(changes []FieldChange) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Field)
	}
	return out
}

// HasField reports whether field is among changes.
func HasField(changes []FieldChange, field string) bool {
	for _, c := range changes {
		if c.Field == field {
			return true
		}
	}
	return false
}

func decodePointer(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	if i := strings.Index(p, "/"); i >= 0 {
		p = p[:i]
	}
	p = strings.ReplaceAll(p, "~1", "/")
	return strings.ReplaceAll(p, "~0", "~")
}

func unionKeys(a, b map[string]string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		set[k] = struct{}{}
	}
	for k := range b {
		set[k] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

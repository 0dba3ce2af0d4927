package production

import (
	"fmt"
	"strings"
	"time"
)

// UploadedFile is one element of a request's files list. ID is the blob storage path.
type UploadedFile struct {
	ID         string    `json:"id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Size       int64     `json:"size" validate:"gte=0"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadDate time.Time `json:"uploadDate"`
}

// Reconcile appends incoming to existing, skipping entries whose id is already present.
// The existing list is never replaced or reordered.
func Reconcile(existing, incoming []UploadedFile) []UploadedFile {
	out := make([]UploadedFile, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, f := range existing {
		out = append(out, f)
		seen[f.ID] = struct{}{}
	}
	for _, f := range incoming {
		id := strings.TrimSpace(f.ID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		f.ID = id
		seen[id] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Remove drops exactly one entry with fileID and returns it.
func Remove(existing []UploadedFile, fileID string) ([]UploadedFile, UploadedFile, error) {
	fileID = strings.TrimSpace(fileID)
	for i, f := range existing {
		if f.ID != fileID {
			continue
		}
		out := make([]UploadedFile, 0, len(existing)-1)
		out = append(out, existing[:i]...)
		out = append(out, existing[i+1:]...)
		return out, f, nil
	}
	return existing, UploadedFile{}, fmt.Errorf("%w: %q", ErrFileNotLinked, fileID)
}

// FileIDs lists ids in order.
func FileIDs(files []UploadedFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.ID)
	}
	return out
}

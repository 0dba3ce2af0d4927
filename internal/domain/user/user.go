package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User is read-only to this service. Permissions carry flags such as "admin" and "supervisor".
type User struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string                      `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FirstName   string                      `gorm:"not null;column:first_name" json:"firstName"`
	LastName    string                      `gorm:"not null;column:last_name" json:"lastName"`
	Permissions datatypes.JSONSlice[string] `gorm:"column:permissions" json:"permissions"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "user" }

// PermissionList returns the normalized permission flags.
func (u *User) PermissionList() []string {
	if u == nil {
		return nil
	}
	out := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

package catalog

import (
	"fmt"
	"strings"
)

// Kind names one reference table.
type Kind string

const (
	KindObjectives          Kind = "objectives"
	KindGenders             Kind = "genders"
	KindAgeRanges           Kind = "age-ranges"
	KindSocioeconomicLevels Kind = "socioeconomic-levels"
	KindFormatTypes         Kind = "format-types"
	KindRightsDurations     Kind = "rights-durations"
	KindProducts            Kind = "products"
	KindTeams               Kind = "teams"
)

var kindTables = map[Kind]string{
	KindObjectives:          "objectives",
	KindGenders:             "genders",
	KindAgeRanges:           "age_ranges",
	KindSocioeconomicLevels: "socioeconomic_levels",
	KindFormatTypes:         "format_types",
	KindRightsDurations:     "rights_durations",
	KindProducts:            "products",
	KindTeams:               "teams",
}

// Kinds returns every kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindObjectives,
		KindGenders,
		KindAgeRanges,
		KindSocioeconomicLevels,
		KindFormatTypes,
		KindRightsDurations,
		KindProducts,
		KindTeams,
	}
}

// ErrUnknownKind is returned for a kind outside the fixed set.
var ErrUnknownKind = fmt.Errorf("unknown catalog kind")

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if k == "audience/genders" || k == "audience/age-ranges" || k == "audience/socioeconomic-levels" {
		k = Kind(strings.TrimPrefix(string(k), "audience/"))
	}
	if _, ok := kindTables[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return k, nil
}

// Table is the backing table name, or "" for an unknown kind.
func (k Kind) Table() string { return kindTables[k] }

func (k Kind) Valid() bool { return k.Table() != "" }

// Entry is one catalog row. All catalog tables share this shape.
type Entry struct {
	ID        int    `gorm:"primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Name      string `gorm:"column:name;not null" json:"name" yaml:"name"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0" json:"sortOrder" yaml:"sortOrder"`
}

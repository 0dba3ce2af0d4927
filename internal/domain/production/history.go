package production

import (
	"time"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeDelete ChangeType = "delete"
)

// ProductionRequestHistory is an append-only audit row: one per changed field per save.
// Rows outlive the request they describe.
type ProductionRequestHistory struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProductionRequestID uuid.UUID  `gorm:"type:uuid;column:production_request_id;not null;index:idx_prh_request_created,priority:1" json:"productionRequestId"`
	ChangeField         string     `gorm:"column:change_field;not null" json:"changeField"`
	OldValue            string     `gorm:"column:old_value;type:text" json:"oldValue"`
	NewValue            string     `gorm:"column:new_value;type:text" json:"newValue"`
	ChangedBy           uuid.UUID  `gorm:"type:uuid;column:changed_by;not null" json:"changedBy"`
	ChangeType          ChangeType `gorm:"column:change_type;not null;size:16" json:"changeType"`
	CreatedAt           time.Time  `gorm:"column:created_at;not null;index:idx_prh_request_created,priority:2" json:"createdAt"`
}

func (ProductionRequestHistory) TableName() string { return "production_request_history" }

// HistoryRows turns a change set into audit rows stamped with one shared timestamp.
func HistoryRows(requestID, actor uuid.UUID, changeType ChangeType, changes []FieldChange, at time.Time) []*ProductionRequestHistory {
	if len(changes) == 0 {
		return nil
	}
	at = at.UTC()
	out := make([]*ProductionRequestHistory, 0, len(changes))
	for _, ch := range changes {
		out = append(out, &ProductionRequestHistory{
			ID:                  uuid.New(),
			ProductionRequestID: requestID,
			ChangeField:         ch.Field,
			OldValue:            ch.OldValue,
			NewValue:            ch.NewValue,
			ChangedBy:           actor,
			ChangeType:          changeType,
			CreatedAt:           at,
		})
	}
	return out
}

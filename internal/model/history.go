package model

import "time"

// HistoryEvent is one change-history record for an account.
type HistoryEvent struct {
	EventDate time.Time `json:"event_date"`
	EventType string    `json:"event_type,omitempty"`
	FieldName string    `json:"field_name,omitempty"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
}

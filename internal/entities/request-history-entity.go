package entities

import "time"

type HistoryEventType string

const (
	HistoryCreate            HistoryEventType = "CREATE"
	HistoryStageChange       HistoryEventType = "STAGE_CHANGE"
	HistoryTechnicianChange  HistoryEventType = "TECHNICIAN_CHANGE"
	HistoryTeamChange        HistoryEventType = "TEAM_CHANGE"
	HistoryDurationChange    HistoryEventType = "DURATION_CHANGE"
	HistoryScheduleChange    HistoryEventType = "SCHEDULE_CHANGE"
	HistoryPriorityChange    HistoryEventType = "PRIORITY_CHANGE"
	HistorySubjectChange     HistoryEventType = "SUBJECT_CHANGE"
	HistoryEquipmentScrapped HistoryEventType = "EQUIPMENT_SCRAPPED"
	HistoryEquipmentRestored HistoryEventType = "EQUIPMENT_RESTORED"
)

type RequestHistory struct {
	ID        string           `json:"id" db:"id"`
	RequestID string           `json:"request_id" db:"request_id"`
	EventType HistoryEventType `json:"event_type" db:"event_type"`
	OldValue  *string          `json:"old_value" db:"old_value"`
	NewValue  *string          `json:"new_value" db:"new_value"`
	Comment   *string          `json:"comment" db:"comment"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

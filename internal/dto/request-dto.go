package dto

import (
	"github.com/aarondl/null/v8"

	"gearguard/internal/entities"
)

type CreateRequestDTO struct {
	Subject       string       `json:"subject" validate:"required,max=255"`
	Type          string       `json:"type" validate:"required,request_type"`
	EquipmentID   null.String  `json:"equipment_id" validate:"omitempty,max=64"`
	WorkCenterID  null.String  `json:"work_center_id" validate:"omitempty,max=64"`
	TeamID        null.String  `json:"team_id" validate:"omitempty,max=64"`
	TechnicianID  null.String  `json:"technician_id" validate:"omitempty,max=64"`
	ScheduledDate null.Time    `json:"scheduled_date"`
	Duration      null.Float64 `json:"duration" validate:"omitempty,gte=0"`
	Priority      string       `json:"priority" validate:"omitempty,priority"`
	Notes         string       `json:"notes" validate:"max=5000"`
	Instructions  string       `json:"instructions" validate:"max=5000"`
}

// UpdateRequestDTO - частичное обновление. Отсутствующее поле не меняется,
// для обнуления необязательных полей есть флаги clear_*.
type UpdateRequestDTO struct {
	Subject       null.String  `json:"subject" validate:"omitempty,max=255"`
	Stage         null.String  `json:"stage" validate:"omitempty,stage"`
	TeamID        null.String  `json:"team_id" validate:"omitempty,max=64"`
	TechnicianID  null.String  `json:"technician_id" validate:"omitempty,max=64"`
	ScheduledDate null.Time    `json:"scheduled_date"`
	Duration      null.Float64 `json:"duration" validate:"omitempty,gte=0"`
	Priority      null.String  `json:"priority" validate:"omitempty,priority"`
	Notes         null.String  `json:"notes" validate:"omitempty,max=5000"`
	Instructions  null.String  `json:"instructions" validate:"omitempty,max=5000"`

	ClearTechnician    bool `json:"clear_technician"`
	ClearScheduledDate bool `json:"clear_scheduled_date"`
	ClearDuration      bool `json:"clear_duration"`
}

type TransitionStageDTO struct {
	Stage string `json:"stage" validate:"required,stage"`
}

// RequestDTO - заявка с вычисляемым признаком просрочки.
type RequestDTO struct {
	entities.MaintenanceRequest
	IsOverdue bool `json:"is_overdue"`
}

type RequestListFilterDTO struct {
	Stage       string `query:"stage" validate:"omitempty,stage"`
	Type        string `query:"type" validate:"omitempty,request_type"`
	TeamID      string `query:"team_id"`
	EquipmentID string `query:"equipment_id"`
}

type BoardColumnDTO struct {
	Stage    entities.Stage `json:"stage"`
	Count    int            `json:"count"`
	Requests []RequestDTO   `json:"requests"`
}

type RequestHistoryDTO struct {
	List []*entities.RequestHistory `json:"list"`
}

package entities

import (
	"time"

	"gearguard/pkg/types"
)

type MaintenanceRequest struct {
	ID            string      `json:"id" db:"id"`
	Subject       string      `json:"subject" db:"subject"`
	Type          RequestType `json:"type" db:"type"`
	Stage         Stage       `json:"stage" db:"stage"`
	EquipmentID   *string     `json:"equipment_id" db:"equipment_id"`
	WorkCenterID  *string     `json:"work_center_id" db:"work_center_id"`
	TeamID        *string     `json:"team_id" db:"team_id"`
	TechnicianID  *string     `json:"technician_id" db:"technician_id"`
	ScheduledDate *time.Time  `json:"scheduled_date" db:"scheduled_date"`
	Duration      *float64    `json:"duration" db:"duration"`
	Priority      Priority    `json:"priority" db:"priority"`
	Notes         string      `json:"notes" db:"notes"`
	Instructions  string      `json:"instructions" db:"instructions"`

	types.BaseEntity
}

// IsOverdue вычисляется при чтении и нигде не хранится.
func (r *MaintenanceRequest) IsOverdue(now time.Time) bool {
	return r.Stage.IsOpen() && r.ScheduledDate != nil && r.ScheduledDate.Before(now)
}

// RequestFilter - точное совпадение по заданным полям, nil игнорируется.
type RequestFilter struct {
	Stage       *Stage
	Type        *RequestType
	TeamID      *string
	EquipmentID *string
}

func (f RequestFilter) Matches(r *MaintenanceRequest) bool {
	if f.Stage != nil && r.Stage != *f.Stage {
		return false
	}
	if f.Type != nil && r.Type != *f.Type {
		return false
	}
	if f.TeamID != nil && (r.TeamID == nil || *r.TeamID != *f.TeamID) {
		return false
	}
	if f.EquipmentID != nil && (r.EquipmentID == nil || *r.EquipmentID != *f.EquipmentID) {
		return false
	}
	return true
}

// RequestPatch - частичное обновление заявки. nil - поле не меняется,
// Clear* - явно обнулить необязательное поле.
// EquipmentID и WorkCenterID здесь отсутствуют: после создания они не меняются.
type RequestPatch struct {
	Subject       *string
	Stage         *Stage
	TeamID        *string
	TechnicianID  *string
	ScheduledDate *time.Time
	Duration      *float64
	Priority      *Priority
	Notes         *string
	Instructions  *string

	ClearTechnician    bool
	ClearScheduledDate bool
	ClearDuration      bool
}

func (p RequestPatch) IsEmpty() bool {
	return p.Subject == nil && p.Stage == nil && p.TeamID == nil && p.TechnicianID == nil &&
		p.ScheduledDate == nil && p.Duration == nil && p.Priority == nil && p.Notes == nil &&
		p.Instructions == nil && !p.ClearTechnician && !p.ClearScheduledDate && !p.ClearDuration
}

// Apply сливает patch в копию заявки.
func (p RequestPatch) Apply(r MaintenanceRequest) MaintenanceRequest {
	if p.Subject != nil {
		r.Subject = *p.Subject
	}
	if p.Stage != nil {
		r.Stage = *p.Stage
	}
	if p.TeamID != nil {
		r.TeamID = p.TeamID
	}
	if p.TechnicianID != nil {
		r.TechnicianID = p.TechnicianID
	}
	if p.ClearTechnician {
		r.TechnicianID = nil
	}
	if p.ScheduledDate != nil {
		r.ScheduledDate = p.ScheduledDate
	}
	if p.ClearScheduledDate {
		r.ScheduledDate = nil
	}
	if p.Duration != nil {
		r.Duration = p.Duration
	}
	if p.ClearDuration {
		r.Duration = nil
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.Instructions != nil {
		r.Instructions = *p.Instructions
	}
	return r
}

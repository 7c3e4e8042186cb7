package entities

import "gearguard/pkg/types"

type MaintenanceTeam struct {
	ID          string        `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Company     string        `json:"company" db:"company"`
	Technicians []*Technician `json:"technicians" db:"-"`

	types.BaseEntity
}

type Technician struct {
	ID     string `json:"id" db:"id"`
	TeamID string `json:"team_id" db:"team_id"`
	Name   string `json:"name" db:"name"`
	Role   string `json:"role" db:"role"`
	Avatar string `json:"avatar" db:"avatar"`

	types.BaseEntity
}

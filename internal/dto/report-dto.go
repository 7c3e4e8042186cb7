package dto

import "gearguard/internal/entities"

type TechnicianWorkloadDTO struct {
	TechnicianID string `json:"technician_id,omitempty"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
	Overdue      int    `json:"overdue"`
}

type VolumeTrendDTO struct {
	Month      string `json:"month"`
	Corrective int    `json:"corrective"`
	Preventive int    `json:"preventive"`
}

type EquipmentBreakdownDTO struct {
	EquipmentID string `json:"equipment_id"`
	Name        string `json:"name"`
	Count       int    `json:"count"`
}

type TypeImpactDTO struct {
	Corrective int `json:"corrective"`
	Preventive int `json:"preventive"`
}

type RequestAgingDTO struct {
	Stage   entities.Stage `json:"stage"`
	Count   int            `json:"count"`
	Overdue int            `json:"overdue"`
}

type TeamProductivityDTO struct {
	TeamID          string  `json:"team_id"`
	Name            string  `json:"name"`
	Requests        int     `json:"requests"`
	AverageDuration float64 `json:"avg_duration"`
}

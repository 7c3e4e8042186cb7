package dto

type CreateTeamDTO struct {
	Name    string `json:"name" validate:"required,max=255"`
	Company string `json:"company" validate:"max=255"`
}

type CreateTechnicianDTO struct {
	Name   string `json:"name" validate:"required,max=255"`
	Role   string `json:"role" validate:"max=128"`
	Avatar string `json:"avatar" validate:"max=1024"`
}

type CreateWorkCenterDTO struct {
	Name               string  `json:"name" validate:"required,max=255"`
	Code               string  `json:"code" validate:"max=64"`
	Tag                string  `json:"tag" validate:"max=64"`
	Location           string  `json:"location" validate:"max=255"`
	Description        string  `json:"description" validate:"max=5000"`
	CostPerHour        float64 `json:"cost_per_hour" validate:"gte=0"`
	CapacityEfficiency float64 `json:"capacity_efficiency" validate:"gte=0"`
	OEETarget          float64 `json:"oee_target" validate:"gte=0,lte=100"`
}

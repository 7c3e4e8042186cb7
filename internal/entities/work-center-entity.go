package entities

import "gearguard/pkg/types"

type WorkCenter struct {
	ID                 string  `json:"id" db:"id"`
	Name               string  `json:"name" db:"name"`
	Code               string  `json:"code" db:"code"`
	Tag                string  `json:"tag" db:"tag"`
	Location           string  `json:"location" db:"location"`
	Description        string  `json:"description" db:"description"`
	CostPerHour        float64 `json:"cost_per_hour" db:"cost_per_hour"`
	CapacityEfficiency float64 `json:"capacity_efficiency" db:"capacity_efficiency"`
	OEETarget          float64 `json:"oee_target" db:"oee_target"`

	types.BaseEntity
}

package dto

import (
	"github.com/aarondl/null/v8"

	"gearguard/internal/entities"
)

type CreateEquipmentDTO struct {
	Name         string    `json:"name" validate:"required,max=255"`
	SerialNumber string    `json:"serial_number" validate:"required,max=128"`
	Category     string    `json:"category" validate:"max=128"`
	Company      string    `json:"company" validate:"max=255"`
	Department   string    `json:"department" validate:"max=255"`
	Location     string    `json:"location" validate:"max=255"`
	Owner        string    `json:"owner" validate:"max=255"`
	PurchaseDate null.Time `json:"purchase_date"`
	WarrantyInfo string    `json:"warranty_info" validate:"max=1000"`
	Description  string    `json:"description" validate:"max=5000"`
}

type ScrapEquipmentDTO struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// EquipmentDTO - карточка оборудования со счетчиком открытых заявок.
type EquipmentDTO struct {
	entities.Equipment
	OpenRequests int `json:"open_requests"`
}

type ImportRowErrorDTO struct {
	Line         int    `json:"line"`
	SerialNumber string `json:"serial_number"`
	Message      string `json:"message"`
}

// EquipmentImportResultDTO: Skipped - строки с уже существующим серийным номером.
type EquipmentImportResultDTO struct {
	Created int                 `json:"created"`
	Skipped int                 `json:"skipped"`
	Failed  []ImportRowErrorDTO `json:"failed"`
}

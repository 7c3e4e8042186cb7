package events

import (
	"gearguard/internal/entities"
	"gearguard/pkg/constants"
)

// RequestCreatedEvent - новая заявка сохранена.
type RequestCreatedEvent struct {
	Request entities.MaintenanceRequest
}

func (e RequestCreatedEvent) Name() string { return constants.EventRequestCreated }

// RequestStageChangedEvent публикуется после коммита перехода.
type RequestStageChangedEvent struct {
	Request entities.MaintenanceRequest
	From    entities.Stage
	To      entities.Stage
}

func (e RequestStageChangedEvent) Name() string { return constants.EventRequestStageChanged }

// EquipmentScrappedEvent - оборудование списано вручную или по исчерпанию заявок.
// RequestID пустой для ручного списания.
type EquipmentScrappedEvent struct {
	Equipment entities.Equipment
	RequestID string
}

func (e EquipmentScrappedEvent) Name() string { return constants.EventEquipmentScrapped }

type EquipmentRestoredEvent struct {
	Equipment      entities.Equipment
	PreviousOrigin entities.ScrapOrigin
	RequestID      string
}

func (e EquipmentRestoredEvent) Name() string { return constants.EventEquipmentRestored }

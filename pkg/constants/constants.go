// pkg/constants/constants.go
package constants

import "fmt"

//============== LOCK KEYS ==============

// Ключи блокировок. Формат: equipment:<id> / request:<id>
const (
	LockKeyEquipment = "equipment:%s"
	LockKeyRequest   = "request:%s"

	// Префикс ключей в Redis
	RedisLockPrefix = "gearguard:lock:"
)

func EquipmentLockKey(equipmentID string) string {
	return fmt.Sprintf(LockKeyEquipment, equipmentID)
}

func RequestLockKey(requestID string) string {
	return fmt.Sprintf(LockKeyRequest, requestID)
}

//============== SCRAP ==============

// Причина списания, выставляемая движком переходов. %s - тема заявки.
const WorkflowScrapReasonFormat = "Списано по заявке: %s"

//============== EVENT NAMES ==============

const (
	EventRequestCreated      = "request.created"
	EventRequestStageChanged = "request.stage.changed"
	EventEquipmentScrapped   = "equipment.scrapped"
	EventEquipmentRestored   = "equipment.restored"
)

//============== REPORTS ==============

const (
	ReportUnassignedTechnician = "Не назначен"
	ReportTopBreakdownsLimit   = 5
)

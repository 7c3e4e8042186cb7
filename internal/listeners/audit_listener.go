package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gearguard/internal/events"
	"gearguard/pkg/constants"
	"gearguard/pkg/eventbus"
)

// AuditListener пишет в журнал все события workflow.
type AuditListener struct {
	logger *zap.Logger
}

func NewAuditListener(logger *zap.Logger) *AuditListener {
	return &AuditListener{logger: logger.Named("audit")}
}

func (l *AuditListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(constants.EventRequestCreated, l.handle)
	bus.Subscribe(constants.EventRequestStageChanged, l.handle)
	bus.Subscribe(constants.EventEquipmentScrapped, l.handle)
	bus.Subscribe(constants.EventEquipmentRestored, l.handle)
	l.logger.Info("AuditListener подписан на события workflow")
}

func (l *AuditListener) handle(_ context.Context, event eventbus.Event) error {
	switch e := event.(type) {
	case events.RequestCreatedEvent:
		l.logger.Info("Создана заявка",
			zap.String("event", e.Name()),
			zap.String("request_id", e.Request.ID),
			zap.String("subject", e.Request.Subject),
			zap.Stringp("equipment_id", e.Request.EquipmentID),
		)
	case events.RequestStageChangedEvent:
		l.logger.Info("Смена этапа заявки",
			zap.String("event", e.Name()),
			zap.String("request_id", e.Request.ID),
			zap.String("from", string(e.From)),
			zap.String("to", string(e.To)),
		)
	case events.EquipmentScrappedEvent:
		l.logger.Info("Оборудование списано",
			zap.String("event", e.Name()),
			zap.String("equipment_id", e.Equipment.ID),
			zap.String("origin", string(e.Equipment.ScrapOrigin)),
			zap.Stringp("reason", e.Equipment.ScrapReason),
			zap.String("request_id", e.RequestID),
		)
	case events.EquipmentRestoredEvent:
		l.logger.Info("Списание оборудования снято",
			zap.String("event", e.Name()),
			zap.String("equipment_id", e.Equipment.ID),
			zap.String("previous_origin", string(e.PreviousOrigin)),
			zap.String("request_id", e.RequestID),
		)
	default:
		return fmt.Errorf("неизвестное событие %T", event)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/metrics"
	"gearguard/pkg/utils"
)

type StageTransitionServiceInterface interface {
	// TransitionStage переводит заявку на новый этап и приводит состояние
	// списания оборудования в соответствие со всеми его заявками.
	TransitionStage(ctx context.Context, requestID string, stage entities.Stage) (*entities.MaintenanceRequest, error)
	// ReconcileEquipment пересчитывает правило списания без смены этапа.
	ReconcileEquipment(ctx context.Context, equipmentID string) (*entities.Equipment, error)
	// ReconcileLocked - то же правило для вызывающего, который уже держит блокировку
	// оборудования. Внутри открытой транзакции присоединяется к ней. Возвращаемую
	// функцию нужно вызвать после коммита внешней транзакции.
	ReconcileLocked(ctx context.Context, equipmentID string) (*entities.Equipment, func(context.Context), error)
}

type StageTransitionService struct {
	txManager     repositories.TxManagerInterface
	requestRepo   repositories.RequestRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	lockRepo      repositories.LockRepositoryInterface
	history       historyRecorder
	bus           *eventbus.Bus
	logger        *zap.Logger
	now           Clock
}

func NewStageTransitionService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	historyRepo repositories.RequestHistoryRepositoryInterface,
	lockRepo repositories.LockRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *StageTransitionService {
	return &StageTransitionService{
		txManager:     txManager,
		requestRepo:   requestRepo,
		equipmentRepo: equipmentRepo,
		lockRepo:      lockRepo,
		history:       historyRecorder{repo: historyRepo, now: systemClock},
		bus:           bus,
		logger:        logger,
		now:           systemClock,
	}
}

// WithClock подменяет часы (дата списания, время записей истории).
func (s *StageTransitionService) WithClock(now Clock) *StageTransitionService {
	s.now = now
	s.history.now = now
	return s
}

// scrapChange - изменение состояния списания, сделанное правилом.
type scrapChange struct {
	equipment      entities.Equipment
	scrapped       bool
	previousOrigin entities.ScrapOrigin
}

type transitionOutcome struct {
	request *entities.MaintenanceRequest
	from    entities.Stage
	noop    bool
	change  *scrapChange
}

func lockKeyFor(req *entities.MaintenanceRequest) string {
	if req.EquipmentID != nil {
		return constants.EquipmentLockKey(*req.EquipmentID)
	}
	return constants.RequestLockKey(req.ID)
}

func (s *StageTransitionService) TransitionStage(ctx context.Context, requestID string, stage entities.Stage) (result *entities.MaintenanceRequest, err error) {
	started := time.Now()
	outcomeLabel := metrics.ResultError
	defer func() {
		metrics.ObserveTransition(string(stage), outcomeLabel, started)
	}()

	if !stage.Valid() {
		return nil, apperrors.NewValidationError("stage", "неизвестный этап %q", stage)
	}

	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Stage == stage {
		outcomeLabel = metrics.ResultNoop
		return req, nil
	}

	// equipment_id не меняется после создания, поэтому ключ стабилен
	unlock, err := acquireLock(ctx, s.lockRepo, lockKeyFor(req))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var outcome transitionOutcome
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.requestRepo.FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		// пока ждали блокировку, заявку могли уже перевести
		if current.Stage == stage {
			outcome = transitionOutcome{request: current, noop: true}
			return nil
		}

		var equipment *entities.Equipment
		if current.EquipmentID != nil {
			equipment, err = s.equipmentRepo.FindForUpdate(ctx, *current.EquipmentID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return &apperrors.InconsistentStateError{EquipmentID: *current.EquipmentID, Err: err}
				}
				return err
			}
		}

		updated, err := s.requestRepo.Update(ctx, requestID, entities.RequestPatch{Stage: &stage})
		if err != nil {
			return err
		}
		oldStage, newStage := string(current.Stage), string(stage)
		if err := s.history.record(ctx, requestID, entities.HistoryStageChange, &oldStage, &newStage, nil); err != nil {
			return err
		}
		outcome = transitionOutcome{request: updated, from: current.Stage}

		if equipment == nil {
			return nil
		}
		change, err := s.applyScrapRule(ctx, equipment, updated.Subject, requestID)
		if err != nil {
			return err
		}
		outcome.change = change
		return nil
	})
	if err != nil {
		s.logger.Warn("Переход заявки отклонен",
			zap.String("request_id", requestID),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		return nil, err
	}

	if outcome.noop {
		outcomeLabel = metrics.ResultNoop
		return outcome.request, nil
	}
	outcomeLabel = metrics.ResultApplied

	s.logger.Info("Этап заявки изменен",
		zap.String("request_id", requestID),
		zap.String("from", string(outcome.from)),
		zap.String("to", string(stage)),
	)
	publish(ctx, s.bus, events.RequestStageChangedEvent{Request: *outcome.request, From: outcome.from, To: stage})
	s.afterScrapChange(ctx, outcome.change, requestID)

	return outcome.request, nil
}

func (s *StageTransitionService) ReconcileEquipment(ctx context.Context, equipmentID string) (*entities.Equipment, error) {
	if _, err := s.equipmentRepo.FindByID(ctx, equipmentID); err != nil {
		return nil, err
	}

	unlock, err := acquireLock(ctx, s.lockRepo, constants.EquipmentLockKey(equipmentID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	result, after, err := s.reconcile(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	after(ctx)
	return result, nil
}

func (s *StageTransitionService) ReconcileLocked(ctx context.Context, equipmentID string) (*entities.Equipment, func(context.Context), error) {
	return s.reconcile(ctx, equipmentID)
}

func (s *StageTransitionService) reconcile(ctx context.Context, equipmentID string) (*entities.Equipment, func(context.Context), error) {
	var result *entities.Equipment
	var change *scrapChange
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		equipment, err := s.equipmentRepo.FindForUpdate(ctx, equipmentID)
		if err != nil {
			return err
		}
		change, err = s.applyScrapRule(ctx, equipment, "", "")
		if err != nil {
			return err
		}
		result = equipment
		if change != nil {
			result = &change.equipment
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return result, func(ctx context.Context) {
		if change != nil {
			s.logger.Info("Состояние списания пересчитано",
				zap.String("equipment_id", equipmentID),
				zap.Bool("is_scrapped", change.scrapped),
			)
		}
		s.afterScrapChange(ctx, change, "")
	}, nil
}

// applyScrapRule: оборудование списано по исчерпанию тогда и только тогда, когда у него
// есть заявки и все они в Scrap. Ручное списание правило не трогает.
// triggerID пустой при пересчете без перехода.
func (s *StageTransitionService) applyScrapRule(ctx context.Context, equipment *entities.Equipment, subject, triggerID string) (*scrapChange, error) {
	linked, err := s.requestRepo.List(ctx, entities.RequestFilter{EquipmentID: &equipment.ID})
	if err != nil {
		return nil, err
	}

	allScrap := len(linked) > 0
	for _, r := range linked {
		if r.Stage != entities.StageScrap {
			allScrap = false
			break
		}
	}

	switch {
	case allScrap && !equipment.IsScrapped:
		if subject == "" {
			subject = linked[len(linked)-1].Subject
		}
		reason := fmt.Sprintf(constants.WorkflowScrapReasonFormat, subject)
		updated, err := s.equipmentRepo.SetScrapState(ctx, equipment.ID, entities.Scrapped(s.now(), reason, entities.ScrapOriginWorkflow))
		if err != nil {
			return nil, scrapWriteError(equipment.ID, err)
		}
		if triggerID != "" {
			if err := s.history.record(ctx, triggerID, entities.HistoryEquipmentScrapped, nil, utils.ToPtr(equipment.ID), &reason); err != nil {
				return nil, err
			}
		}
		return &scrapChange{equipment: *updated, scrapped: true}, nil

	case !allScrap && equipment.IsScrapped && equipment.ScrapOrigin == entities.ScrapOriginWorkflow:
		updated, err := s.equipmentRepo.SetScrapState(ctx, equipment.ID, entities.NotScrapped())
		if err != nil {
			return nil, scrapWriteError(equipment.ID, err)
		}
		if triggerID != "" {
			if err := s.history.record(ctx, triggerID, entities.HistoryEquipmentRestored, utils.ToPtr(equipment.ID), nil, nil); err != nil {
				return nil, err
			}
		}
		return &scrapChange{equipment: *updated, scrapped: false, previousOrigin: equipment.ScrapOrigin}, nil
	}

	return nil, nil
}

func scrapWriteError(equipmentID string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return &apperrors.InconsistentStateError{EquipmentID: equipmentID, Err: err}
	}
	return err
}

func (s *StageTransitionService) afterScrapChange(ctx context.Context, change *scrapChange, requestID string) {
	if change == nil {
		return
	}
	if change.scrapped {
		metrics.EquipmentScrapped(string(entities.ScrapOriginWorkflow))
		s.logger.Info("Оборудование списано: все заявки в Scrap", zap.String("equipment_id", change.equipment.ID))
		publish(ctx, s.bus, events.EquipmentScrappedEvent{Equipment: change.equipment, RequestID: requestID})
		return
	}
	metrics.EquipmentRestored(string(change.previousOrigin))
	s.logger.Info("Списание оборудования снято: заявка выведена из Scrap", zap.String("equipment_id", change.equipment.ID))
	publish(ctx, s.bus, events.EquipmentRestoredEvent{Equipment: change.equipment, PreviousOrigin: change.previousOrigin, RequestID: requestID})
}

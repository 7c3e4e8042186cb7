package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/metrics"
)

type EquipmentServiceInterface interface {
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error)
	ListEquipment(ctx context.Context) ([]*entities.Equipment, error)
	GetEquipment(ctx context.Context, id string) (*dto.EquipmentDTO, error)
	ListEquipmentRequests(ctx context.Context, id string) ([]dto.RequestDTO, error)
	ScrapEquipmentManually(ctx context.Context, id, reason string) (*entities.Equipment, error)
	RestoreEquipment(ctx context.Context, id string) (*entities.Equipment, error)
	ReconcileEquipment(ctx context.Context, id string) (*entities.Equipment, error)
}

type EquipmentService struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	requestRepo   repositories.RequestRepositoryInterface
	lockRepo      repositories.LockRepositoryInterface
	engine        StageTransitionServiceInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
	now           Clock
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	lockRepo repositories.LockRepositoryInterface,
	engine StageTransitionServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		requestRepo:   requestRepo,
		lockRepo:      lockRepo,
		engine:        engine,
		bus:           bus,
		logger:        logger,
		now:           systemClock,
	}
}

func (s *EquipmentService) WithClock(now Clock) *EquipmentService {
	s.now = now
	return s
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	name := strings.TrimSpace(payload.Name)
	serial := strings.TrimSpace(payload.SerialNumber)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "название оборудования обязательно")
	}
	if serial == "" {
		return nil, apperrors.NewValidationError("serial_number", "серийный номер обязателен")
	}

	equipment := &entities.Equipment{
		ID:           newID(),
		Name:         name,
		SerialNumber: serial,
		Category:     strings.TrimSpace(payload.Category),
		Company:      strings.TrimSpace(payload.Company),
		Department:   strings.TrimSpace(payload.Department),
		Location:     strings.TrimSpace(payload.Location),
		Owner:        strings.TrimSpace(payload.Owner),
		PurchaseDate: payload.PurchaseDate.Ptr(),
		WarrantyInfo: payload.WarrantyInfo,
		Description:  payload.Description,
	}
	equipment.Touch(s.now())

	if err := s.equipmentRepo.Create(ctx, equipment); err != nil {
		s.logger.Error("Не удалось создать оборудование", zap.String("serial_number", serial), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Оборудование создано", zap.String("equipment_id", equipment.ID), zap.String("serial_number", serial))
	return equipment, nil
}

func (s *EquipmentService) ListEquipment(ctx context.Context) ([]*entities.Equipment, error) {
	return s.equipmentRepo.List(ctx)
}

func (s *EquipmentService) GetEquipment(ctx context.Context, id string) (*dto.EquipmentDTO, error) {
	equipment, err := s.equipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	open, err := s.requestRepo.CountOpenByEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.EquipmentDTO{Equipment: *equipment, OpenRequests: open}, nil
}

func (s *EquipmentService) ListEquipmentRequests(ctx context.Context, id string) ([]dto.RequestDTO, error) {
	if _, err := s.equipmentRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.requestRepo.List(ctx, entities.RequestFilter{EquipmentID: &id})
	if err != nil {
		return nil, err
	}
	return toRequestDTOs(list, s.now()), nil
}

// ScrapEquipmentManually списывает оборудование независимо от заявок.
// Повторное списание уже списанного оборудования ничего не меняет.
func (s *EquipmentService) ScrapEquipmentManually(ctx context.Context, id, reason string) (*entities.Equipment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("reason", "причина списания обязательна")
	}
	if _, err := s.equipmentRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	unlock, err := acquireLock(ctx, s.lockRepo, constants.EquipmentLockKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *entities.Equipment
	changed := false
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.equipmentRepo.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.IsScrapped {
			result = current
			return nil
		}
		result, err = s.equipmentRepo.SetScrapState(ctx, id, entities.Scrapped(s.now(), reason, entities.ScrapOriginManual))
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.EquipmentScrapped(string(entities.ScrapOriginManual))
		s.logger.Info("Оборудование списано вручную", zap.String("equipment_id", id), zap.String("reason", reason))
		publish(ctx, s.bus, events.EquipmentScrappedEvent{Equipment: *result})
	}
	return result, nil
}

// RestoreEquipment снимает только ручное списание. Списание по заявкам
// снимается выводом заявки из Scrap. После снятия правило заявок пересчитывается
// в той же транзакции.
func (s *EquipmentService) RestoreEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	if _, err := s.equipmentRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	unlock, err := acquireLock(ctx, s.lockRepo, constants.EquipmentLockKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result, restored *entities.Equipment
	var afterCommit func(context.Context)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.equipmentRepo.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !current.IsScrapped {
			result = current
			return nil
		}
		if current.ScrapOrigin != entities.ScrapOriginManual {
			return apperrors.NewValidationError("scrap_origin", "оборудование списано по заявкам: переведите заявку из Scrap")
		}
		restored, err = s.equipmentRepo.SetScrapState(ctx, id, entities.NotScrapped())
		if err != nil {
			return err
		}
		// если все заявки уже в Scrap, оборудование сразу списывается по правилу заявок
		result, afterCommit, err = s.engine.ReconcileLocked(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if restored != nil {
		metrics.EquipmentRestored(string(entities.ScrapOriginManual))
		s.logger.Info("Ручное списание оборудования снято", zap.String("equipment_id", id))
		publish(ctx, s.bus, events.EquipmentRestoredEvent{Equipment: *restored, PreviousOrigin: entities.ScrapOriginManual})
	}
	if afterCommit != nil {
		afterCommit(ctx)
	}
	return result, nil
}

func (s *EquipmentService) ReconcileEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	return s.engine.ReconcileEquipment(ctx, id)
}

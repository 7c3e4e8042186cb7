package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/metrics"
	"gearguard/pkg/utils"
)

type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, payload dto.CreateRequestDTO) (*dto.RequestDTO, error)
	GetRequest(ctx context.Context, id string) (*dto.RequestDTO, error)
	ListRequests(ctx context.Context, filter dto.RequestListFilterDTO) ([]dto.RequestDTO, error)
	UpdateRequestFields(ctx context.Context, id string, payload dto.UpdateRequestDTO) (*dto.RequestDTO, error)
	TransitionStage(ctx context.Context, id string, stage string) (*dto.RequestDTO, error)
	GetHistory(ctx context.Context, id string) ([]*entities.RequestHistory, error)
}

type RequestService struct {
	txManager      repositories.TxManagerInterface
	requestRepo    repositories.RequestRepositoryInterface
	equipmentRepo  repositories.EquipmentRepositoryInterface
	workCenterRepo repositories.WorkCenterRepositoryInterface
	teamRepo       repositories.TeamRepositoryInterface
	historyRepo    repositories.RequestHistoryRepositoryInterface
	lockRepo       repositories.LockRepositoryInterface
	directory      DirectoryServiceInterface
	engine         StageTransitionServiceInterface
	history        historyRecorder
	bus            *eventbus.Bus
	logger         *zap.Logger
	now            Clock
}

func NewRequestService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	workCenterRepo repositories.WorkCenterRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	historyRepo repositories.RequestHistoryRepositoryInterface,
	lockRepo repositories.LockRepositoryInterface,
	directory DirectoryServiceInterface,
	engine StageTransitionServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		txManager:      txManager,
		requestRepo:    requestRepo,
		equipmentRepo:  equipmentRepo,
		workCenterRepo: workCenterRepo,
		teamRepo:       teamRepo,
		historyRepo:    historyRepo,
		lockRepo:       lockRepo,
		directory:      directory,
		engine:         engine,
		history:        historyRecorder{repo: historyRepo, now: systemClock},
		bus:            bus,
		logger:         logger,
		now:            systemClock,
	}
}

func (s *RequestService) WithClock(now Clock) *RequestService {
	s.now = now
	s.history.now = now
	return s
}

func toRequestDTO(r *entities.MaintenanceRequest, now time.Time) dto.RequestDTO {
	return dto.RequestDTO{MaintenanceRequest: *r, IsOverdue: r.IsOverdue(now)}
}

func toRequestDTOs(list []*entities.MaintenanceRequest, now time.Time) []dto.RequestDTO {
	out := make([]dto.RequestDTO, 0, len(list))
	for _, r := range list {
		out = append(out, toRequestDTO(r, now))
	}
	return out
}

func (s *RequestService) CreateRequest(ctx context.Context, payload dto.CreateRequestDTO) (*dto.RequestDTO, error) {
	subject := strings.TrimSpace(payload.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject", "тема заявки обязательна")
	}
	if strings.TrimSpace(payload.Type) == "" {
		return nil, apperrors.NewValidationError("type", "тип заявки обязателен")
	}
	requestType, err := entities.ParseRequestType(payload.Type)
	if err != nil {
		return nil, err
	}
	priority, err := entities.ParsePriority(payload.Priority)
	if err != nil {
		return nil, err
	}
	if payload.EquipmentID.Valid && payload.WorkCenterID.Valid {
		return nil, apperrors.NewValidationError("equipment_id", "заявка относится либо к оборудованию, либо к рабочему центру")
	}
	if payload.Duration.Valid && payload.Duration.Float64 < 0 {
		return nil, apperrors.NewValidationError("duration", "длительность не может быть отрицательной")
	}

	var equipment *entities.Equipment
	if payload.EquipmentID.Valid {
		if equipment, err = s.equipmentRepo.FindByID(ctx, payload.EquipmentID.String); err != nil {
			return nil, err
		}
	}
	if payload.WorkCenterID.Valid {
		if _, err := s.workCenterRepo.FindByID(ctx, payload.WorkCenterID.String); err != nil {
			return nil, err
		}
	}

	teamID, technicianID, err := s.resolveAssignment(ctx, payload.TeamID.Ptr(), payload.TechnicianID.Ptr(), equipment)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := &entities.MaintenanceRequest{
		ID:            newID(),
		Subject:       subject,
		Type:          requestType,
		Stage:         entities.StageNew,
		EquipmentID:   payload.EquipmentID.Ptr(),
		WorkCenterID:  payload.WorkCenterID.Ptr(),
		TeamID:        teamID,
		TechnicianID:  technicianID,
		ScheduledDate: payload.ScheduledDate.Ptr(),
		Duration:      payload.Duration.Ptr(),
		Priority:      priority,
		Notes:         payload.Notes,
		Instructions:  payload.Instructions,
	}
	req.Touch(now)

	// заявка на списанное оборудование сразу нарушила бы правило списания
	lockKey := constants.RequestLockKey(req.ID)
	if equipment != nil {
		lockKey = constants.EquipmentLockKey(equipment.ID)
	}
	unlock, err := acquireLock(ctx, s.lockRepo, lockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if equipment != nil {
			current, err := s.equipmentRepo.FindForUpdate(ctx, equipment.ID)
			if err != nil {
				return err
			}
			if current.IsScrapped {
				return apperrors.NewValidationError("equipment_id", "оборудование %s списано", current.Name)
			}
		}
		if err := s.requestRepo.Create(ctx, req); err != nil {
			return err
		}
		stage := string(req.Stage)
		return s.history.record(ctx, req.ID, entities.HistoryCreate, nil, &stage, &req.Subject)
	})
	if err != nil {
		s.logger.Warn("Не удалось создать заявку", zap.String("subject", subject), zap.Error(err))
		return nil, err
	}

	metrics.RequestCreated(string(req.Type))
	s.logger.Info("Заявка создана",
		zap.String("request_id", req.ID),
		zap.String("type", string(req.Type)),
		zap.Stringp("team_id", req.TeamID),
	)
	publish(ctx, s.bus, events.RequestCreatedEvent{Request: *req})

	result := toRequestDTO(req, now)
	return &result, nil
}

// resolveAssignment выбирает команду: явную или по отделу оборудования.
// Техник должен состоять в выбранной команде; без команды берется команда техника.
func (s *RequestService) resolveAssignment(ctx context.Context, teamID, technicianID *string, equipment *entities.Equipment) (*string, *string, error) {
	if teamID != nil {
		if _, err := s.teamRepo.FindByID(ctx, *teamID); err != nil {
			return nil, nil, err
		}
	} else if equipment != nil {
		team, err := s.directory.FindTeamByDepartment(ctx, equipment.Department)
		if err != nil {
			return nil, nil, err
		}
		if team != nil {
			teamID = &team.ID
		}
	}

	if technicianID == nil {
		return teamID, nil, nil
	}
	tech, err := s.teamRepo.FindTechnician(ctx, *technicianID)
	if err != nil {
		return nil, nil, err
	}
	if teamID == nil {
		return &tech.TeamID, technicianID, nil
	}
	if tech.TeamID != *teamID {
		return nil, nil, apperrors.NewValidationError("technician_id", "техник %s не состоит в команде заявки", tech.Name)
	}
	return teamID, technicianID, nil
}

func (s *RequestService) GetRequest(ctx context.Context, id string) (*dto.RequestDTO, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toRequestDTO(req, s.now())
	return &result, nil
}

func (s *RequestService) ListRequests(ctx context.Context, filterDTO dto.RequestListFilterDTO) ([]dto.RequestDTO, error) {
	filter, err := buildRequestFilter(filterDTO)
	if err != nil {
		return nil, err
	}
	list, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toRequestDTOs(list, s.now()), nil
}

func buildRequestFilter(f dto.RequestListFilterDTO) (entities.RequestFilter, error) {
	var filter entities.RequestFilter
	if f.Stage != "" {
		stage, err := entities.ParseStage(f.Stage)
		if err != nil {
			return filter, err
		}
		filter.Stage = &stage
	}
	if f.Type != "" {
		t, err := entities.ParseRequestType(f.Type)
		if err != nil {
			return filter, err
		}
		filter.Type = &t
	}
	if id := strings.TrimSpace(f.TeamID); id != "" {
		filter.TeamID = &id
	}
	if id := strings.TrimSpace(f.EquipmentID); id != "" {
		filter.EquipmentID = &id
	}
	return filter, nil
}

// UpdateRequestFields применяет поля в одной транзакции, а этап, если он
// передан, затем проводит через переход этапов. Если переход не удался,
// уже записанные поля остаются.
func (s *RequestService) UpdateRequestFields(ctx context.Context, id string, payload dto.UpdateRequestDTO) (*dto.RequestDTO, error) {
	var stage *entities.Stage
	if payload.Stage.Valid {
		parsed, err := entities.ParseStage(payload.Stage.String)
		if err != nil {
			return nil, err
		}
		stage = &parsed
	}
	patch, err := s.buildPatch(payload)
	if err != nil {
		return nil, err
	}

	var updated *entities.MaintenanceRequest
	if !patch.IsEmpty() {
		updated, err = s.applyPatch(ctx, id, patch)
		if err != nil {
			return nil, err
		}
	}

	if stage != nil {
		if updated, err = s.engine.TransitionStage(ctx, id, *stage); err != nil {
			return nil, err
		}
	}

	if updated == nil {
		if updated, err = s.requestRepo.FindByID(ctx, id); err != nil {
			return nil, err
		}
	}
	result := toRequestDTO(updated, s.now())
	return &result, nil
}

func (s *RequestService) buildPatch(payload dto.UpdateRequestDTO) (entities.RequestPatch, error) {
	patch := entities.RequestPatch{
		TeamID:             payload.TeamID.Ptr(),
		TechnicianID:       payload.TechnicianID.Ptr(),
		ScheduledDate:      payload.ScheduledDate.Ptr(),
		Duration:           payload.Duration.Ptr(),
		Notes:              payload.Notes.Ptr(),
		Instructions:       payload.Instructions.Ptr(),
		ClearTechnician:    payload.ClearTechnician,
		ClearScheduledDate: payload.ClearScheduledDate,
		ClearDuration:      payload.ClearDuration,
	}
	if payload.Subject.Valid {
		subject := strings.TrimSpace(payload.Subject.String)
		if subject == "" {
			return patch, apperrors.NewValidationError("subject", "тема заявки не может быть пустой")
		}
		patch.Subject = &subject
	}
	if payload.Priority.Valid {
		priority, err := entities.ParsePriority(payload.Priority.String)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	if patch.Duration != nil && *patch.Duration < 0 {
		return patch, apperrors.NewValidationError("duration", "длительность не может быть отрицательной")
	}
	if patch.TechnicianID != nil && patch.ClearTechnician {
		return patch, apperrors.NewValidationError("technician_id", "нельзя одновременно назначить и снять техника")
	}
	if patch.ScheduledDate != nil && patch.ClearScheduledDate {
		return patch, apperrors.NewValidationError("scheduled_date", "нельзя одновременно задать и очистить дату")
	}
	if patch.Duration != nil && patch.ClearDuration {
		return patch, apperrors.NewValidationError("duration", "нельзя одновременно задать и очистить длительность")
	}
	return patch, nil
}

func (s *RequestService) applyPatch(ctx context.Context, id string, patch entities.RequestPatch) (*entities.MaintenanceRequest, error) {
	var updated *entities.MaintenanceRequest
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.requestRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkAssignment(ctx, current, &patch); err != nil {
			return err
		}

		updated, err = s.requestRepo.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		return s.recordFieldChanges(ctx, current, updated)
	})
	if err != nil {
		s.logger.Warn("Не удалось обновить заявку", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Поля заявки обновлены", zap.String("request_id", id))
	return updated, nil
}

// checkAssignment проверяет пару команда/техник после слияния. При смене команды
// техник из другой команды снимается, если нового не передали.
func (s *RequestService) checkAssignment(ctx context.Context, current *entities.MaintenanceRequest, patch *entities.RequestPatch) error {
	teamID := current.TeamID
	if patch.TeamID != nil {
		if _, err := s.teamRepo.FindByID(ctx, *patch.TeamID); err != nil {
			return err
		}
		teamID = patch.TeamID
	}

	if patch.TechnicianID != nil {
		tech, err := s.teamRepo.FindTechnician(ctx, *patch.TechnicianID)
		if err != nil {
			return err
		}
		if teamID == nil {
			patch.TeamID = &tech.TeamID
			return nil
		}
		if tech.TeamID != *teamID {
			return apperrors.NewValidationError("technician_id", "техник %s не состоит в команде заявки", tech.Name)
		}
		return nil
	}

	if patch.TeamID != nil && current.TechnicianID != nil && !patch.ClearTechnician {
		tech, err := s.teamRepo.FindTechnician(ctx, *current.TechnicianID)
		if err != nil {
			return err
		}
		if tech.TeamID != *patch.TeamID {
			patch.ClearTechnician = true
		}
	}
	return nil
}

func (s *RequestService) recordFieldChanges(ctx context.Context, before, after *entities.MaintenanceRequest) error {
	type change struct {
		event    entities.HistoryEventType
		old, new *string
	}
	var changes []change

	if before.Subject != after.Subject {
		changes = append(changes, change{entities.HistorySubjectChange, &before.Subject, &after.Subject})
	}
	if utils.DiffPtr(before.TeamID, after.TeamID) {
		changes = append(changes, change{entities.HistoryTeamChange, before.TeamID, after.TeamID})
	}
	if utils.DiffPtr(before.TechnicianID, after.TechnicianID) {
		changes = append(changes, change{entities.HistoryTechnicianChange, before.TechnicianID, after.TechnicianID})
	}
	if utils.DiffPtr(before.Duration, after.Duration) {
		changes = append(changes, change{entities.HistoryDurationChange, utils.FloatPtrToString(before.Duration), utils.FloatPtrToString(after.Duration)})
	}
	if !sameTime(before.ScheduledDate, after.ScheduledDate) {
		changes = append(changes, change{entities.HistoryScheduleChange, utils.TimePtrToString(before.ScheduledDate), utils.TimePtrToString(after.ScheduledDate)})
	}
	if before.Priority != after.Priority {
		changes = append(changes, change{entities.HistoryPriorityChange, utils.ToPtr(string(before.Priority)), utils.ToPtr(string(after.Priority))})
	}

	for _, c := range changes {
		if err := s.history.record(ctx, after.ID, c.event, c.old, c.new, nil); err != nil {
			return err
		}
	}
	return nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (s *RequestService) TransitionStage(ctx context.Context, id string, rawStage string) (*dto.RequestDTO, error) {
	stage, err := entities.ParseStage(rawStage)
	if err != nil {
		return nil, err
	}
	req, err := s.engine.TransitionStage(ctx, id, stage)
	if err != nil {
		return nil, err
	}
	result := toRequestDTO(req, s.now())
	return &result, nil
}

func (s *RequestService) GetHistory(ctx context.Context, id string) ([]*entities.RequestHistory, error) {
	if _, err := s.requestRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.FindByRequestID(ctx, id)
}

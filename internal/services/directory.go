package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
)

type DirectoryServiceInterface interface {
	// FindTeamByDepartment возвращает (nil, nil), если команды с таким именем нет.
	FindTeamByDepartment(ctx context.Context, department string) (*entities.MaintenanceTeam, error)
	CreateTeam(ctx context.Context, payload dto.CreateTeamDTO) (*entities.MaintenanceTeam, error)
	ListTeams(ctx context.Context) ([]*entities.MaintenanceTeam, error)
	GetTeam(ctx context.Context, id string) (*entities.MaintenanceTeam, error)
	AddTechnician(ctx context.Context, teamID string, payload dto.CreateTechnicianDTO) (*entities.Technician, error)
	GetTechnician(ctx context.Context, id string) (*entities.Technician, error)

	CreateWorkCenter(ctx context.Context, payload dto.CreateWorkCenterDTO) (*entities.WorkCenter, error)
	ListWorkCenters(ctx context.Context) ([]*entities.WorkCenter, error)
	GetWorkCenter(ctx context.Context, id string) (*entities.WorkCenter, error)
}

type DirectoryService struct {
	teamRepo       repositories.TeamRepositoryInterface
	workCenterRepo repositories.WorkCenterRepositoryInterface
	logger         *zap.Logger
	now            Clock
}

func NewDirectoryService(
	teamRepo repositories.TeamRepositoryInterface,
	workCenterRepo repositories.WorkCenterRepositoryInterface,
	logger *zap.Logger,
) *DirectoryService {
	return &DirectoryService{
		teamRepo:       teamRepo,
		workCenterRepo: workCenterRepo,
		logger:         logger,
		now:            systemClock,
	}
}

func (s *DirectoryService) FindTeamByDepartment(ctx context.Context, department string) (*entities.MaintenanceTeam, error) {
	if strings.TrimSpace(department) == "" {
		return nil, nil
	}
	team, err := s.teamRepo.FindByName(ctx, department)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return team, nil
}

func (s *DirectoryService) CreateTeam(ctx context.Context, payload dto.CreateTeamDTO) (*entities.MaintenanceTeam, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "название команды обязательно")
	}
	team := &entities.MaintenanceTeam{
		ID:          newID(),
		Name:        name,
		Company:     strings.TrimSpace(payload.Company),
		Technicians: make([]*entities.Technician, 0),
	}
	team.Touch(s.now())

	if err := s.teamRepo.Create(ctx, team); err != nil {
		s.logger.Error("Не удалось создать команду", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Команда создана", zap.String("team_id", team.ID), zap.String("name", name))
	return team, nil
}

func (s *DirectoryService) ListTeams(ctx context.Context) ([]*entities.MaintenanceTeam, error) {
	return s.teamRepo.List(ctx)
}

func (s *DirectoryService) GetTeam(ctx context.Context, id string) (*entities.MaintenanceTeam, error) {
	return s.teamRepo.FindByID(ctx, id)
}

func (s *DirectoryService) AddTechnician(ctx context.Context, teamID string, payload dto.CreateTechnicianDTO) (*entities.Technician, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "имя техника обязательно")
	}
	tech := &entities.Technician{
		ID:     newID(),
		TeamID: teamID,
		Name:   name,
		Role:   strings.TrimSpace(payload.Role),
		Avatar: strings.TrimSpace(payload.Avatar),
	}
	tech.Touch(s.now())

	if err := s.teamRepo.AddTechnician(ctx, tech); err != nil {
		return nil, err
	}
	s.logger.Info("Техник добавлен в команду", zap.String("team_id", teamID), zap.String("technician_id", tech.ID))
	return tech, nil
}

func (s *DirectoryService) GetTechnician(ctx context.Context, id string) (*entities.Technician, error) {
	return s.teamRepo.FindTechnician(ctx, id)
}

func (s *DirectoryService) CreateWorkCenter(ctx context.Context, payload dto.CreateWorkCenterDTO) (*entities.WorkCenter, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "название рабочего центра обязательно")
	}
	if payload.CostPerHour < 0 || payload.CapacityEfficiency < 0 {
		return nil, apperrors.NewValidationError("cost_per_hour", "стоимость и загрузка не могут быть отрицательными")
	}
	wc := &entities.WorkCenter{
		ID:                 newID(),
		Name:               name,
		Code:               strings.TrimSpace(payload.Code),
		Tag:                strings.TrimSpace(payload.Tag),
		Location:           strings.TrimSpace(payload.Location),
		Description:        payload.Description,
		CostPerHour:        payload.CostPerHour,
		CapacityEfficiency: payload.CapacityEfficiency,
		OEETarget:          payload.OEETarget,
	}
	wc.Touch(s.now())

	if err := s.workCenterRepo.Create(ctx, wc); err != nil {
		s.logger.Error("Не удалось создать рабочий центр", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return wc, nil
}

func (s *DirectoryService) ListWorkCenters(ctx context.Context) ([]*entities.WorkCenter, error) {
	return s.workCenterRepo.List(ctx)
}

func (s *DirectoryService) GetWorkCenter(ctx context.Context, id string) (*entities.WorkCenter, error) {
	return s.workCenterRepo.FindByID(ctx, id)
}

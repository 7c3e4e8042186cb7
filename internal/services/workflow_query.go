package services

import (
	"context"
	"time"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
)

// WorkflowQueryServiceInterface - представления для канбан-доски и календаря.
// Только чтение.
type WorkflowQueryServiceInterface interface {
	ByStage(ctx context.Context) ([]dto.BoardColumnDTO, error)
	ByScheduledDate(ctx context.Context, date time.Time) ([]dto.RequestDTO, error)
	Calendar(ctx context.Context, from, to time.Time) ([]dto.RequestDTO, error)
}

type WorkflowQueryService struct {
	requestRepo repositories.RequestRepositoryInterface
	now         Clock
}

func NewWorkflowQueryService(requestRepo repositories.RequestRepositoryInterface) *WorkflowQueryService {
	return &WorkflowQueryService{requestRepo: requestRepo, now: systemClock}
}

func (s *WorkflowQueryService) WithClock(now Clock) *WorkflowQueryService {
	s.now = now
	return s
}

// ByStage раскладывает все заявки по колонкам New, In Progress, Repaired, Scrap.
// Пустые колонки тоже возвращаются.
func (s *WorkflowQueryService) ByStage(ctx context.Context) ([]dto.BoardColumnDTO, error) {
	list, err := s.requestRepo.List(ctx, entities.RequestFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()

	columns := make([]dto.BoardColumnDTO, len(entities.Stages))
	index := make(map[entities.Stage]int, len(entities.Stages))
	for i, stage := range entities.Stages {
		columns[i] = dto.BoardColumnDTO{Stage: stage, Requests: make([]dto.RequestDTO, 0)}
		index[stage] = i
	}
	for _, r := range list {
		i, ok := index[r.Stage]
		if !ok {
			continue
		}
		columns[i].Requests = append(columns[i].Requests, toRequestDTO(r, now))
		columns[i].Count++
	}
	return columns, nil
}

// ByScheduledDate - открытые заявки (New, In Progress), запланированные на тот же
// календарный день в часовом поясе date.
func (s *WorkflowQueryService) ByScheduledDate(ctx context.Context, date time.Time) ([]dto.RequestDTO, error) {
	list, err := s.requestRepo.List(ctx, entities.RequestFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	y, m, d := date.Date()

	out := make([]dto.RequestDTO, 0)
	for _, r := range list {
		if !r.Stage.IsOpen() || r.ScheduledDate == nil {
			continue
		}
		ry, rm, rd := r.ScheduledDate.In(date.Location()).Date()
		if ry == y && rm == m && rd == d {
			out = append(out, toRequestDTO(r, now))
		}
	}
	return out, nil
}

// Calendar - профилактические заявки с датой в полуинтервале [from, to).
func (s *WorkflowQueryService) Calendar(ctx context.Context, from, to time.Time) ([]dto.RequestDTO, error) {
	if !from.Before(to) {
		return nil, apperrors.NewValidationError("to", "конец периода должен быть позже начала")
	}
	preventive := entities.RequestTypePreventive
	list, err := s.requestRepo.List(ctx, entities.RequestFilter{Type: &preventive})
	if err != nil {
		return nil, err
	}
	now := s.now()

	out := make([]dto.RequestDTO, 0)
	for _, r := range list {
		if r.ScheduledDate == nil {
			continue
		}
		if !r.ScheduledDate.Before(from) && r.ScheduledDate.Before(to) {
			out = append(out, toRequestDTO(r, now))
		}
	}
	return out, nil
}

package memory

import (
	"context"
	"fmt"

	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) repositories.TeamRepositoryInterface {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) Create(ctx context.Context, team *entities.MaintenanceTeam) error {
	return r.store.write(ctx, func(st *state) error {
		key := normalizeName(team.Name)
		if _, exists := st.teamNames[key]; exists {
			return fmt.Errorf("команда %q: %w", team.Name, apperrors.ErrConflict)
		}
		if _, exists := st.teams[team.ID]; exists {
			return fmt.Errorf("команда %s: %w", team.ID, apperrors.ErrConflict)
		}
		stored := *team
		stored.Technicians = nil
		st.teams[team.ID] = stored
		st.teamOrder = append(st.teamOrder, team.ID)
		st.teamNames[key] = team.ID
		return nil
	})
}

// withTechnicians собирает копию команды с техниками в порядке добавления.
func withTechnicians(st *state, team entities.MaintenanceTeam) *entities.MaintenanceTeam {
	team.Technicians = make([]*entities.Technician, 0)
	for _, id := range st.technicianOrder {
		tech := st.technicians[id]
		if tech.TeamID == team.ID {
			team.Technicians = append(team.Technicians, &tech)
		}
	}
	return &team
}

func (r *TeamRepository) FindByID(ctx context.Context, id string) (*entities.MaintenanceTeam, error) {
	var out *entities.MaintenanceTeam
	err := r.store.read(ctx, func(st *state) error {
		team, ok := st.teams[id]
		if !ok {
			return fmt.Errorf("команда %s: %w", id, apperrors.ErrNotFound)
		}
		out = withTechnicians(st, team)
		return nil
	})
	return out, err
}

func (r *TeamRepository) FindByName(ctx context.Context, name string) (*entities.MaintenanceTeam, error) {
	var out *entities.MaintenanceTeam
	err := r.store.read(ctx, func(st *state) error {
		id, ok := st.teamNames[normalizeName(name)]
		if !ok {
			return fmt.Errorf("команда %q: %w", name, apperrors.ErrNotFound)
		}
		out = withTechnicians(st, st.teams[id])
		return nil
	})
	return out, err
}

func (r *TeamRepository) List(ctx context.Context) ([]*entities.MaintenanceTeam, error) {
	list := make([]*entities.MaintenanceTeam, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.teamOrder {
			list = append(list, withTechnicians(st, st.teams[id]))
		}
		return nil
	})
	return list, err
}

func (r *TeamRepository) AddTechnician(ctx context.Context, tech *entities.Technician) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.teams[tech.TeamID]; !ok {
			return fmt.Errorf("команда %s: %w", tech.TeamID, apperrors.ErrNotFound)
		}
		if _, exists := st.technicians[tech.ID]; exists {
			return fmt.Errorf("техник %s: %w", tech.ID, apperrors.ErrConflict)
		}
		st.technicians[tech.ID] = *tech
		st.technicianOrder = append(st.technicianOrder, tech.ID)
		return nil
	})
}

func (r *TeamRepository) FindTechnician(ctx context.Context, id string) (*entities.Technician, error) {
	var out *entities.Technician
	err := r.store.read(ctx, func(st *state) error {
		tech, ok := st.technicians[id]
		if !ok {
			return fmt.Errorf("техник %s: %w", id, apperrors.ErrNotFound)
		}
		out = &tech
		return nil
	})
	return out, err
}

type WorkCenterRepository struct {
	store *Store
}

func NewWorkCenterRepository(store *Store) repositories.WorkCenterRepositoryInterface {
	return &WorkCenterRepository{store: store}
}

func (r *WorkCenterRepository) Create(ctx context.Context, wc *entities.WorkCenter) error {
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.workCenterNames[wc.Name]; exists {
			return fmt.Errorf("рабочий центр %q: %w", wc.Name, apperrors.ErrConflict)
		}
		if _, exists := st.workCenters[wc.ID]; exists {
			return fmt.Errorf("рабочий центр %s: %w", wc.ID, apperrors.ErrConflict)
		}
		st.workCenters[wc.ID] = *wc
		st.workCenterOrder = append(st.workCenterOrder, wc.ID)
		st.workCenterNames[wc.Name] = wc.ID
		return nil
	})
}

func (r *WorkCenterRepository) FindByID(ctx context.Context, id string) (*entities.WorkCenter, error) {
	var out *entities.WorkCenter
	err := r.store.read(ctx, func(st *state) error {
		wc, ok := st.workCenters[id]
		if !ok {
			return fmt.Errorf("рабочий центр %s: %w", id, apperrors.ErrNotFound)
		}
		out = &wc
		return nil
	})
	return out, err
}

func (r *WorkCenterRepository) List(ctx context.Context) ([]*entities.WorkCenter, error) {
	list := make([]*entities.WorkCenter, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.workCenterOrder {
			wc := st.workCenters[id]
			list = append(list, &wc)
		}
		return nil
	})
	return list, err
}

type RequestHistoryRepository struct {
	store *Store
}

func NewRequestHistoryRepository(store *Store) repositories.RequestHistoryRepositoryInterface {
	return &RequestHistoryRepository{store: store}
}

func (r *RequestHistoryRepository) Create(ctx context.Context, h *entities.RequestHistory) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.requests[h.RequestID]; !ok {
			return fmt.Errorf("заявка %s: %w", h.RequestID, apperrors.ErrNotFound)
		}
		st.history[h.RequestID] = append(st.history[h.RequestID], *h)
		return nil
	})
}

func (r *RequestHistoryRepository) FindByRequestID(ctx context.Context, requestID string) ([]*entities.RequestHistory, error) {
	items := make([]*entities.RequestHistory, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, h := range st.history[requestID] {
			h := h
			items = append(items, &h)
		}
		return nil
	})
	return items, err
}

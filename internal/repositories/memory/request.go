package memory

import (
	"context"
	"fmt"
	"time"

	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
)

type RequestRepository struct {
	store *Store
}

func NewRequestRepository(store *Store) repositories.RequestRepositoryInterface {
	return &RequestRepository{store: store}
}

func (r *RequestRepository) Create(ctx context.Context, req *entities.MaintenanceRequest) error {
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.requests[req.ID]; exists {
			return fmt.Errorf("заявка %s: %w", req.ID, apperrors.ErrConflict)
		}
		if err := checkReferences(st, req.EquipmentID, req.WorkCenterID, req.TeamID, req.TechnicianID); err != nil {
			return err
		}
		st.requests[req.ID] = *req
		st.requestOrder = append(st.requestOrder, req.ID)
		return nil
	})
}

// checkReferences повторяет внешние ключи PostgreSQL.
func checkReferences(st *state, equipmentID, workCenterID, teamID, technicianID *string) error {
	if equipmentID != nil {
		if _, ok := st.equipment[*equipmentID]; !ok {
			return fmt.Errorf("оборудование %s: %w", *equipmentID, apperrors.ErrNotFound)
		}
	}
	if workCenterID != nil {
		if _, ok := st.workCenters[*workCenterID]; !ok {
			return fmt.Errorf("рабочий центр %s: %w", *workCenterID, apperrors.ErrNotFound)
		}
	}
	if teamID != nil {
		if _, ok := st.teams[*teamID]; !ok {
			return fmt.Errorf("команда %s: %w", *teamID, apperrors.ErrNotFound)
		}
	}
	if technicianID != nil {
		if _, ok := st.technicians[*technicianID]; !ok {
			return fmt.Errorf("техник %s: %w", *technicianID, apperrors.ErrNotFound)
		}
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entities.MaintenanceRequest, error) {
	var out *entities.MaintenanceRequest
	err := r.store.read(ctx, func(st *state) error {
		req, ok := st.requests[id]
		if !ok {
			return fmt.Errorf("заявка %s: %w", id, apperrors.ErrNotFound)
		}
		out = &req
		return nil
	})
	return out, err
}

func (r *RequestRepository) List(ctx context.Context, filter entities.RequestFilter) ([]*entities.MaintenanceRequest, error) {
	list := make([]*entities.MaintenanceRequest, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.requestOrder {
			req := st.requests[id]
			if filter.Matches(&req) {
				list = append(list, &req)
			}
		}
		return nil
	})
	return list, err
}

func (r *RequestRepository) Update(ctx context.Context, id string, patch entities.RequestPatch) (*entities.MaintenanceRequest, error) {
	var out *entities.MaintenanceRequest
	err := r.store.write(ctx, func(st *state) error {
		req, ok := st.requests[id]
		if !ok {
			return fmt.Errorf("заявка %s: %w", id, apperrors.ErrNotFound)
		}
		if err := checkReferences(st, nil, nil, patch.TeamID, patch.TechnicianID); err != nil {
			return err
		}
		updated := patch.Apply(req)
		updated.UpdatedAt = time.Now()
		st.requests[id] = updated
		out = &updated
		return nil
	})
	return out, err
}

func (r *RequestRepository) CountOpenByEquipment(ctx context.Context, equipmentID string) (int, error) {
	count := 0
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.requestOrder {
			req := st.requests[id]
			if req.EquipmentID != nil && *req.EquipmentID == equipmentID && req.Stage.IsOpen() {
				count++
			}
		}
		return nil
	})
	return count, err
}

package memory

import (
	"context"
	"fmt"
	"time"

	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
)

type EquipmentRepository struct {
	store *Store
}

func NewEquipmentRepository(store *Store) repositories.EquipmentRepositoryInterface {
	return &EquipmentRepository{store: store}
}

func (r *EquipmentRepository) Create(ctx context.Context, e *entities.Equipment) error {
	if err := e.ScrapState().Validate(); err != nil {
		return err
	}
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.equipment[e.ID]; exists {
			return fmt.Errorf("оборудование %s: %w", e.ID, apperrors.ErrConflict)
		}
		if _, exists := st.serials[e.SerialNumber]; exists {
			return fmt.Errorf("серийный номер %s: %w", e.SerialNumber, apperrors.ErrConflict)
		}
		st.equipment[e.ID] = *e
		st.equipmentOrder = append(st.equipmentOrder, e.ID)
		st.serials[e.SerialNumber] = e.ID
		return nil
	})
}

func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*entities.Equipment, error) {
	var out *entities.Equipment
	err := r.store.read(ctx, func(st *state) error {
		e, ok := st.equipment[id]
		if !ok {
			return fmt.Errorf("оборудование %s: %w", id, apperrors.ErrNotFound)
		}
		out = &e
		return nil
	})
	return out, err
}

// FindForUpdate: внутри транзакции блокировка хранилища уже удерживается.
func (r *EquipmentRepository) FindForUpdate(ctx context.Context, id string) (*entities.Equipment, error) {
	return r.FindByID(ctx, id)
}

func (r *EquipmentRepository) List(ctx context.Context) ([]*entities.Equipment, error) {
	list := make([]*entities.Equipment, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.equipmentOrder {
			e := st.equipment[id]
			list = append(list, &e)
		}
		return nil
	})
	return list, err
}

func (r *EquipmentRepository) SetScrapState(ctx context.Context, id string, s entities.ScrapState) (*entities.Equipment, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var out *entities.Equipment
	err := r.store.write(ctx, func(st *state) error {
		e, ok := st.equipment[id]
		if !ok {
			return fmt.Errorf("оборудование %s: %w", id, apperrors.ErrNotFound)
		}
		e.ApplyScrapState(s)
		e.UpdatedAt = time.Now()
		st.equipment[id] = e
		out = &e
		return nil
	})
	return out, err
}

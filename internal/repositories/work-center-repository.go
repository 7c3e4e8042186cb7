package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

const (
	workCenterTable  = "work_centers"
	workCenterFields = `id, name, code, tag, location, description, cost_per_hour, capacity_efficiency,
		oee_target, created_at, updated_at`
)

type WorkCenterRepositoryInterface interface {
	Create(ctx context.Context, wc *entities.WorkCenter) error
	FindByID(ctx context.Context, id string) (*entities.WorkCenter, error)
	List(ctx context.Context) ([]*entities.WorkCenter, error)
}

type WorkCenterRepository struct {
	storage *pgxpool.Pool
}

func NewWorkCenterRepository(storage *pgxpool.Pool) WorkCenterRepositoryInterface {
	return &WorkCenterRepository{storage: storage}
}

func scanWorkCenter(row pgx.Row) (*entities.WorkCenter, error) {
	var wc entities.WorkCenter
	err := row.Scan(&wc.ID, &wc.Name, &wc.Code, &wc.Tag, &wc.Location, &wc.Description,
		&wc.CostPerHour, &wc.CapacityEfficiency, &wc.OEETarget, &wc.CreatedAt, &wc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования work_centers: %w", err)
	}
	return &wc, nil
}

func (r *WorkCenterRepository) Create(ctx context.Context, wc *entities.WorkCenter) error {
	query, args, err := psql.Insert(workCenterTable).
		Columns("id", "name", "code", "tag", "location", "description", "cost_per_hour",
			"capacity_efficiency", "oee_target", "created_at", "updated_at").
		Values(wc.ID, wc.Name, wc.Code, wc.Tag, wc.Location, wc.Description, wc.CostPerHour,
			wc.CapacityEfficiency, wc.OEETarget, wc.CreatedAt, wc.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для создания рабочего центра: %w", err)
	}
	if _, err := getQuerier(ctx, r.storage).Exec(ctx, query, args...); err != nil {
		return mapPgError("создание рабочего центра", err)
	}
	return nil
}

func (r *WorkCenterRepository) FindByID(ctx context.Context, id string) (*entities.WorkCenter, error) {
	query, args, err := psql.Select(workCenterFields).From(workCenterTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для рабочего центра: %w", err)
	}
	wc, err := scanWorkCenter(getQuerier(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("рабочий центр %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return wc, nil
}

func (r *WorkCenterRepository) List(ctx context.Context) ([]*entities.WorkCenter, error) {
	query, args, err := psql.Select(workCenterFields).From(workCenterTable).OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для списка рабочих центров: %w", err)
	}
	rows, err := getQuerier(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("список рабочих центров", err)
	}
	defer rows.Close()

	list := make([]*entities.WorkCenter, 0)
	for rows.Next() {
		wc, err := scanWorkCenter(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, wc)
	}
	return list, rows.Err()
}

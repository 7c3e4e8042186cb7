package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

const (
	requestTable  = "maintenance_requests"
	requestFields = `id, subject, type, stage, equipment_id, work_center_id, team_id, technician_id,
		scheduled_date, duration, priority, notes, instructions, created_at, updated_at`
)

type RequestRepositoryInterface interface {
	Create(ctx context.Context, req *entities.MaintenanceRequest) error
	FindByID(ctx context.Context, id string) (*entities.MaintenanceRequest, error)
	// List возвращает заявки в порядке добавления.
	List(ctx context.Context, filter entities.RequestFilter) ([]*entities.MaintenanceRequest, error)
	Update(ctx context.Context, id string, patch entities.RequestPatch) (*entities.MaintenanceRequest, error)
	// CountOpenByEquipment - число заявок New/In Progress по оборудованию.
	CountOpenByEquipment(ctx context.Context, equipmentID string) (int, error)
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

func (r *RequestRepository) scanRow(row pgx.Row) (*entities.MaintenanceRequest, error) {
	var req entities.MaintenanceRequest
	var reqType, stage, priority string
	var equipmentID, workCenterID, teamID, technicianID null.String
	var scheduled null.Time
	var duration null.Float64

	err := row.Scan(
		&req.ID, &req.Subject, &reqType, &stage,
		&equipmentID, &workCenterID, &teamID, &technicianID,
		&scheduled, &duration, &priority, &req.Notes, &req.Instructions,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования maintenance_requests: %w", err)
	}

	req.Type = entities.RequestType(reqType)
	req.Stage = entities.Stage(stage)
	req.Priority = entities.Priority(priority)
	req.EquipmentID = equipmentID.Ptr()
	req.WorkCenterID = workCenterID.Ptr()
	req.TeamID = teamID.Ptr()
	req.TechnicianID = technicianID.Ptr()
	req.ScheduledDate = scheduled.Ptr()
	req.Duration = duration.Ptr()
	return &req, nil
}

func (r *RequestRepository) Create(ctx context.Context, req *entities.MaintenanceRequest) error {
	query, args, err := psql.Insert(requestTable).
		Columns("id", "subject", "type", "stage", "equipment_id", "work_center_id", "team_id", "technician_id",
			"scheduled_date", "duration", "priority", "notes", "instructions", "created_at", "updated_at").
		Values(req.ID, req.Subject, string(req.Type), string(req.Stage),
			null.StringFromPtr(req.EquipmentID), null.StringFromPtr(req.WorkCenterID),
			null.StringFromPtr(req.TeamID), null.StringFromPtr(req.TechnicianID),
			null.TimeFromPtr(req.ScheduledDate), null.Float64FromPtr(req.Duration),
			string(req.Priority), req.Notes, req.Instructions, req.CreatedAt, req.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для создания заявки: %w", err)
	}
	if _, err := getQuerier(ctx, r.storage).Exec(ctx, query, args...); err != nil {
		r.logger.Error("Ошибка при создании заявки", zap.String("subject", req.Subject), zap.Error(err))
		return mapPgError("создание заявки", err)
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entities.MaintenanceRequest, error) {
	query, args, err := psql.Select(requestFields).From(requestTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для заявки: %w", err)
	}
	req, err := r.scanRow(getQuerier(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("заявка %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return req, nil
}

func (r *RequestRepository) List(ctx context.Context, filter entities.RequestFilter) ([]*entities.MaintenanceRequest, error) {
	where := sq.Eq{}
	if filter.Stage != nil {
		where["stage"] = string(*filter.Stage)
	}
	if filter.Type != nil {
		where["type"] = string(*filter.Type)
	}
	if filter.TeamID != nil {
		where["team_id"] = *filter.TeamID
	}
	if filter.EquipmentID != nil {
		where["equipment_id"] = *filter.EquipmentID
	}

	builder := psql.Select(requestFields).From(requestTable).OrderBy("seq")
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для списка заявок: %w", err)
	}

	rows, err := getQuerier(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("список заявок", err)
	}
	defer rows.Close()

	list := make([]*entities.MaintenanceRequest, 0)
	for rows.Next() {
		req, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

func (r *RequestRepository) Update(ctx context.Context, id string, patch entities.RequestPatch) (*entities.MaintenanceRequest, error) {
	builder := psql.Update(requestTable).Set("updated_at", sq.Expr("NOW()"))

	if patch.Subject != nil {
		builder = builder.Set("subject", *patch.Subject)
	}
	if patch.Stage != nil {
		builder = builder.Set("stage", string(*patch.Stage))
	}
	if patch.TeamID != nil {
		builder = builder.Set("team_id", *patch.TeamID)
	}
	if patch.TechnicianID != nil {
		builder = builder.Set("technician_id", *patch.TechnicianID)
	} else if patch.ClearTechnician {
		builder = builder.Set("technician_id", nil)
	}
	if patch.ScheduledDate != nil {
		builder = builder.Set("scheduled_date", *patch.ScheduledDate)
	} else if patch.ClearScheduledDate {
		builder = builder.Set("scheduled_date", nil)
	}
	if patch.Duration != nil {
		builder = builder.Set("duration", *patch.Duration)
	} else if patch.ClearDuration {
		builder = builder.Set("duration", nil)
	}
	if patch.Priority != nil {
		builder = builder.Set("priority", string(*patch.Priority))
	}
	if patch.Notes != nil {
		builder = builder.Set("notes", *patch.Notes)
	}
	if patch.Instructions != nil {
		builder = builder.Set("instructions", *patch.Instructions)
	}

	query, args, err := builder.Where(sq.Eq{"id": id}).Suffix("RETURNING " + requestFields).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для обновления заявки: %w", err)
	}
	req, err := r.scanRow(getQuerier(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("заявка %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, mapPgError("обновление заявки", err)
	}
	return req, nil
}

func (r *RequestRepository) CountOpenByEquipment(ctx context.Context, equipmentID string) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(requestTable).
		Where(sq.Eq{
			"equipment_id": equipmentID,
			"stage":        []string{string(entities.StageNew), string(entities.StageInProgress)},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL для CountOpenByEquipment: %w", err)
	}
	var count int
	if err := getQuerier(ctx, r.storage).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, mapPgError("подсчет открытых заявок", err)
	}
	return count, nil
}

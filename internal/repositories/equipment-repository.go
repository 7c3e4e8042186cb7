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
	equipmentTable  = "equipment"
	equipmentFields = `id, name, serial_number, category, company, department, location, owner, purchase_date,
		warranty_info, description, is_scrapped, scrap_date, scrap_reason, scrap_origin, created_at, updated_at`
)

type EquipmentRepositoryInterface interface {
	Create(ctx context.Context, e *entities.Equipment) error
	FindByID(ctx context.Context, id string) (*entities.Equipment, error)
	// FindForUpdate читает запись и удерживает ее до конца текущей транзакции.
	FindForUpdate(ctx context.Context, id string) (*entities.Equipment, error)
	List(ctx context.Context) ([]*entities.Equipment, error)
	// SetScrapState записывает is_scrapped, scrap_date, scrap_reason и scrap_origin одной операцией.
	SetScrapState(ctx context.Context, id string, state entities.ScrapState) (*entities.Equipment, error)
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func (r *EquipmentRepository) scanRow(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var purchaseDate, scrapDate null.Time
	var scrapReason null.String
	var origin string

	err := row.Scan(
		&e.ID, &e.Name, &e.SerialNumber, &e.Category, &e.Company, &e.Department, &e.Location, &e.Owner,
		&purchaseDate, &e.WarrantyInfo, &e.Description,
		&e.IsScrapped, &scrapDate, &scrapReason, &origin,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования equipment: %w", err)
	}

	e.PurchaseDate = purchaseDate.Ptr()
	e.ScrapDate = scrapDate.Ptr()
	e.ScrapReason = scrapReason.Ptr()
	e.ScrapOrigin = entities.ScrapOrigin(origin)
	return &e, nil
}

func (r *EquipmentRepository) findOne(ctx context.Context, id string, forUpdate bool) (*entities.Equipment, error) {
	builder := psql.Select(equipmentFields).From(equipmentTable).Where(sq.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для equipment: %w", err)
	}
	e, err := r.scanRow(getQuerier(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("оборудование %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return e, nil
}

func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*entities.Equipment, error) {
	return r.findOne(ctx, id, false)
}

func (r *EquipmentRepository) FindForUpdate(ctx context.Context, id string) (*entities.Equipment, error) {
	return r.findOne(ctx, id, true)
}

func (r *EquipmentRepository) Create(ctx context.Context, e *entities.Equipment) error {
	if err := e.ScrapState().Validate(); err != nil {
		return err
	}
	query, args, err := psql.Insert(equipmentTable).
		Columns("id", "name", "serial_number", "category", "company", "department", "location", "owner",
			"purchase_date", "warranty_info", "description", "is_scrapped", "scrap_date", "scrap_reason",
			"scrap_origin", "created_at", "updated_at").
		Values(e.ID, e.Name, e.SerialNumber, e.Category, e.Company, e.Department, e.Location, e.Owner,
			null.TimeFromPtr(e.PurchaseDate), e.WarrantyInfo, e.Description, e.IsScrapped,
			null.TimeFromPtr(e.ScrapDate), null.StringFromPtr(e.ScrapReason), string(e.ScrapOrigin),
			e.CreatedAt, e.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для создания equipment: %w", err)
	}
	if _, err := getQuerier(ctx, r.storage).Exec(ctx, query, args...); err != nil {
		r.logger.Error("Ошибка при создании оборудования", zap.String("serial_number", e.SerialNumber), zap.Error(err))
		return mapPgError("создание оборудования", err)
	}
	return nil
}

func (r *EquipmentRepository) List(ctx context.Context) ([]*entities.Equipment, error) {
	query, args, err := psql.Select(equipmentFields).From(equipmentTable).OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для списка equipment: %w", err)
	}
	rows, err := getQuerier(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("список оборудования", err)
	}
	defer rows.Close()

	list := make([]*entities.Equipment, 0)
	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *EquipmentRepository) SetScrapState(ctx context.Context, id string, state entities.ScrapState) (*entities.Equipment, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}
	query, args, err := psql.Update(equipmentTable).
		Set("is_scrapped", state.IsScrapped).
		Set("scrap_date", null.TimeFromPtr(state.ScrapDate)).
		Set("scrap_reason", null.StringFromPtr(state.ScrapReason)).
		Set("scrap_origin", string(state.Origin)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + equipmentFields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для SetScrapState: %w", err)
	}
	e, err := r.scanRow(getQuerier(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("оборудование %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, mapPgError("запись состояния списания", err)
	}
	return e, nil
}

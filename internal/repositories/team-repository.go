package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

const (
	teamTable        = "maintenance_teams"
	teamFields       = "id, name, company, created_at, updated_at"
	technicianTable  = "technicians"
	technicianFields = "id, team_id, name, role, avatar, created_at, updated_at"
)

type TeamRepositoryInterface interface {
	Create(ctx context.Context, team *entities.MaintenanceTeam) error
	FindByID(ctx context.Context, id string) (*entities.MaintenanceTeam, error)
	// FindByName - без учета регистра и пробелов по краям.
	FindByName(ctx context.Context, name string) (*entities.MaintenanceTeam, error)
	List(ctx context.Context) ([]*entities.MaintenanceTeam, error)

	AddTechnician(ctx context.Context, tech *entities.Technician) error
	FindTechnician(ctx context.Context, id string) (*entities.Technician, error)
}

type TeamRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTeamRepository(storage *pgxpool.Pool, logger *zap.Logger) TeamRepositoryInterface {
	return &TeamRepository{storage: storage, logger: logger}
}

func scanTeam(row pgx.Row) (*entities.MaintenanceTeam, error) {
	var t entities.MaintenanceTeam
	if err := row.Scan(&t.ID, &t.Name, &t.Company, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования maintenance_teams: %w", err)
	}
	t.Technicians = make([]*entities.Technician, 0)
	return &t, nil
}

func scanTechnician(row pgx.Row) (*entities.Technician, error) {
	var t entities.Technician
	if err := row.Scan(&t.ID, &t.TeamID, &t.Name, &t.Role, &t.Avatar, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования technicians: %w", err)
	}
	return &t, nil
}

func (r *TeamRepository) Create(ctx context.Context, team *entities.MaintenanceTeam) error {
	query, args, err := psql.Insert(teamTable).
		Columns("id", "name", "company", "created_at", "updated_at").
		Values(team.ID, team.Name, team.Company, team.CreatedAt, team.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для создания команды: %w", err)
	}
	if _, err := getQuerier(ctx, r.storage).Exec(ctx, query, args...); err != nil {
		return mapPgError("создание команды", err)
	}
	return nil
}

func (r *TeamRepository) findOne(ctx context.Context, where sq.Sqlizer, label string) (*entities.MaintenanceTeam, error) {
	query, args, err := psql.Select(teamFields).From(teamTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для команды: %w", err)
	}
	team, err := scanTeam(getQuerier(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("команда %s: %w", label, apperrors.ErrNotFound)
		}
		return nil, err
	}
	techs, err := r.listTechnicians(ctx, sq.Eq{"team_id": team.ID})
	if err != nil {
		return nil, err
	}
	team.Technicians = techs
	return team, nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id string) (*entities.MaintenanceTeam, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, id)
}

func (r *TeamRepository) FindByName(ctx context.Context, name string) (*entities.MaintenanceTeam, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return r.findOne(ctx, sq.Expr("LOWER(TRIM(name)) = ?", normalized), name)
}

func (r *TeamRepository) List(ctx context.Context) ([]*entities.MaintenanceTeam, error) {
	query, args, err := psql.Select(teamFields).From(teamTable).OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для списка команд: %w", err)
	}
	rows, err := getQuerier(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("список команд", err)
	}
	defer rows.Close()

	teams := make([]*entities.MaintenanceTeam, 0)
	byID := make(map[string]*entities.MaintenanceTeam)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	techs, err := r.listTechnicians(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, tech := range techs {
		if t, ok := byID[tech.TeamID]; ok {
			t.Technicians = append(t.Technicians, tech)
		}
	}
	return teams, nil
}

func (r *TeamRepository) listTechnicians(ctx context.Context, where sq.Sqlizer) ([]*entities.Technician, error) {
	builder := psql.Select(technicianFields).From(technicianTable).OrderBy("created_at", "id")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для списка техников: %w", err)
	}
	rows, err := getQuerier(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("список техников", err)
	}
	defer rows.Close()

	techs := make([]*entities.Technician, 0)
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	return techs, rows.Err()
}

func (r *TeamRepository) AddTechnician(ctx context.Context, tech *entities.Technician) error {
	query, args, err := psql.Insert(technicianTable).
		Columns("id", "team_id", "name", "role", "avatar", "created_at", "updated_at").
		Values(tech.ID, tech.TeamID, tech.Name, tech.Role, tech.Avatar, tech.CreatedAt, tech.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для добавления техника: %w", err)
	}
	if _, err := getQuerier(ctx, r.storage).Exec(ctx, query, args...); err != nil {
		return mapPgError("добавление техника", err)
	}
	return nil
}

func (r *TeamRepository) FindTechnician(ctx context.Context, id string) (*entities.Technician, error) {
	query, args, err := psql.Select(technicianFields).From(technicianTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для техника: %w", err)
	}
	tech, err := scanTechnician(getQuerier(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("техник %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return tech, nil
}

package repositories_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/config"
	"gearguard/pkg/database/postgresql"
	apperrors "gearguard/pkg/errors"
)

// PostgresTestSuite работает с настоящей БД и запускается только при заданном TEST_DATABASE_URL.
type PostgresTestSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo repositories.Set
}

func (s *PostgresTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_URL не задан")
	}
	ctx := context.Background()
	logger := zap.NewNop()

	pool, err := postgresql.ConnectDB(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 4}, logger)
	s.Require().NoError(err)
	s.Require().NoError(postgresql.Migrate(ctx, pool, logger))

	s.pool = pool
	s.repo = repositories.NewPostgresSet(pool, logger)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresTestSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(),
		"TRUNCATE request_history, maintenance_requests, work_centers, equipment, technicians, maintenance_teams CASCADE")
	s.Require().NoError(err)
}

func (s *PostgresTestSuite) equipment(id, serial string) *entities.Equipment {
	e := &entities.Equipment{ID: id, Name: "Станок " + serial, SerialNumber: serial}
	e.Touch(time.Now().UTC())
	s.Require().NoError(s.repo.Equipment.Create(context.Background(), e))
	return e
}

func (s *PostgresTestSuite) request(id string, equipmentID *string, stage entities.Stage) *entities.MaintenanceRequest {
	r := &entities.MaintenanceRequest{
		ID:          id,
		Subject:     "Заявка " + id,
		Type:        entities.RequestTypeCorrective,
		Stage:       stage,
		EquipmentID: equipmentID,
		Priority:    entities.PriorityMedium,
	}
	r.Touch(time.Now().UTC())
	s.Require().NoError(s.repo.Requests.Create(context.Background(), r))
	return r
}

func (s *PostgresTestSuite) TestEquipmentConflictAndNotFound() {
	ctx := context.Background()
	s.equipment("00000000-0000-0000-0000-000000000001", "SN-1")

	dup := &entities.Equipment{ID: "00000000-0000-0000-0000-000000000002", Name: "Дубль", SerialNumber: "SN-1"}
	dup.Touch(time.Now().UTC())
	s.ErrorIs(s.repo.Equipment.Create(ctx, dup), apperrors.ErrConflict)

	_, err := s.repo.Equipment.FindByID(ctx, "00000000-0000-0000-0000-0000000000ff")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PostgresTestSuite) TestScrapStateRoundTrip() {
	ctx := context.Background()
	eq := s.equipment("00000000-0000-0000-0000-000000000001", "SN-1")

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	updated, err := s.repo.Equipment.SetScrapState(ctx, eq.ID, entities.Scrapped(at, "Износ", entities.ScrapOriginWorkflow))
	s.Require().NoError(err)
	s.True(updated.IsScrapped)
	s.Equal(entities.ScrapOriginWorkflow, updated.ScrapOrigin)
	s.Require().NotNil(updated.ScrapDate)
	s.True(at.Equal(*updated.ScrapDate))

	restored, err := s.repo.Equipment.SetScrapState(ctx, eq.ID, entities.NotScrapped())
	s.Require().NoError(err)
	s.False(restored.IsScrapped)
	s.Nil(restored.ScrapDate)
	s.Nil(restored.ScrapReason)
}

func (s *PostgresTestSuite) TestRequestsInsertionOrderAndOpenCount() {
	ctx := context.Background()
	eq := s.equipment("00000000-0000-0000-0000-000000000001", "SN-1")

	ids := []string{
		"00000000-0000-0000-0000-0000000000a3",
		"00000000-0000-0000-0000-0000000000a1",
		"00000000-0000-0000-0000-0000000000a2",
	}
	s.request(ids[0], &eq.ID, entities.StageNew)
	s.request(ids[1], &eq.ID, entities.StageScrap)
	s.request(ids[2], &eq.ID, entities.StageInProgress)

	list, err := s.repo.Requests.List(ctx, entities.RequestFilter{EquipmentID: &eq.ID})
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	for i, r := range list {
		s.Equal(ids[i], r.ID)
	}

	open, err := s.repo.Requests.CountOpenByEquipment(ctx, eq.ID)
	s.Require().NoError(err)
	s.Equal(2, open)
}

func (s *PostgresTestSuite) TestTransactionRollback() {
	ctx := context.Background()
	eq := s.equipment("00000000-0000-0000-0000-000000000001", "SN-1")
	req := s.request("00000000-0000-0000-0000-0000000000a1", &eq.ID, entities.StageNew)

	boom := errors.New("boom")
	err := s.repo.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stage := entities.StageScrap
		if _, err := s.repo.Requests.Update(ctx, req.ID, entities.RequestPatch{Stage: &stage}); err != nil {
			return err
		}
		if _, err := s.repo.Equipment.SetScrapState(ctx, eq.ID, entities.Scrapped(time.Now(), "x", entities.ScrapOriginWorkflow)); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.repo.Requests.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(entities.StageNew, got.Stage)

	e, err := s.repo.Equipment.FindByID(ctx, eq.ID)
	s.Require().NoError(err)
	s.False(e.IsScrapped)
}

func TestPostgresTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresTestSuite))
}

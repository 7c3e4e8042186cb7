package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/internal/repositories/memory"
)

// countingEquipmentRepo считает обращения к реестру оборудования.
type countingEquipmentRepo struct {
	repositories.EquipmentRepositoryInterface
	calls       atomic.Int64
	scrapWrites atomic.Int64
}

func (r *countingEquipmentRepo) FindByID(ctx context.Context, id string) (*entities.Equipment, error) {
	r.calls.Add(1)
	return r.EquipmentRepositoryInterface.FindByID(ctx, id)
}

func (r *countingEquipmentRepo) FindForUpdate(ctx context.Context, id string) (*entities.Equipment, error) {
	r.calls.Add(1)
	return r.EquipmentRepositoryInterface.FindForUpdate(ctx, id)
}

func (r *countingEquipmentRepo) SetScrapState(ctx context.Context, id string, s entities.ScrapState) (*entities.Equipment, error) {
	r.calls.Add(1)
	if s.IsScrapped {
		r.scrapWrites.Add(1)
	}
	return r.EquipmentRepositoryInterface.SetScrapState(ctx, id, s)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store      *memory.Store
	txManager  repositories.TxManagerInterface
	equipment  *countingEquipmentRepo
	requests   repositories.RequestRepositoryInterface
	teams      repositories.TeamRepositoryInterface
	history    repositories.RequestHistoryRepositoryInterface
	clock      *testClock
	engine     *StageTransitionService
	requestSvc *RequestService
	equipSvc   *EquipmentService
	directory  *DirectoryService
	queries    *WorkflowQueryService
	reports    *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	equipmentRepo := &countingEquipmentRepo{EquipmentRepositoryInterface: memory.NewEquipmentRepository(store)}
	requestRepo := memory.NewRequestRepository(store)
	teamRepo := memory.NewTeamRepository(store)
	workCenterRepo := memory.NewWorkCenterRepository(store)
	historyRepo := memory.NewRequestHistoryRepository(store)
	lockRepo := repositories.NewLocalLockRepository()
	clock := &testClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}

	engine := NewStageTransitionService(txManager, requestRepo, equipmentRepo, historyRepo, lockRepo, nil, logger).WithClock(clock.Now)
	directory := NewDirectoryService(teamRepo, workCenterRepo, logger)
	requestSvc := NewRequestService(txManager, requestRepo, equipmentRepo, workCenterRepo, teamRepo, historyRepo,
		lockRepo, directory, engine, nil, logger).WithClock(clock.Now)
	equipSvc := NewEquipmentService(txManager, equipmentRepo, requestRepo, lockRepo, engine, nil, logger).WithClock(clock.Now)

	return &testEnv{
		store:      store,
		txManager:  txManager,
		equipment:  equipmentRepo,
		requests:   requestRepo,
		teams:      teamRepo,
		history:    historyRepo,
		clock:      clock,
		engine:     engine,
		requestSvc: requestSvc,
		equipSvc:   equipSvc,
		directory:  directory,
		queries:    NewWorkflowQueryService(requestRepo).WithClock(clock.Now),
		reports:    NewReportService(requestRepo, equipmentRepo, teamRepo, logger).WithClock(clock.Now),
	}
}

func (e *testEnv) mustEquipment(t *testing.T, serial, department string) *entities.Equipment {
	t.Helper()
	eq, err := e.equipSvc.CreateEquipment(context.Background(), dto.CreateEquipmentDTO{
		Name:         "Станок " + serial,
		SerialNumber: serial,
		Department:   department,
	})
	require.NoError(t, err)
	return eq
}

func (e *testEnv) mustRequest(t *testing.T, subject string, equipmentID *string) *dto.RequestDTO {
	t.Helper()
	req, err := e.requestSvc.CreateRequest(context.Background(), dto.CreateRequestDTO{
		Subject:     subject,
		Type:        string(entities.RequestTypeCorrective),
		EquipmentID: null.StringFromPtr(equipmentID),
	})
	require.NoError(t, err)
	return req
}

func (e *testEnv) mustTransition(t *testing.T, id string, stage entities.Stage) *entities.MaintenanceRequest {
	t.Helper()
	req, err := e.engine.TransitionStage(context.Background(), id, stage)
	require.NoError(t, err)
	return req
}

func (e *testEnv) equipmentState(t *testing.T, id string) *entities.Equipment {
	t.Helper()
	eq, err := e.equipment.EquipmentRepositoryInterface.FindByID(context.Background(), id)
	require.NoError(t, err)
	return eq
}

// Package memory - хранилище в памяти процесса для тестов, демо и одиночного экземпляра.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/contextkeys"
)

var _ repositories.TxManagerInterface = (*TxManager)(nil)

// state хранит записи по значению: наружу отдаются только копии.
type state struct {
	equipment      map[string]entities.Equipment
	equipmentOrder []string
	serials        map[string]string

	requests     map[string]entities.MaintenanceRequest
	requestOrder []string

	teams     map[string]entities.MaintenanceTeam
	teamOrder []string
	teamNames map[string]string

	technicians     map[string]entities.Technician
	technicianOrder []string

	workCenters     map[string]entities.WorkCenter
	workCenterOrder []string
	workCenterNames map[string]string

	history map[string][]entities.RequestHistory
}

func newState() *state {
	return &state{
		equipment:       make(map[string]entities.Equipment),
		serials:         make(map[string]string),
		requests:        make(map[string]entities.MaintenanceRequest),
		teams:           make(map[string]entities.MaintenanceTeam),
		teamNames:       make(map[string]string),
		technicians:     make(map[string]entities.Technician),
		workCenters:     make(map[string]entities.WorkCenter),
		workCenterNames: make(map[string]string),
		history:         make(map[string][]entities.RequestHistory),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	history := make(map[string][]entities.RequestHistory, len(s.history))
	for k, v := range s.history {
		history[k] = slices.Clone(v)
	}
	return &state{
		equipment:       cloneMap(s.equipment),
		equipmentOrder:  slices.Clone(s.equipmentOrder),
		serials:         cloneMap(s.serials),
		requests:        cloneMap(s.requests),
		requestOrder:    slices.Clone(s.requestOrder),
		teams:           cloneMap(s.teams),
		teamOrder:       slices.Clone(s.teamOrder),
		teamNames:       cloneMap(s.teamNames),
		technicians:     cloneMap(s.technicians),
		technicianOrder: slices.Clone(s.technicianOrder),
		workCenters:     cloneMap(s.workCenters),
		workCenterOrder: slices.Clone(s.workCenterOrder),
		workCenterNames: cloneMap(s.workCenterNames),
		history:         history,
	}
}

// Store - общее состояние всех in-memory репозиториев.
type Store struct {
	mu    sync.RWMutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

type memTx struct {
	store *Store
	state *state
}

func (s *Store) txFrom(ctx context.Context) *memTx {
	if tx, ok := ctx.Value(contextkeys.TxKey).(*memTx); ok && tx.store == s {
		return tx
	}
	return nil
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if tx := s.txFrom(ctx); tx != nil {
		return fn(tx.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write: fn обязан проверить все условия до первого изменения.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if tx := s.txFrom(ctx); tx != nil {
		return fn(tx.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// TxManager держит блокировку записи хранилища на всю транзакцию и работает с копией
// состояния. Копия публикуется только при успешном завершении fn.
// Каждая транзакция копирует все хранилище целиком, O(числа записей) на вызов:
// бэкенд рассчитан на демо и тесты, не на рабочие объемы.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.store.txFrom(ctx) != nil {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	tx := &memTx{store: m.store, state: m.store.state.clone()}
	if err := fn(context.WithValue(ctx, contextkeys.TxKey, tx)); err != nil {
		return err
	}
	m.store.state = tx.state
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

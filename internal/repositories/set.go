package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Set - все репозитории одного хранилища. Блокировки выбираются отдельно.
type Set struct {
	TxManager   TxManagerInterface
	Equipment   EquipmentRepositoryInterface
	Requests    RequestRepositoryInterface
	Teams       TeamRepositoryInterface
	WorkCenters WorkCenterRepositoryInterface
	History     RequestHistoryRepositoryInterface
}

func NewPostgresSet(pool *pgxpool.Pool, logger *zap.Logger) Set {
	return Set{
		TxManager:   NewTxManager(pool),
		Equipment:   NewEquipmentRepository(pool, logger),
		Requests:    NewRequestRepository(pool, logger),
		Teams:       NewTeamRepository(pool, logger),
		WorkCenters: NewWorkCenterRepository(pool),
		History:     NewRequestHistoryRepository(pool),
	}
}

package memory

import "gearguard/internal/repositories"

func NewSet(store *Store) repositories.Set {
	return repositories.Set{
		TxManager:   NewTxManager(store),
		Equipment:   NewEquipmentRepository(store),
		Requests:    NewRequestRepository(store),
		Teams:       NewTeamRepository(store),
		WorkCenters: NewWorkCenterRepository(store),
		History:     NewRequestHistoryRepository(store),
	}
}

package repositories

import (
	"context"

	"gearguard/pkg/keylock"
)

// LockRepositoryInterface - эксклюзивная блокировка по ключу.
// unlock нужно вызвать ровно один раз.
type LockRepositoryInterface interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
	Driver() string
}

// LocalLockRepository - блокировки внутри одного процесса.
type LocalLockRepository struct {
	mutex *keylock.KeyedMutex
}

func NewLocalLockRepository() LockRepositoryInterface {
	return &LocalLockRepository{mutex: keylock.New()}
}

func (r *LocalLockRepository) Lock(ctx context.Context, key string) (func(), error) {
	return r.mutex.Lock(ctx, key)
}

func (r *LocalLockRepository) Driver() string { return "local" }

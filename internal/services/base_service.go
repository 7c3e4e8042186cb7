package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/metrics"
)

// Clock - источник текущего времени, подменяется в тестах.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

func newID() string { return uuid.NewString() }

// historyRecorder пишет записи истории заявки в текущей транзакции.
type historyRecorder struct {
	repo repositories.RequestHistoryRepositoryInterface
	now  Clock
}

func (h historyRecorder) record(ctx context.Context, requestID string, eventType entities.HistoryEventType, oldValue, newValue, comment *string) error {
	return h.repo.Create(ctx, &entities.RequestHistory{
		ID:        newID(),
		RequestID: requestID,
		EventType: eventType,
		OldValue:  oldValue,
		NewValue:  newValue,
		Comment:   comment,
		CreatedAt: h.now(),
	})
}

// publish - шина необязательна (в части тестов ее нет).
func publish(ctx context.Context, bus *eventbus.Bus, event eventbus.Event) {
	if bus == nil {
		return
	}
	bus.Publish(ctx, event)
}

// acquireLock берет блокировку по ключу и пишет время ожидания в метрики.
func acquireLock(ctx context.Context, lock repositories.LockRepositoryInterface, key string) (func(), error) {
	started := time.Now()
	unlock, err := lock.Lock(ctx, key)
	metrics.ObserveLockWait(lock.Driver(), time.Since(started))
	if err != nil {
		if errors.Is(err, apperrors.ErrLockNotAcquired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrLockNotAcquired, key, err)
	}
	return unlock, nil
}

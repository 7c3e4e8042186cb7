package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
)

const defaultLockTTL = 10 * time.Second

// снимаем блокировку, только если она все еще наша
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// продлеваем TTL, только если блокировка все еще наша
var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// lockClient - подмножество *redis.Client, которое нужно блокировке.
type lockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisLockRepository - блокировка на Redis для нескольких экземпляров сервиса.
// Пока блокировка удерживается, TTL продлевается каждые ttl/3, поэтому LOCK_TTL
// ограничивает только время жизни ключа после падения владельца.
type RedisLockRepository struct {
	client        lockClient
	ttl           time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

func NewRedisLockRepository(client *redis.Client, ttl, retryInterval time.Duration, logger *zap.Logger) LockRepositoryInterface {
	return newRedisLockRepository(client, ttl, retryInterval, logger)
}

func newRedisLockRepository(client lockClient, ttl, retryInterval time.Duration, logger *zap.Logger) *RedisLockRepository {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if retryInterval <= 0 {
		retryInterval = 25 * time.Millisecond
	}
	return &RedisLockRepository{client: client, ttl: ttl, retryInterval: retryInterval, logger: logger}
}

func (r *RedisLockRepository) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := constants.RedisLockPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis SETNX %s: %w", redisKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrLockNotAcquired, key, ctx.Err())
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(redisKey, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// контекст запроса мог уже завершиться, снимаем блокировку отдельно
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err(); err != nil && err != redis.Nil {
				r.logger.Warn("Не удалось снять блокировку в Redis", zap.String("key", redisKey), zap.Error(err))
			}
		})
	}, nil
}

// keepAlive продлевает TTL до вызова unlock. Если ключ уже чужой, продление прекращается.
func (r *RedisLockRepository) keepAlive(redisKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := r.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		renewed, err := renewScript.Run(ctx, r.client, []string{redisKey}, token, r.ttl.Milliseconds()).Int64()
		cancel()
		if err != nil {
			r.logger.Warn("Не удалось продлить блокировку в Redis", zap.String("key", redisKey), zap.Error(err))
			continue
		}
		if renewed == 0 {
			r.logger.Error("Блокировка в Redis потеряна до завершения операции", zap.String("key", redisKey))
			return
		}
	}
}

func (r *RedisLockRepository) Driver() string { return "redis" }

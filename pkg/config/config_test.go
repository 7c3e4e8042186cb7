package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	cfg := New()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, LockLocal, cfg.Lock.Driver)
	assert.Equal(t, 10*time.Second, cfg.Lock.TTL)
	assert.Equal(t, []string{"stdout"}, cfg.Log.Outputs)
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("LOCK_DRIVER", "redis")
	t.Setenv("LOCK_TTL", "3s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local,")

	cfg := New()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, LockRedis, cfg.Lock.Driver)
	assert.Equal(t, 3*time.Second, cfg.Lock.TTL)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.AllowedOrigins)
}

func TestNew_BadValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	t.Setenv("LOCK_TTL", "soon")
	t.Setenv("APP_TIMEZONE", "Nowhere/Land")

	cfg := New()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 10*time.Second, cfg.Lock.TTL)
	assert.Equal(t, time.UTC, cfg.Server.Location())
}

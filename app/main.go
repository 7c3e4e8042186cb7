package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"gearguard/internal/listeners"
	"gearguard/internal/repositories"
	"gearguard/internal/repositories/memory"
	"gearguard/internal/routes"
	"gearguard/internal/services"
	"gearguard/pkg/config"
	"gearguard/pkg/database/postgresql"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	applogger "gearguard/pkg/logger"
	appmiddleware "gearguard/pkg/middleware"
	"gearguard/pkg/utils"
	"gearguard/pkg/validation"
	"gearguard/seeders"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStorage := openStorage(ctx, cfg, logger)
	defer closeStorage()

	locks, closeLocks := openLocks(ctx, cfg, logger)
	defer closeLocks()

	bus := eventbus.New(logger.Named("eventbus"))
	listeners.NewAuditListener(logger).Register(bus)

	svc := services.NewServices(repos, locks, bus, logger)

	if cfg.SeedDemo {
		if err := seeders.SeedDemo(ctx, svc, logger.Named("seed")); err != nil {
			logger.Fatal("Ошибка наполнения демо-данными", zap.Error(err))
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	e.Use(appmiddleware.InjectLogger(logger))
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))

	routes.InitRouter(e, svc, routes.NewLoggers(logger), cfg.Server.Location())

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Driver), zap.String("locks", locks.Driver()))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	bus.Close()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.Set, func()) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgresql.ConnectDB(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
		}
		if cfg.Postgres.MigrateOnStart {
			if err := postgresql.Migrate(ctx, pool, logger); err != nil {
				logger.Fatal("Ошибка применения миграций", zap.Error(err))
			}
		}
		return repositories.NewPostgresSet(pool, logger), pool.Close
	case config.StorageMemory:
		logger.Warn("Используется хранилище в памяти, данные не сохраняются между перезапусками")
		return memory.NewSet(memory.NewStore()), func() {}
	default:
		logger.Fatal("Неизвестный драйвер хранилища", zap.String("driver", cfg.Storage.Driver))
		return repositories.Set{}, nil
	}
}

func openLocks(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.LockRepositoryInterface, func()) {
	switch cfg.Lock.Driver {
	case config.LockRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := client.Ping(ctx).Result(); err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("Ошибка закрытия клиента Redis", zap.Error(err))
			}
		}
		return repositories.NewRedisLockRepository(client, cfg.Lock.TTL, cfg.Lock.RetryInterval, logger.Named("locks")), closeFn
	case config.LockLocal:
		return repositories.NewLocalLockRepository(), func() {}
	default:
		logger.Fatal("Неизвестный драйвер блокировок", zap.String("driver", cfg.Lock.Driver))
		return nil, nil
	}
}

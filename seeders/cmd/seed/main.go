package main

import (
	"context"
	"flag"
	"log"

	"gearguard/internal/repositories"
	"gearguard/internal/services"
	"gearguard/pkg/config"
	"gearguard/pkg/database/postgresql"
	"gearguard/pkg/eventbus"
	applogger "gearguard/pkg/logger"
	"gearguard/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	migrate := flag.Bool("migrate", true, "Применить миграции перед наполнением")
	flag.Parse()

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	log.Println("📦 Используется DSN:", cfg.Postgres.DSN)
	pool, err := postgresql.ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer pool.Close()

	if *migrate {
		if err := postgresql.Migrate(ctx, pool, logger); err != nil {
			log.Fatalf("❌ Ошибка миграций: %v", err)
		}
	}

	bus := eventbus.New(logger)
	svc := services.NewServices(repositories.NewPostgresSet(pool, logger), repositories.NewLocalLockRepository(), bus, logger)

	if err := seeders.SeedDemo(ctx, svc, logger); err != nil {
		log.Fatalf("❌ Ошибка наполнения демо-данными: %v", err)
	}
	bus.Close()

	log.Println("======================================================")
}

package services

import (
	"go.uber.org/zap"

	"gearguard/internal/repositories"
	"gearguard/pkg/eventbus"
)

// Services - собранный граф сервисов поверх одного набора репозиториев.
type Services struct {
	Engine    StageTransitionServiceInterface
	Requests  RequestServiceInterface
	Equipment EquipmentServiceInterface
	Importer  EquipmentImportServiceInterface
	Directory DirectoryServiceInterface
	Workflow  WorkflowQueryServiceInterface
	Reports   ReportServiceInterface
}

func NewServices(repos repositories.Set, locks repositories.LockRepositoryInterface, bus *eventbus.Bus, logger *zap.Logger) *Services {
	engine := NewStageTransitionService(repos.TxManager, repos.Requests, repos.Equipment, repos.History, locks, bus, logger.Named("engine"))
	directory := NewDirectoryService(repos.Teams, repos.WorkCenters, logger.Named("directory"))

	requests := NewRequestService(
		repos.TxManager, repos.Requests, repos.Equipment, repos.WorkCenters, repos.Teams, repos.History,
		locks, directory, engine, bus, logger.Named("requests"),
	)
	equipment := NewEquipmentService(repos.TxManager, repos.Equipment, repos.Requests, locks, engine, bus, logger.Named("equipment"))

	return &Services{
		Engine:    engine,
		Requests:  requests,
		Equipment: equipment,
		Importer:  NewEquipmentImportService(equipment, logger.Named("import")),
		Directory: directory,
		Workflow:  NewWorkflowQueryService(repos.Requests),
		Reports:   NewReportService(repos.Requests, repos.Equipment, repos.Teams, logger.Named("reports")),
	}
}

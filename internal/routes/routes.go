package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/controllers"
	"gearguard/internal/services"
)

type Loggers struct {
	Main      *zap.Logger
	Request   *zap.Logger
	Equipment *zap.Logger
	Directory *zap.Logger
	Report    *zap.Logger
}

// NewLoggers - один логгер на все группы маршрутов, различаются именем.
func NewLoggers(base *zap.Logger) *Loggers {
	return &Loggers{
		Main:      base,
		Request:   base.Named("requests"),
		Equipment: base.Named("equipment"),
		Directory: base.Named("directory"),
		Report:    base.Named("reports"),
	}
}

func InitRouter(e *echo.Echo, svc *services.Services, loggers *Loggers, location *time.Location) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")

	requestCtrl := controllers.NewRequestController(svc.Requests, svc.Workflow, location, loggers.Request)
	equipmentCtrl := controllers.NewEquipmentController(svc.Equipment, svc.Importer, loggers.Equipment)
	directoryCtrl := controllers.NewDirectoryController(svc.Directory, loggers.Directory)
	reportCtrl := controllers.NewReportController(svc.Reports, loggers.Report)

	runRequestRouter(api, requestCtrl)
	runEquipmentRouter(api, equipmentCtrl)
	runDirectoryRouter(api, directoryCtrl)
	runReportRouter(api, reportCtrl)
	runSystemRouter(e)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}

package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runReportRouter(api *echo.Group, ctrl *controllers.ReportController) {
	reports := api.Group("/reports")
	reports.GET("/technician-workload", ctrl.GetTechnicianWorkload)
	reports.GET("/request-volume-trend", ctrl.GetRequestVolumeTrend)
	reports.GET("/equipment-breakdowns", ctrl.GetEquipmentBreakdowns)
	reports.GET("/maintenance-type-impact", ctrl.GetMaintenanceTypeImpact)
	reports.GET("/request-aging", ctrl.GetRequestAging)
	reports.GET("/team-productivity", ctrl.GetTeamProductivity)
	reports.GET("/export", ctrl.ExportReport)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runEquipmentRouter(api *echo.Group, ctrl *controllers.EquipmentController) {
	equipment := api.Group("/equipment")
	equipment.POST("", ctrl.CreateEquipment)
	equipment.GET("", ctrl.GetEquipments)
	equipment.POST("/import", ctrl.ImportEquipment)
	equipment.GET("/:id", ctrl.FindEquipment)
	equipment.GET("/:id/requests", ctrl.GetEquipmentRequests)
	equipment.POST("/:id/scrap", ctrl.ScrapEquipment)
	equipment.POST("/:id/restore", ctrl.RestoreEquipment)
	equipment.POST("/:id/reconcile", ctrl.ReconcileEquipment)
}

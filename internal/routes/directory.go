package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runDirectoryRouter(api *echo.Group, ctrl *controllers.DirectoryController) {
	teams := api.Group("/teams")
	teams.POST("", ctrl.CreateTeam)
	teams.GET("", ctrl.GetTeams)
	teams.GET("/:id", ctrl.FindTeam)
	teams.POST("/:id/technicians", ctrl.AddTechnician)

	api.GET("/technicians/:id", ctrl.FindTechnician)

	workCenters := api.Group("/work-centers")
	workCenters.POST("", ctrl.CreateWorkCenter)
	workCenters.GET("", ctrl.GetWorkCenters)
	workCenters.GET("/:id", ctrl.FindWorkCenter)
}

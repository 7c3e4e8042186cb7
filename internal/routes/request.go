package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runRequestRouter(api *echo.Group, ctrl *controllers.RequestController) {
	requests := api.Group("/requests")
	requests.POST("", ctrl.CreateRequest)
	requests.GET("", ctrl.GetRequests)
	requests.GET("/board", ctrl.GetBoard)
	requests.GET("/calendar", ctrl.GetCalendar)
	requests.GET("/:id", ctrl.FindRequest)
	requests.PATCH("/:id", ctrl.UpdateRequest)
	requests.PUT("/:id/stage", ctrl.TransitionStage)
	requests.GET("/:id/history", ctrl.GetHistory)
}

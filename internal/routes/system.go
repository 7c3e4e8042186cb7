package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gearguard/pkg/utils"
)

func runSystemRouter(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return utils.SuccessResponse(c, nil, "ok", http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

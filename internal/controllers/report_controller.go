package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/services"
	"gearguard/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{
		reportService: reportService,
		logger:        logger,
	}
}

func (c *ReportController) GetTechnicianWorkload(ctx echo.Context) error {
	res, err := c.reportService.TechnicianWorkload(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Загрузка техников", http.StatusOK)
}

func (c *ReportController) GetRequestVolumeTrend(ctx echo.Context) error {
	res, err := c.reportService.RequestVolumeTrend(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Динамика заявок по месяцам", http.StatusOK)
}

func (c *ReportController) GetEquipmentBreakdowns(ctx echo.Context) error {
	res, err := c.reportService.EquipmentBreakdowns(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование с наибольшим числом поломок", http.StatusOK)
}

func (c *ReportController) GetMaintenanceTypeImpact(ctx echo.Context) error {
	res, err := c.reportService.MaintenanceTypeImpact(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Соотношение типов обслуживания", http.StatusOK)
}

func (c *ReportController) GetRequestAging(ctx echo.Context) error {
	res, err := c.reportService.RequestAging(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявки по этапам", http.StatusOK)
}

func (c *ReportController) GetTeamProductivity(ctx echo.Context) error {
	res, err := c.reportService.TeamProductivity(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Производительность команд", http.StatusOK)
}

// ExportReport отдает все отчеты одной книгой xlsx.
func (c *ReportController) ExportReport(ctx echo.Context) error {
	f, err := c.reportService.ExportWorkbook(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Warn("ExportReport: не удалось закрыть книгу", zap.Error(err))
		}
	}()

	fileName := services.ExportFileName(time.Now())
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

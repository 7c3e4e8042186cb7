package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/services"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/utils"
)

const dateLayout = "2006-01-02"

type RequestController struct {
	requestService  services.RequestServiceInterface
	workflowService services.WorkflowQueryServiceInterface
	location        *time.Location
	logger          *zap.Logger
}

func NewRequestController(
	requestService services.RequestServiceInterface,
	workflowService services.WorkflowQueryServiceInterface,
	location *time.Location,
	logger *zap.Logger,
) *RequestController {
	return &RequestController{
		requestService:  requestService,
		workflowService: workflowService,
		location:        location,
		logger:          logger,
	}
}

func bindError(err error) error {
	return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil)
}

func (c *RequestController) CreateRequest(ctx echo.Context) error {
	var payload dto.CreateRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Warn("CreateRequest: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.CreateRequest(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно создана", http.StatusCreated)
}

func (c *RequestController) GetRequests(ctx echo.Context) error {
	var filter dto.RequestListFilterDTO
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверные параметры фильтра", err, nil), c.logger)
	}
	if err := ctx.Validate(&filter); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.ListRequests(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список заявок успешно получен", http.StatusOK, len(res))
}

func (c *RequestController) FindRequest(ctx echo.Context) error {
	res, err := c.requestService.GetRequest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно найдена", http.StatusOK)
}

func (c *RequestController) UpdateRequest(ctx echo.Context) error {
	var payload dto.UpdateRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Warn("UpdateRequest: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.UpdateRequestFields(ctx.Request().Context(), ctx.Param("id"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно обновлена", http.StatusOK)
}

func (c *RequestController) TransitionStage(ctx echo.Context) error {
	var payload dto.TransitionStageDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.TransitionStage(ctx.Request().Context(), ctx.Param("id"), payload.Stage)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Этап заявки изменен", http.StatusOK)
}

func (c *RequestController) GetHistory(ctx echo.Context) error {
	list, err := c.requestService.GetHistory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.RequestHistoryDTO{List: list}, "История заявки успешно получена", http.StatusOK, len(list))
}

func (c *RequestController) GetBoard(ctx echo.Context) error {
	columns, err := c.workflowService.ByStage(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, columns, "Доска заявок успешно получена", http.StatusOK)
}

// GetCalendar: ?date=YYYY-MM-DD - открытые заявки на день,
// ?from=&to= - профилактика за период.
func (c *RequestController) GetCalendar(ctx echo.Context) error {
	if raw := ctx.QueryParam("date"); raw != "" {
		date, err := time.ParseInLocation(dateLayout, raw, c.location)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewValidationError("date", "ожидается дата в формате YYYY-MM-DD"), c.logger)
		}
		res, err := c.workflowService.ByScheduledDate(ctx.Request().Context(), date)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return utils.SuccessResponse(ctx, res, "Заявки на день успешно получены", http.StatusOK, len(res))
	}

	from, err := time.ParseInLocation(dateLayout, ctx.QueryParam("from"), c.location)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("from", "ожидается дата в формате YYYY-MM-DD"), c.logger)
	}
	to, err := time.ParseInLocation(dateLayout, ctx.QueryParam("to"), c.location)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("to", "ожидается дата в формате YYYY-MM-DD"), c.logger)
	}
	res, err := c.workflowService.Calendar(ctx.Request().Context(), from, to)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Календарь обслуживания успешно получен", http.StatusOK, len(res))
}

package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
	Total   *int        `json:"total,omitempty"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...int) error {
	response := &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	}
	if len(total) > 0 {
		response.Total = &total[0]
	}
	return ctx.JSON(code, response)
}

// ErrorResponse отдает конверт с ошибкой. Внутренние ошибки логируются,
// текст клиенту не раскрывается.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code := HTTPStatus(err)
	message := err.Error()

	if code >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("Внутренняя ошибка",
				zap.String("method", ctx.Request().Method),
				zap.String("path", ctx.Path()),
				zap.Error(err),
			)
		}
		message = "Внутренняя ошибка сервера"
	}

	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    struct{}{},
		Message: message,
	})
}

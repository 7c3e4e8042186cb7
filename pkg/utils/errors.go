package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	apperrors "gearguard/pkg/errors"
)

// HTTPStatus выбирает код ответа для ошибки приложения.
func HTTPStatus(err error) int {
	var httpErr *apperrors.HttpError
	var validationErr *apperrors.ValidationError
	var validatorErrs validator.ValidationErrors
	var inconsistentErr *apperrors.InconsistentStateError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &inconsistentErr):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr), errors.As(err, &validatorErrs), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrLockNotAcquired):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

package errors

import (
	"errors"
	"fmt"
)

var (
	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
	ErrConflict   = fmt.Errorf("запись с такими данными уже существует")

	// Блокировки
	ErrLockNotAcquired = fmt.Errorf("не удалось получить блокировку")
)

// ValidationError - входные данные не прошли проверку. Вызывающая сторона должна исправить запрос.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field string, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation сообщает, является ли err (или что-то в его цепочке) ошибкой валидации.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InconsistentStateError возникает, когда оборудование, к которому привязана заявка,
// исчезло между чтением заявки и записью состояния списания.
type InconsistentStateError struct {
	EquipmentID string
	Err         error
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("несогласованное состояние оборудования %s: %v", e.EquipmentID, e.Err)
}

func (e *InconsistentStateError) Unwrap() error { return e.Err }

// HttpError - ошибка с уже выбранным HTTP-кодом, используется контроллерами.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

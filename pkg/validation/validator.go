package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator подключается к echo как e.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New: null-типы, правила stage/request_type/priority и имена полей из тегов json/query.
func New() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)

	registerNullTypes(v)

	// сервер не должен стартовать без кастомных правил
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// fieldName возвращает имя поля так, как его видит клиент API.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "query"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

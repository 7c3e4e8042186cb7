package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"gearguard/internal/entities"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("stage", isStage); err != nil {
		return err
	}
	if err := v.RegisterValidation("request_type", isRequestType); err != nil {
		return err
	}
	if err := v.RegisterValidation("priority", isPriority); err != nil {
		return err
	}
	return nil
}

// isStage - "New", "In Progress", "InProgress", "in-progress", "Repaired", "Scrap"
func isStage(fl validator.FieldLevel) bool {
	_, err := entities.ParseStage(fl.Field().String())
	return err == nil
}

func isRequestType(fl validator.FieldLevel) bool {
	_, err := entities.ParseRequestType(fl.Field().String())
	return err == nil
}

// isPriority - пустая строка тоже допустима (будет medium)
func isPriority(fl validator.FieldLevel) bool {
	if strings.TrimSpace(fl.Field().String()) == "" {
		return true
	}
	_, err := entities.ParsePriority(fl.Field().String())
	return err == nil
}

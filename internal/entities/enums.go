package entities

import (
	"strings"

	apperrors "gearguard/pkg/errors"
)

// Stage - этап заявки в workflow. Переход возможен из любого этапа в любой.
type Stage string

const (
	StageNew        Stage = "New"
	StageInProgress Stage = "In Progress"
	StageRepaired   Stage = "Repaired"
	StageScrap      Stage = "Scrap"
)

// Stages - порядок колонок канбан-доски.
var Stages = []Stage{StageNew, StageInProgress, StageRepaired, StageScrap}

// IsOpen - заявка еще в работе (для просрочки и календаря).
func (s Stage) IsOpen() bool {
	return s == StageNew || s == StageInProgress
}

func (s Stage) Valid() bool {
	switch s {
	case StageNew, StageInProgress, StageRepaired, StageScrap:
		return true
	}
	return false
}

// ParseStage принимает "In Progress", "InProgress", "in-progress" и т.п. без учета регистра.
func ParseStage(raw string) (Stage, error) {
	switch normalize(raw) {
	case "new":
		return StageNew, nil
	case "inprogress":
		return StageInProgress, nil
	case "repaired":
		return StageRepaired, nil
	case "scrap":
		return StageScrap, nil
	}
	return "", apperrors.NewValidationError("stage", "неизвестный этап %q", raw)
}

type RequestType string

const (
	RequestTypeCorrective RequestType = "Corrective"
	RequestTypePreventive RequestType = "Preventive"
)

func ParseRequestType(raw string) (RequestType, error) {
	switch normalize(raw) {
	case "corrective":
		return RequestTypeCorrective, nil
	case "preventive":
		return RequestTypePreventive, nil
	}
	return "", apperrors.NewValidationError("type", "неизвестный тип заявки %q", raw)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority: пустое значение - medium.
func ParsePriority(raw string) (Priority, error) {
	switch normalize(raw) {
	case "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	}
	return "", apperrors.NewValidationError("priority", "неизвестный приоритет %q", raw)
}

// ScrapOrigin - кто списал оборудование.
type ScrapOrigin string

const (
	ScrapOriginNone     ScrapOrigin = ""
	ScrapOriginManual   ScrapOrigin = "manual"
	ScrapOriginWorkflow ScrapOrigin = "workflow"
)

func normalize(raw string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(raw)))
}

package entities

import (
	"time"

	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

type Equipment struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	SerialNumber string     `json:"serial_number" db:"serial_number"`
	Category     string     `json:"category" db:"category"`
	Company      string     `json:"company" db:"company"`
	Department   string     `json:"department" db:"department"`
	Location     string     `json:"location" db:"location"`
	Owner        string     `json:"owner" db:"owner"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty" db:"purchase_date"`
	WarrantyInfo string     `json:"warranty_info" db:"warranty_info"`
	Description  string     `json:"description" db:"description"`

	IsScrapped  bool        `json:"is_scrapped" db:"is_scrapped"`
	ScrapDate   *time.Time  `json:"scrap_date" db:"scrap_date"`
	ScrapReason *string     `json:"scrap_reason" db:"scrap_reason"`
	ScrapOrigin ScrapOrigin `json:"scrap_origin,omitempty" db:"scrap_origin"`

	types.BaseEntity
}

// ScrapState - три поля списания плюс источник. Пишутся только вместе.
type ScrapState struct {
	IsScrapped  bool
	ScrapDate   *time.Time
	ScrapReason *string
	Origin      ScrapOrigin
}

// NotScrapped - состояние после восстановления: все поля очищены.
func NotScrapped() ScrapState {
	return ScrapState{}
}

func Scrapped(at time.Time, reason string, origin ScrapOrigin) ScrapState {
	return ScrapState{IsScrapped: true, ScrapDate: &at, ScrapReason: &reason, Origin: origin}
}

func (s ScrapState) Validate() error {
	if s.IsScrapped {
		if s.ScrapDate == nil {
			return apperrors.NewValidationError("scrap_date", "для списанного оборудования нужна дата списания")
		}
		if s.Origin != ScrapOriginManual && s.Origin != ScrapOriginWorkflow {
			return apperrors.NewValidationError("scrap_origin", "неизвестный источник списания %q", s.Origin)
		}
		return nil
	}
	if s.ScrapDate != nil || s.ScrapReason != nil || s.Origin != ScrapOriginNone {
		return apperrors.NewValidationError("is_scrapped", "у несписанного оборудования не может быть даты, причины или источника списания")
	}
	return nil
}

// ScrapState возвращает текущее состояние списания.
func (e *Equipment) ScrapState() ScrapState {
	return ScrapState{IsScrapped: e.IsScrapped, ScrapDate: e.ScrapDate, ScrapReason: e.ScrapReason, Origin: e.ScrapOrigin}
}

// ApplyScrapState перезаписывает все поля списания разом.
func (e *Equipment) ApplyScrapState(s ScrapState) {
	e.IsScrapped = s.IsScrapped
	e.ScrapDate = s.ScrapDate
	e.ScrapReason = s.ScrapReason
	e.ScrapOrigin = s.Origin
}

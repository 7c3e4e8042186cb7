package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	apperrors "gearguard/pkg/errors"
)

type EquipmentImportServiceInterface interface {
	Import(ctx context.Context, r io.Reader) (*dto.EquipmentImportResultDTO, error)
}

// EquipmentImportService загружает оборудование из книги xlsx.
// Строка заголовков ищется на любом листе: нужны колонки серийного номера и наименования.
type EquipmentImportService struct {
	equipment EquipmentServiceInterface
	logger    *zap.Logger
}

func NewEquipmentImportService(equipment EquipmentServiceInterface, logger *zap.Logger) *EquipmentImportService {
	return &EquipmentImportService{equipment: equipment, logger: logger}
}

type importColumns struct {
	name, serial, category, company, department, location, owner, description int
}

var columnAliases = map[string][]string{
	"name":        {"наименование", "название", "name"},
	"serial":      {"серийный", "serial", "№", "номер"},
	"category":    {"категория", "category"},
	"company":     {"компания", "company"},
	"department":  {"отдел", "department", "подразделение"},
	"location":    {"местоположение", "место", "адрес", "location"},
	"owner":       {"ответственный", "владелец", "owner", "employee"},
	"description": {"описание", "description"},
}

func (s *EquipmentImportService) Import(ctx context.Context, r io.Reader) (*dto.EquipmentImportResultDTO, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidationError("file", "не удалось прочитать книгу xlsx: %v", err)
	}
	defer f.Close()

	var (
		rows      [][]string
		cols      importColumns
		headerRow = -1
	)
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("чтение листа %q: %w", sheet, err)
		}
		for i, row := range sheetRows {
			if c, ok := detectColumns(row); ok {
				rows, cols, headerRow = sheetRows, c, i
				break
			}
		}
		if headerRow != -1 {
			s.logger.Info("Заголовки найдены", zap.String("sheet", sheet), zap.Int("row", headerRow+1))
			break
		}
	}
	if headerRow == -1 {
		return nil, apperrors.NewValidationError("file", "не найдена шапка таблицы: нужны колонки наименования и серийного номера")
	}

	result := &dto.EquipmentImportResultDTO{Failed: []dto.ImportRowErrorDTO{}}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		line := i + 1

		name := safeGet(row, cols.name)
		serial := safeGet(row, cols.serial)
		if isTrash(name) && isTrash(serial) {
			continue
		}

		_, err := s.equipment.CreateEquipment(ctx, dto.CreateEquipmentDTO{
			Name:         name,
			SerialNumber: serial,
			Category:     safeGet(row, cols.category),
			Company:      safeGet(row, cols.company),
			Department:   safeGet(row, cols.department),
			Location:     safeGet(row, cols.location),
			Owner:        safeGet(row, cols.owner),
			Description:  safeGet(row, cols.description),
		})
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, apperrors.ErrConflict):
			result.Skipped++
		case apperrors.IsValidation(err):
			result.Failed = append(result.Failed, dto.ImportRowErrorDTO{Line: line, SerialNumber: serial, Message: err.Error()})
		default:
			return nil, fmt.Errorf("строка %d: %w", line, err)
		}
	}

	s.logger.Info("Импорт оборудования завершен",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func detectColumns(row []string) (importColumns, bool) {
	cols := importColumns{-1, -1, -1, -1, -1, -1, -1, -1}
	targets := map[string]*int{
		"name": &cols.name, "serial": &cols.serial, "category": &cols.category, "company": &cols.company,
		"department": &cols.department, "location": &cols.location, "owner": &cols.owner, "description": &cols.description,
	}
	for idx, raw := range row {
		cell := strings.ToLower(strings.TrimSpace(raw))
		if cell == "" {
			continue
		}
		for key, aliases := range columnAliases {
			if *targets[key] != -1 {
				continue
			}
			for _, alias := range aliases {
				if strings.Contains(cell, alias) {
					*targets[key] = idx
					break
				}
			}
		}
	}
	return cols, cols.name != -1 && cols.serial != -1 && cols.name != cols.serial
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isTrash - пустые и итоговые строки.
func isTrash(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	return v == "" || strings.Contains(v, "итого") || strings.Contains(v, "всего")
}

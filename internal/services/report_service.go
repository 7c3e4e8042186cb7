package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/constants"
)

// ReportServiceInterface - аналитика по заявкам. Все отчеты считаются
// на момент вызова, ничего не кэшируется.
type ReportServiceInterface interface {
	TechnicianWorkload(ctx context.Context) ([]dto.TechnicianWorkloadDTO, error)
	RequestVolumeTrend(ctx context.Context) ([]dto.VolumeTrendDTO, error)
	EquipmentBreakdowns(ctx context.Context) ([]dto.EquipmentBreakdownDTO, error)
	MaintenanceTypeImpact(ctx context.Context) (*dto.TypeImpactDTO, error)
	RequestAging(ctx context.Context) ([]dto.RequestAgingDTO, error)
	TeamProductivity(ctx context.Context) ([]dto.TeamProductivityDTO, error)
	ExportWorkbook(ctx context.Context) (*excelize.File, error)
}

type ReportService struct {
	requestRepo   repositories.RequestRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	logger        *zap.Logger
	now           Clock
}

func NewReportService(
	requestRepo repositories.RequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		requestRepo:   requestRepo,
		equipmentRepo: equipmentRepo,
		teamRepo:      teamRepo,
		logger:        logger,
		now:           systemClock,
	}
}

func (s *ReportService) WithClock(now Clock) *ReportService {
	s.now = now
	return s
}

func (s *ReportService) allRequests(ctx context.Context) ([]*entities.MaintenanceRequest, error) {
	return s.requestRepo.List(ctx, entities.RequestFilter{})
}

// TechnicianWorkload: заявки без техника собираются в отдельную строку "Не назначен".
func (s *ReportService) TechnicianWorkload(ctx context.Context) ([]dto.TechnicianWorkloadDTO, error) {
	requests, err := s.allRequests(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for _, team := range teams {
		for _, tech := range team.Technicians {
			names[tech.ID] = tech.Name
		}
	}

	now := s.now()
	result := make([]dto.TechnicianWorkloadDTO, 0)
	index := make(map[string]int)
	for _, r := range requests {
		key := ""
		if r.TechnicianID != nil {
			key = *r.TechnicianID
		}
		i, ok := index[key]
		if !ok {
			row := dto.TechnicianWorkloadDTO{TechnicianID: key, Name: constants.ReportUnassignedTechnician}
			if key != "" {
				row.Name = names[key]
			}
			result = append(result, row)
			i = len(result) - 1
			index[key] = i
		}
		result[i].Count++
		if r.IsOverdue(now) {
			result[i].Overdue++
		}
	}
	return result, nil
}

// RequestVolumeTrend группирует заявки с датой по месяцу (UTC), по возрастанию.
func (s *ReportService) RequestVolumeTrend(ctx context.Context) ([]dto.VolumeTrendDTO, error) {
	requests, err := s.allRequests(ctx)
	if err != nil {
		return nil, err
	}
	months := make(map[string]*dto.VolumeTrendDTO)
	for _, r := range requests {
		if r.ScheduledDate == nil {
			continue
		}
		month := r.ScheduledDate.UTC().Format("2006-01")
		row, ok := months[month]
		if !ok {
			row = &dto.VolumeTrendDTO{Month: month}
			months[month] = row
		}
		if r.Type == entities.RequestTypeCorrective {
			row.Corrective++
		} else {
			row.Preventive++
		}
	}

	result := make([]dto.VolumeTrendDTO, 0, len(months))
	for _, row := range months {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result, nil
}

// EquipmentBreakdowns - оборудование с наибольшим числом корректирующих заявок.
func (s *ReportService) EquipmentBreakdowns(ctx context.Context) ([]dto.EquipmentBreakdownDTO, error) {
	corrective := entities.RequestTypeCorrective
	requests, err := s.requestRepo.List(ctx, entities.RequestFilter{Type: &corrective})
	if err != nil {
		return nil, err
	}
	equipment, err := s.equipmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(equipment))
	for _, e := range equipment {
		names[e.ID] = e.Name
	}

	result := make([]dto.EquipmentBreakdownDTO, 0)
	index := make(map[string]int)
	for _, r := range requests {
		if r.EquipmentID == nil {
			continue
		}
		i, ok := index[*r.EquipmentID]
		if !ok {
			result = append(result, dto.EquipmentBreakdownDTO{EquipmentID: *r.EquipmentID, Name: names[*r.EquipmentID]})
			i = len(result) - 1
			index[*r.EquipmentID] = i
		}
		result[i].Count++
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	if len(result) > constants.ReportTopBreakdownsLimit {
		result = result[:constants.ReportTopBreakdownsLimit]
	}
	return result, nil
}

func (s *ReportService) MaintenanceTypeImpact(ctx context.Context) (*dto.TypeImpactDTO, error) {
	requests, err := s.allRequests(ctx)
	if err != nil {
		return nil, err
	}
	impact := &dto.TypeImpactDTO{}
	for _, r := range requests {
		switch r.Type {
		case entities.RequestTypeCorrective:
			impact.Corrective++
		case entities.RequestTypePreventive:
			impact.Preventive++
		}
	}
	return impact, nil
}

func (s *ReportService) RequestAging(ctx context.Context) ([]dto.RequestAgingDTO, error) {
	requests, err := s.allRequests(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	result := make([]dto.RequestAgingDTO, len(entities.Stages))
	index := make(map[entities.Stage]int, len(entities.Stages))
	for i, stage := range entities.Stages {
		result[i] = dto.RequestAgingDTO{Stage: stage}
		index[stage] = i
	}
	for _, r := range requests {
		i, ok := index[r.Stage]
		if !ok {
			continue
		}
		result[i].Count++
		if r.IsOverdue(now) {
			result[i].Overdue++
		}
	}
	return result, nil
}

// TeamProductivity: средняя длительность по всем заявкам команды,
// заявка без длительности считается как 0.
func (s *ReportService) TeamProductivity(ctx context.Context) ([]dto.TeamProductivityDTO, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.allRequests(ctx)
	if err != nil {
		return nil, err
	}

	type acc struct {
		count int
		total float64
	}
	byTeam := make(map[string]*acc)
	for _, r := range requests {
		if r.TeamID == nil {
			continue
		}
		a, ok := byTeam[*r.TeamID]
		if !ok {
			a = &acc{}
			byTeam[*r.TeamID] = a
		}
		a.count++
		if r.Duration != nil {
			a.total += *r.Duration
		}
	}

	result := make([]dto.TeamProductivityDTO, 0, len(teams))
	for _, team := range teams {
		row := dto.TeamProductivityDTO{TeamID: team.ID, Name: team.Name}
		if a, ok := byTeam[team.ID]; ok {
			row.Requests = a.count
			row.AverageDuration = a.total / float64(a.count)
		}
		result = append(result, row)
	}
	return result, nil
}

type reportSheet struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// ExportWorkbook собирает все отчеты в одну книгу xlsx, по листу на отчет.
func (s *ReportService) ExportWorkbook(ctx context.Context) (*excelize.File, error) {
	sheets, err := s.collectSheets(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}

		if err := f.SetSheetRow(sheet.name, "A1", &sheet.headers); err != nil {
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(sheet.headers), 1)
		if err := f.SetCellStyle(sheet.name, "A1", last, style); err != nil {
			return nil, err
		}
		for r, row := range sheet.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				return nil, err
			}
		}
		f.SetColWidth(sheet.name, "A", "A", 30)
	}

	s.logger.Info("Сформирован отчет xlsx", zap.Int("sheets", len(sheets)))
	return f, nil
}

func (s *ReportService) collectSheets(ctx context.Context) ([]reportSheet, error) {
	workload, err := s.TechnicianWorkload(ctx)
	if err != nil {
		return nil, err
	}
	trend, err := s.RequestVolumeTrend(ctx)
	if err != nil {
		return nil, err
	}
	breakdowns, err := s.EquipmentBreakdowns(ctx)
	if err != nil {
		return nil, err
	}
	impact, err := s.MaintenanceTypeImpact(ctx)
	if err != nil {
		return nil, err
	}
	aging, err := s.RequestAging(ctx)
	if err != nil {
		return nil, err
	}
	productivity, err := s.TeamProductivity(ctx)
	if err != nil {
		return nil, err
	}

	workloadSheet := reportSheet{name: "Загрузка техников", headers: []string{"Техник", "Заявок", "Просрочено"}}
	for _, w := range workload {
		workloadSheet.rows = append(workloadSheet.rows, []interface{}{w.Name, w.Count, w.Overdue})
	}
	trendSheet := reportSheet{name: "Динамика заявок", headers: []string{"Месяц", "Corrective", "Preventive"}}
	for _, t := range trend {
		trendSheet.rows = append(trendSheet.rows, []interface{}{t.Month, t.Corrective, t.Preventive})
	}
	breakdownSheet := reportSheet{name: "Отказы оборудования", headers: []string{"Оборудование", "Поломок"}}
	for _, b := range breakdowns {
		breakdownSheet.rows = append(breakdownSheet.rows, []interface{}{b.Name, b.Count})
	}
	impactSheet := reportSheet{
		name:    "Типы обслуживания",
		headers: []string{"Тип", "Заявок"},
		rows: [][]interface{}{
			{string(entities.RequestTypeCorrective), impact.Corrective},
			{string(entities.RequestTypePreventive), impact.Preventive},
		},
	}
	agingSheet := reportSheet{name: "Этапы заявок", headers: []string{"Этап", "Заявок", "Просрочено"}}
	for _, a := range aging {
		agingSheet.rows = append(agingSheet.rows, []interface{}{string(a.Stage), a.Count, a.Overdue})
	}
	productivitySheet := reportSheet{name: "Производительность команд", headers: []string{"Команда", "Заявок", "Средняя длительность, ч"}}
	for _, p := range productivity {
		productivitySheet.rows = append(productivitySheet.rows, []interface{}{p.Name, p.Requests, fmt.Sprintf("%.2f", p.AverageDuration)})
	}

	return []reportSheet{workloadSheet, trendSheet, breakdownSheet, impactSheet, agingSheet, productivitySheet}, nil
}

// ExportFileName - имя файла выгрузки на дату now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("gearguard_report_%s.xlsx", now.Format("2006-01-02"))
}

package seeders

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/services"
)

// SeedDemo наполняет пустое хранилище демонстрационными данными.
// Если оборудование уже есть, ничего не делает.
func SeedDemo(ctx context.Context, svc *services.Services, logger *zap.Logger) error {
	existing, err := svc.Equipment.ListEquipment(ctx)
	if err != nil {
		return fmt.Errorf("не удалось проверить хранилище: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Демо-данные пропущены: хранилище не пустое", zap.Int("equipment", len(existing)))
		return nil
	}

	logger.Info("▶️  Запуск наполнения демо-данными...")

	technicians := make(map[string]string)
	for _, t := range teamsData {
		team, err := svc.Directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: t.Name, Company: "GearGuard Industries"})
		if err != nil {
			return fmt.Errorf("команда %q: %w", t.Name, err)
		}
		for _, member := range t.Technicians {
			tech, err := svc.Directory.AddTechnician(ctx, team.ID, dto.CreateTechnicianDTO{Name: member.Name, Role: member.Role})
			if err != nil {
				return fmt.Errorf("техник %q: %w", member.Name, err)
			}
			technicians[member.Name] = tech.ID
		}
	}

	equipment := make(map[string]string)
	for _, e := range equipmentData {
		created, err := svc.Equipment.CreateEquipment(ctx, dto.CreateEquipmentDTO{
			Name:         e.Name,
			SerialNumber: e.Serial,
			Category:     e.Category,
			Company:      "GearGuard Industries",
			Department:   e.Department,
			Owner:        e.Owner,
			Description:  e.Description,
		})
		if err != nil {
			return fmt.Errorf("оборудование %q: %w", e.Serial, err)
		}
		equipment[e.Serial] = created.ID
	}

	workCenters := make(map[string]string)
	for _, wc := range workCentersData {
		created, err := svc.Directory.CreateWorkCenter(ctx, dto.CreateWorkCenterDTO{
			Name:               wc.Name,
			Code:               wc.Code,
			Tag:                wc.Tag,
			CostPerHour:        wc.CostPerHour,
			CapacityEfficiency: wc.Efficiency,
			OEETarget:          wc.OEETarget,
		})
		if err != nil {
			return fmt.Errorf("рабочий центр %q: %w", wc.Code, err)
		}
		workCenters[wc.Code] = created.ID
	}

	today := time.Now().UTC().Truncate(24 * time.Hour).Add(9 * time.Hour)
	for _, r := range requestsData {
		payload := dto.CreateRequestDTO{
			Subject:       r.Subject,
			Type:          string(r.Type),
			TechnicianID:  null.StringFrom(technicians[r.Technician]),
			ScheduledDate: null.TimeFrom(today.AddDate(0, 0, r.DayOffset)),
			Duration:      null.Float64From(r.Duration),
			Priority:      string(r.Priority),
			Notes:         r.Notes,
			Instructions:  r.Instructions,
		}
		if r.Equipment != "" {
			payload.EquipmentID = null.StringFrom(equipment[r.Equipment])
		}
		if r.WorkCenter != "" {
			payload.WorkCenterID = null.StringFrom(workCenters[r.WorkCenter])
		}

		created, err := svc.Requests.CreateRequest(ctx, payload)
		if err != nil {
			return fmt.Errorf("заявка %q: %w", r.Subject, err)
		}
		if created.Stage != r.Stage {
			if _, err := svc.Requests.TransitionStage(ctx, created.ID, string(r.Stage)); err != nil {
				return fmt.Errorf("этап заявки %q: %w", r.Subject, err)
			}
		}
	}

	logger.Info("✅ Наполнение демо-данными завершено",
		zap.Int("teams", len(teamsData)),
		zap.Int("equipment", len(equipmentData)),
		zap.Int("requests", len(requestsData)),
	)
	return nil
}

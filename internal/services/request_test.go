package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

func TestCreateRequest_DefaultsAndTeamByDepartment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team, err := env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "Mechanics"})
	require.NoError(t, err)
	eq := env.mustEquipment(t, "SN-1", " mechanics ")

	req, err := env.requestSvc.CreateRequest(ctx, dto.CreateRequestDTO{
		Subject:     "  Шум в редукторе  ",
		Type:        "corrective",
		EquipmentID: null.StringFrom(eq.ID),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "Шум в редукторе", req.Subject)
	assert.Equal(t, entities.StageNew, req.Stage)
	assert.Equal(t, entities.RequestTypeCorrective, req.Type)
	assert.Equal(t, entities.PriorityMedium, req.Priority)
	require.NotNil(t, req.TeamID)
	assert.Equal(t, team.ID, *req.TeamID)
	assert.False(t, req.IsOverdue)

	history, err := env.requestSvc.GetHistory(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entities.HistoryCreate, history[0].EventType)
}

func TestCreateRequest_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eq := env.mustEquipment(t, "SN-1", "")
	wc, err := env.directory.CreateWorkCenter(ctx, dto.CreateWorkCenterDTO{Name: "Покраска"})
	require.NoError(t, err)

	cases := []struct {
		name    string
		payload dto.CreateRequestDTO
	}{
		{"пустая тема", dto.CreateRequestDTO{Subject: "  ", Type: "Corrective"}},
		{"нет типа", dto.CreateRequestDTO{Subject: "Тема"}},
		{"неизвестный тип", dto.CreateRequestDTO{Subject: "Тема", Type: "Emergency"}},
		{"неизвестный приоритет", dto.CreateRequestDTO{Subject: "Тема", Type: "Corrective", Priority: "asap"}},
		{"отрицательная длительность", dto.CreateRequestDTO{Subject: "Тема", Type: "Corrective", Duration: null.Float64From(-1)}},
		{"оборудование и рабочий центр", dto.CreateRequestDTO{
			Subject: "Тема", Type: "Corrective",
			EquipmentID: null.StringFrom(eq.ID), WorkCenterID: null.StringFrom(wc.ID),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.requestSvc.CreateRequest(ctx, tc.payload)
			assert.True(t, apperrors.IsValidation(err), "ожидалась ошибка валидации, получено %v", err)
		})
	}

	_, err = env.requestSvc.CreateRequest(ctx, dto.CreateRequestDTO{Subject: "Тема", Type: "Corrective", EquipmentID: null.StringFrom("missing")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	list, err := env.requestSvc.ListRequests(ctx, dto.RequestListFilterDTO{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateRequest_RejectsScrappedEquipment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eq := env.mustEquipment(t, "SN-1", "")
	_, err := env.equipSvc.ScrapEquipmentManually(ctx, eq.ID, "Утилизация")
	require.NoError(t, err)

	_, err = env.requestSvc.CreateRequest(ctx, dto.CreateRequestDTO{Subject: "Тема", Type: "Corrective", EquipmentID: null.StringFrom(eq.ID)})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateRequest_TechnicianMustBelongToTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mechanics, err := env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "Mechanics"})
	require.NoError(t, err)
	electricians, err := env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "Electricians"})
	require.NoError(t, err)
	tech, err := env.directory.AddTechnician(ctx, electricians.ID, dto.CreateTechnicianDTO{Name: "Анна"})
	require.NoError(t, err)

	_, err = env.requestSvc.CreateRequest(ctx, dto.CreateRequestDTO{
		Subject: "Тема", Type: "Corrective",
		TeamID: null.StringFrom(mechanics.ID), TechnicianID: null.StringFrom(tech.ID),
	})
	assert.True(t, apperrors.IsValidation(err))

	req, err := env.requestSvc.CreateRequest(ctx, dto.CreateRequestDTO{
		Subject: "Тема", Type: "Corrective", TechnicianID: null.StringFrom(tech.ID),
	})
	require.NoError(t, err)
	require.NotNil(t, req.TeamID)
	assert.Equal(t, electricians.ID, *req.TeamID, "команда берется у техника")
}

func TestListRequests_FilterAndOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eq := env.mustEquipment(t, "SN-1", "")

	past := env.clock.Now().Add(-48 * time.Hour)
	overdue, err := env.requestSvc.CreateRequest(ctx, dto.CreateRequestDTO{
		Subject: "Просроченная", Type: "Preventive", EquipmentID: null.StringFrom(eq.ID), ScheduledDate: null.TimeFrom(past),
	})
	require.NoError(t, err)
	assert.True(t, overdue.IsOverdue)
	env.mustRequest(t, "Обычная", &eq.ID)

	list, err := env.requestSvc.ListRequests(ctx, dto.RequestListFilterDTO{Type: "preventive", EquipmentID: eq.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, overdue.ID, list[0].ID)

	env.mustTransition(t, overdue.ID, entities.StageRepaired)
	got, err := env.requestSvc.GetRequest(ctx, overdue.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOverdue, "закрытая заявка не бывает просроченной")

	_, err = env.requestSvc.ListRequests(ctx, dto.RequestListFilterDTO{Stage: "Archived"})
	assert.True(t, apperrors.IsValidation(err))

	list, err = env.requestSvc.ListRequests(ctx, dto.RequestListFilterDTO{Stage: "in-progress"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateRequestFields_HistoryPerField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team, err := env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "Mechanics"})
	require.NoError(t, err)
	tech, err := env.directory.AddTechnician(ctx, team.ID, dto.CreateTechnicianDTO{Name: "Иван"})
	require.NoError(t, err)
	eq := env.mustEquipment(t, "SN-1", "")
	req := env.mustRequest(t, "Осмотр", &eq.ID)

	date := env.clock.Now().Add(24 * time.Hour)
	updated, err := env.requestSvc.UpdateRequestFields(ctx, req.ID, dto.UpdateRequestDTO{
		TechnicianID:  null.StringFrom(tech.ID),
		Duration:      null.Float64From(2.5),
		ScheduledDate: null.TimeFrom(date),
		Priority:      null.StringFrom("High"),
		Notes:         null.StringFrom("Взять ключ на 17"),
	})
	require.NoError(t, err)
	assert.Equal(t, tech.ID, *updated.TechnicianID)
	assert.Equal(t, team.ID, *updated.TeamID)
	assert.Equal(t, 2.5, *updated.Duration)
	assert.Equal(t, entities.PriorityHigh, updated.Priority)
	assert.Equal(t, "Взять ключ на 17", updated.Notes)
	assert.Equal(t, entities.StageNew, updated.Stage)

	history, err := env.requestSvc.GetHistory(ctx, req.ID)
	require.NoError(t, err)
	got := make(map[entities.HistoryEventType]bool)
	for _, h := range history {
		got[h.EventType] = true
	}
	for _, want := range []entities.HistoryEventType{
		entities.HistoryTeamChange,
		entities.HistoryTechnicianChange,
		entities.HistoryDurationChange,
		entities.HistoryScheduleChange,
		entities.HistoryPriorityChange,
	} {
		assert.True(t, got[want], "нет записи %s", want)
	}
}

func TestUpdateRequestFields_StageGoesThroughEngine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eq := env.mustEquipment(t, "SN-1", "")
	req := env.mustRequest(t, "Осмотр", &eq.ID)

	updated, err := env.requestSvc.UpdateRequestFields(ctx, req.ID, dto.UpdateRequestDTO{
		Subject: null.StringFrom("Осмотр и списание"),
		Stage:   null.StringFrom("Scrap"),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.StageScrap, updated.Stage)
	assert.Equal(t, "Осмотр и списание", updated.Subject)

	state := env.equipmentState(t, eq.ID)
	assert.True(t, state.IsScrapped)
	assert.Contains(t, *state.ScrapReason, "Осмотр и списание")
}

func TestUpdateRequestFields_TeamChangeClearsForeignTechnician(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mechanics, err := env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "Mechanics"})
	require.NoError(t, err)
	electricians, err := env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "Electricians"})
	require.NoError(t, err)
	tech, err := env.directory.AddTechnician(ctx, mechanics.ID, dto.CreateTechnicianDTO{Name: "Иван"})
	require.NoError(t, err)

	req, err := env.requestSvc.CreateRequest(ctx, dto.CreateRequestDTO{Subject: "Тема", Type: "Corrective", TechnicianID: null.StringFrom(tech.ID)})
	require.NoError(t, err)

	updated, err := env.requestSvc.UpdateRequestFields(ctx, req.ID, dto.UpdateRequestDTO{TeamID: null.StringFrom(electricians.ID)})
	require.NoError(t, err)
	assert.Equal(t, electricians.ID, *updated.TeamID)
	assert.Nil(t, updated.TechnicianID)
}

func TestUpdateRequestFields_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := env.mustRequest(t, "Осмотр", nil)

	_, err := env.requestSvc.UpdateRequestFields(ctx, "missing", dto.UpdateRequestDTO{Notes: null.StringFrom("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.requestSvc.UpdateRequestFields(ctx, req.ID, dto.UpdateRequestDTO{Duration: null.Float64From(-3)})
	assert.True(t, apperrors.IsValidation(err))

	_, err = env.requestSvc.UpdateRequestFields(ctx, req.ID, dto.UpdateRequestDTO{Subject: null.StringFrom(" ")})
	assert.True(t, apperrors.IsValidation(err))

	_, err = env.requestSvc.UpdateRequestFields(ctx, req.ID, dto.UpdateRequestDTO{Duration: null.Float64From(1), ClearDuration: true})
	assert.True(t, apperrors.IsValidation(err))

	got, err := env.requestSvc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Duration)
	assert.Equal(t, "Осмотр", got.Subject)
}

func TestRequestService_TransitionStageParsesWireValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := env.mustRequest(t, "Осмотр", nil)

	got, err := env.requestSvc.TransitionStage(ctx, req.ID, "InProgress")
	require.NoError(t, err)
	assert.Equal(t, entities.StageInProgress, got.Stage)

	_, err = env.requestSvc.TransitionStage(ctx, req.ID, "Done")
	assert.True(t, apperrors.IsValidation(err))
}

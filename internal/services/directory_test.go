package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearguard/internal/dto"
	apperrors "gearguard/pkg/errors"
)

func TestDirectoryService_FindTeamByDepartment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team, err := env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "IT Support", Company: "GearGuard"})
	require.NoError(t, err)
	_, err = env.directory.AddTechnician(ctx, team.ID, dto.CreateTechnicianDTO{Name: "Олег", Role: "Инженер"})
	require.NoError(t, err)

	found, err := env.directory.FindTeamByDepartment(ctx, "  it support ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, team.ID, found.ID)
	require.Len(t, found.Technicians, 1)

	none, err := env.directory.FindTeamByDepartment(ctx, "Logistics")
	require.NoError(t, err)
	assert.Nil(t, none)

	none, err = env.directory.FindTeamByDepartment(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDirectoryService_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "Mechanics"})
	require.NoError(t, err)
	_, err = env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: "mechanics"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	_, err = env.directory.CreateTeam(ctx, dto.CreateTeamDTO{Name: " "})
	assert.True(t, apperrors.IsValidation(err))

	_, err = env.directory.AddTechnician(ctx, "missing", dto.CreateTechnicianDTO{Name: "Иван"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = env.directory.GetTechnician(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	wc, err := env.directory.CreateWorkCenter(ctx, dto.CreateWorkCenterDTO{Name: "Сварка", CostPerHour: 40})
	require.NoError(t, err)
	got, err := env.directory.GetWorkCenter(ctx, wc.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got.CostPerHour)
	_, err = env.directory.CreateWorkCenter(ctx, dto.CreateWorkCenterDTO{Name: "Сварка"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	list, err := env.directory.ListWorkCenters(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

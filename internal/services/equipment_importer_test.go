package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	apperrors "gearguard/pkg/errors"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestEquipmentImport_CreatesSkipsAndReportsRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustEquipment(t, "CNC-001", "")
	importer := NewEquipmentImportService(env.equipSvc, zap.NewNop())

	buf := workbook(t, [][]interface{}{
		{"Реестр оборудования"},
		{},
		{"Наименование", "Серийный номер", "Отдел", "Местоположение"},
		{"Фрезерный станок", "CNC-001", "Mechanics", "Цех 1"},
		{"Компрессор", "AIR-006", "Facilities", "Цех 2"},
		{"Пресс без номера", "", "", ""},
		{"Итого", "", "", ""},
		{"", "", "", ""},
	})

	res, err := importer.Import(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped, "серийный номер уже есть")
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 6, res.Failed[0].Line)

	list, err := env.equipSvc.ListEquipment(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AIR-006", list[1].SerialNumber)
	assert.Equal(t, "Facilities", list[1].Department)
	assert.Equal(t, "Цех 2", list[1].Location)
}

func TestEquipmentImport_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	importer := NewEquipmentImportService(env.equipSvc, zap.NewNop())

	_, err := importer.Import(context.Background(), strings.NewReader("не книга"))
	assert.True(t, apperrors.IsValidation(err))

	buf := workbook(t, [][]interface{}{{"Колонка А", "Колонка Б"}, {"x", "y"}})
	_, err = importer.Import(context.Background(), buf)
	assert.True(t, apperrors.IsValidation(err), "нет шапки")
}

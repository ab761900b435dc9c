package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"gocaixa/internal/domain"
)

func cellValue(t *testing.T, sheet *xlsx.Sheet, row, col int) string {
	t.Helper()
	cell, err := sheet.Cell(row, col)
	require.NoError(t, err)
	return cell.Value
}

func TestConferenceSheet(t *testing.T) {
	items := []domain.LineItem{
		{VariationID: "1", Code: "ABC123", Reference: "REF-1", Name: "Camiseta P", Quantity: 5, KnownStock: 10},
		{VariationID: "2", Code: "789", Reference: "REF-2", Name: "Calça 40", Quantity: 2, KnownStock: 3},
	}
	settings := domain.SessionSettings{Mode: domain.ModeNormal, OperationType: domain.OperationSaida, DepotID: "7"}
	at := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)

	data, err := ConferenceSheet(items, settings, at)
	require.NoError(t, err)

	file, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 2)

	sheet := file.Sheets[0]
	assert.Equal(t, "Conferência", sheet.Name)
	assert.Equal(t, "Código", cellValue(t, sheet, 0, 0))
	assert.Equal(t, "ABC123", cellValue(t, sheet, 1, 0))
	assert.Equal(t, "5", cellValue(t, sheet, 1, 3))
	assert.Equal(t, "Calça 40", cellValue(t, sheet, 2, 2))
	assert.Equal(t, "Total", cellValue(t, sheet, 3, 0))
	assert.Equal(t, "7", cellValue(t, sheet, 3, 3))

	info := file.Sheets[1]
	assert.Equal(t, "01/03/2026 14:30:00", cellValue(t, info, 0, 1))
	assert.Equal(t, "saida", cellValue(t, info, 2, 1))
	assert.Equal(t, "7", cellValue(t, info, 3, 1))
}

func TestConferenceSheet_TransferAndEmpty(t *testing.T) {
	settings := domain.SessionSettings{Mode: domain.ModeTransfer, SourceDepotID: "1", DestDepotID: "2"}

	data, err := ConferenceSheet(nil, settings, time.Now())
	require.NoError(t, err)

	file, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	assert.Equal(t, "Total", cellValue(t, file.Sheets[0], 1, 0))
	assert.Equal(t, "Transferência", cellValue(t, file.Sheets[1], 1, 1))
	assert.Equal(t, "2", cellValue(t, file.Sheets[1], 3, 1))
}

package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

func sampleDataset() *entity.Dataset {
	return &entity.Dataset{
		Columns: []string{"Date", "Description", "Amount", "Note"},
		Records: []entity.Record{
			{"Date": "01/02", "Description": "Coffee, large", "Amount": "-4.50"},
			{"Date": "01/09", "Description": "Rent", "Amount": "-900.00", "Note": "monthly"},
		},
	}
}

func TestCSV(t *testing.T) {
	b, err := NewService(nil).CSV(sampleDataset())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Description", "Amount", "Note"},
		{"01/02", "Coffee, large", "-4.50", ""},
		{"01/09", "Rent", "-900.00", "monthly"},
	}, rows)
}

func TestCSV_EmptyDatasetHasHeaderOnly(t *testing.T) {
	b, err := NewService(nil).CSV(&entity.Dataset{Columns: []string{"Date"}})
	require.NoError(t, err)
	assert.Equal(t, "Date\n", string(b))
}

func TestXLSX(t *testing.T) {
	b, err := NewService(nil).XLSX(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Description", "Amount", "Note"}, rows[0])
	assert.Equal(t, "Coffee, large", rows[1][1])
	assert.Equal(t, "monthly", rows[2][3])
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/rows.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromPath("rows.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatFromPath("rows.json")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, NewService(nil).WriteFile(path, sampleDataset()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Date,Description,Amount,Note")
}

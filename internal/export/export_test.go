package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"fieldops.service/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sample = model.ReportContent{
	Summary: []model.Metric{{Name: "Total Records", Value: 3}, {Name: "Average Shift Hours", Value: 7.5}},
	Columns: []string{"worker", "type"},
	Rows: [][]string{
		{"John Smith", "check-in"},
		{"Sarah Johnson", "check-out"},
	},
}

func TestCSV(t *testing.T) {
	data, err := CSV(sample)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// csv.Reader skips the blank separator line.
	assert.Equal(t, [][]string{
		{"Metric", "Value"},
		{"Total Records", "3"},
		{"Average Shift Hours", "7.5"},
		{"worker", "type"},
		{"John Smith", "check-in"},
		{"Sarah Johnson", "check-out"},
	}, records)
}

func TestExcelWorkbookLayout(t *testing.T) {
	data, err := Excel("Weekly check-ins", sample, true)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, dataSheet}, f.GetSheetList())

	rows, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"worker", "type"}, rows[0])
	assert.Equal(t, []string{"Sarah Johnson", "check-out"}, rows[2])

	value, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "7.5", value)
}

func TestRender(t *testing.T) {
	report := model.Report{ID: "r1", Name: "Check-ins", Format: model.FormatCSV, Content: &sample}

	file, err := Render(report)
	require.NoError(t, err)
	assert.Equal(t, "r1.csv", file.Name)
	assert.Equal(t, ContentTypeCSV, file.ContentType)

	report.Format = model.FormatExcel
	file, err = Render(report)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeExcel, file.ContentType)

	report.Format = model.FormatPDF
	_, err = Render(report)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	report.Content = nil
	_, err = Render(report)
	assert.Error(t, err)
}

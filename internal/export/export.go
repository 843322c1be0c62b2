// Package export renders generated report content into downloadable files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"fieldops.service/internal/core/model"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

const (
	ContentTypeCSV   = "text/csv"
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const (
	summarySheet = "Summary"
	dataSheet    = "Data"
)

// File is a rendered report.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render exports a generated report in its requested format.
func Render(r model.Report) (File, error) {
	if r.Content == nil {
		return File{}, fmt.Errorf("report %s has no content", r.ID)
	}
	switch r.Format {
	case model.FormatCSV:
		data, err := CSV(*r.Content)
		if err != nil {
			return File{}, err
		}
		return File{Name: r.ID + ".csv", ContentType: ContentTypeCSV, Data: data}, nil
	case model.FormatExcel:
		data, err := Excel(r.Name, *r.Content, r.IncludeCharts)
		if err != nil {
			return File{}, err
		}
		return File{Name: r.ID + ".xlsx", ContentType: ContentTypeExcel, Data: data}, nil
	}
	return File{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.Format)
}

// CSV writes the summary metrics, a blank line, then the data table.
func CSV(content model.ReportContent) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{{"Metric", "Value"}}
	for _, m := range content.Summary {
		records = append(records, []string{m.Name, formatValue(m.Value)})
	}
	records = append(records, []string{})
	records = append(records, content.Columns)
	records = append(records, content.Rows...)

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Excel builds a workbook with a summary sheet, optionally charted, and a
// data sheet.
func Excel(title string, content model.ReportContent, withChart bool) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Metric", "Value"}); err != nil {
		return nil, err
	}
	for i, m := range content.Summary {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{m.Name, m.Value}); err != nil {
			return nil, err
		}
	}

	if withChart && len(content.Summary) > 0 {
		last := len(content.Summary) + 1
		chart := &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$B$1", summarySheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", summarySheet, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", summarySheet, last),
			}},
			Title: []excelize.RichTextRun{{Text: title}},
		}
		if err := f.AddChart(summarySheet, "D2", chart); err != nil {
			return nil, fmt.Errorf("add chart: %w", err)
		}
	}

	if _, err := f.NewSheet(dataSheet); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(content.Columns))
	for i, c := range content.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range content.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(dataSheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package model

import "time"

type ReportType string

const (
	ReportWorker   ReportType = "worker"
	ReportCustomer ReportType = "customer"
	ReportCheckIn  ReportType = "checkin"
	ReportSurvey   ReportType = "survey"
)

type ExportFormat string

const (
	FormatPDF   ExportFormat = "pdf"
	FormatExcel ExportFormat = "excel"
	FormatCSV   ExportFormat = "csv"
)

// ReportStatus defines the state of report generation.
type ReportStatus string

const (
	ReportPending    ReportStatus = "PENDING"
	ReportGenerating ReportStatus = "GENERATING"
	ReportCompleted  ReportStatus = "COMPLETED"
	ReportFailed     ReportStatus = "FAILED"
)

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, both ends inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ReportContent is the generated payload. Summary metrics and table rows
// differ per report type; Columns always mirrors the selected fields.
type ReportContent struct {
	Summary []Metric   `json:"summary"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type Report struct {
	ID            string         `json:"$id,omitempty"`
	Name          string         `json:"name"`
	Type          ReportType     `json:"type"`
	DateRange     DateRange      `json:"dateRange"`
	Fields        []string       `json:"fields"`
	IncludeCharts bool           `json:"includeCharts"`
	Format        ExportFormat   `json:"format"`
	Status        ReportStatus   `json:"status"`
	RetryCount    int            `json:"retryCount"`
	CreatedAt     time.Time      `json:"createdAt"`
	GeneratedAt   *time.Time     `json:"generatedAt,omitempty"`
	Content       *ReportContent `json:"content,omitempty"`
	FileKey       string         `json:"fileKey,omitempty"`
}

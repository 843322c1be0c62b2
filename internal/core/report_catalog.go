package core

import (
	"slices"
	"strings"
	"time"

	"fieldops.service/internal/core/model"
)

// ReportField is a column a report of some type can include.
type ReportField struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

type ReportKind struct {
	Type        model.ReportType `json:"type"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Fields      []ReportField    `json:"fields"`
}

// ReportCatalog lists the report types in display order.
var ReportCatalog = []ReportKind{
	{
		Type:        model.ReportWorker,
		Label:       "Worker Report",
		Description: "Worker activity, check-ins and hours",
		Fields: []ReportField{
			{ID: "name", Label: "Name", Default: true},
			{ID: "position", Label: "Position", Default: true},
			{ID: "department", Label: "Department", Default: true},
			{ID: "status", Label: "Status", Default: true},
			{ID: "checkins", Label: "Check-ins", Default: true},
			{ID: "hours", Label: "Hours Worked", Default: true},
			{ID: "skills", Label: "Skills"},
			{ID: "contact", Label: "Contact Info"},
		},
	},
	{
		Type:        model.ReportCustomer,
		Label:       "Customer Report",
		Description: "Customer interactions and projects",
		Fields: []ReportField{
			{ID: "name", Label: "Company Name", Default: true},
			{ID: "contact", Label: "Contact Person", Default: true},
			{ID: "industry", Label: "Industry", Default: true},
			{ID: "status", Label: "Status", Default: true},
			{ID: "projects", Label: "Projects", Default: true},
			{ID: "interactions", Label: "Interactions", Default: true},
			{ID: "revenue", Label: "Revenue"},
			{ID: "contact_info", Label: "Contact Info"},
			{ID: "notes", Label: "Notes"},
		},
	},
	{
		Type:        model.ReportCheckIn,
		Label:       "Check-in Report",
		Description: "Worker check-ins and check-outs",
		Fields: []ReportField{
			{ID: "worker", Label: "Worker", Default: true},
			{ID: "type", Label: "Type (In/Out)", Default: true},
			{ID: "time", Label: "Time", Default: true},
			{ID: "date", Label: "Date", Default: true},
			{ID: "location", Label: "Location", Default: true},
			{ID: "duration", Label: "Duration", Default: true},
		},
	},
	{
		Type:        model.ReportSurvey,
		Label:       "Survey Report",
		Description: "Survey responses and analytics",
		Fields: []ReportField{
			{ID: "title", Label: "Survey Title", Default: true},
			{ID: "responses", Label: "Total Responses", Default: true},
			{ID: "questions", Label: "Questions", Default: true},
			{ID: "analytics", Label: "Response Analytics", Default: true},
			{ID: "date_range", Label: "Date Range", Default: true},
			{ID: "respondents", Label: "Respondent Info"},
			{ID: "comments", Label: "Text Responses"},
		},
	},
}

// DefaultReportRange is how far back a new report looks.
const DefaultReportRange = 30 * 24 * time.Hour

// LookupReportKind finds the catalog entry for t.
func LookupReportKind(t model.ReportType) (ReportKind, bool) {
	for _, k := range ReportCatalog {
		if k.Type == t {
			return k, true
		}
	}
	return ReportKind{}, false
}

// ReportDraft is the editable state of a report request.
type ReportDraft struct {
	Name          string
	Type          model.ReportType
	DateRange     model.DateRange
	Fields        []string
	IncludeCharts bool
	Format        model.ExportFormat
}

// NewReportDraft starts a worker report over the last 30 days with the
// default fields selected.
func NewReportDraft(at time.Time) *ReportDraft {
	d := &ReportDraft{
		DateRange:     model.DateRange{Start: at.Add(-DefaultReportRange), End: at},
		IncludeCharts: true,
		Format:        model.FormatExcel,
	}
	_ = d.SelectType(model.ReportWorker)
	return d
}

// SelectType switches the report type and resets the fields to its defaults.
func (d *ReportDraft) SelectType(t model.ReportType) error {
	kind, ok := LookupReportKind(t)
	if !ok {
		return invalid("type", "Unknown report type %q", t)
	}
	d.Type = t
	d.Fields = d.Fields[:0:0]
	for _, f := range kind.Fields {
		if f.Default {
			d.Fields = append(d.Fields, f.ID)
		}
	}
	return nil
}

// ToggleField adds or removes a field, keeping catalog order.
func (d *ReportDraft) ToggleField(id string) error {
	kind, ok := LookupReportKind(d.Type)
	if !ok {
		return invalid("type", "Unknown report type %q", d.Type)
	}
	if !slices.ContainsFunc(kind.Fields, func(f ReportField) bool { return f.ID == id }) {
		return invalid("fields", "Unknown field %q", id)
	}

	selected := !slices.Contains(d.Fields, id)
	fields := make([]string, 0, len(kind.Fields))
	for _, f := range kind.Fields {
		on := slices.Contains(d.Fields, f.ID)
		if f.ID == id {
			on = selected
		}
		if on {
			fields = append(fields, f.ID)
		}
	}
	d.Fields = fields
	return nil
}

func (d *ReportDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name", "Please enter a report name")
	}
	kind, ok := LookupReportKind(d.Type)
	if !ok {
		return invalid("type", "Unknown report type %q", d.Type)
	}
	if len(d.Fields) == 0 {
		return invalid("fields", "Select at least one field")
	}
	for _, id := range d.Fields {
		if !slices.ContainsFunc(kind.Fields, func(f ReportField) bool { return f.ID == id }) {
			return invalid("fields", "Unknown field %q", id)
		}
	}
	if d.DateRange.End.Before(d.DateRange.Start) {
		return invalid("dateRange", "Start date must be before end date")
	}
	switch d.Format {
	case model.FormatCSV, model.FormatExcel:
	case model.FormatPDF:
		return invalid("format", "PDF export is not supported. Choose Excel or CSV")
	default:
		return invalid("format", "Unknown export format %q", d.Format)
	}
	return nil
}

func fieldLabels(t model.ReportType, ids []string) []string {
	kind, _ := LookupReportKind(t)
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		label := id
		for _, f := range kind.Fields {
			if f.ID == id {
				label = f.Label
			}
		}
		labels = append(labels, label)
	}
	return labels
}

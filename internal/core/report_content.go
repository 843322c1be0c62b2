package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fieldops.service/internal/core/model"
)

// ReportData is the live data a report is generated from.
type ReportData struct {
	Workers   []model.Worker
	CheckIns  []model.CheckIn
	Customers []model.Customer
	Surveys   []model.Survey
	Responses []model.SurveyResponse
}

// BuildReportContent computes the summary metrics and the table of a report
// from data, restricted to the report's date range. Columns follow the
// selected fields in order.
func BuildReportContent(r model.Report, data ReportData) (model.ReportContent, error) {
	content := model.ReportContent{Columns: fieldLabels(r.Type, r.Fields)}
	switch r.Type {
	case model.ReportWorker:
		workerReport(r, data, &content)
	case model.ReportCustomer:
		customerReport(r, data, &content)
	case model.ReportCheckIn:
		checkInReport(r, data, &content)
	case model.ReportSurvey:
		surveyReport(r, data, &content)
	default:
		return model.ReportContent{}, invalid("type", "Unknown report type %q", r.Type)
	}
	return content, nil
}

func checkInsInRange(records []model.CheckIn, dr model.DateRange) []model.CheckIn {
	var out []model.CheckIn
	for _, c := range records {
		if dr.Contains(c.Timestamp) {
			out = append(out, c)
		}
	}
	return out
}

func row(fields []string, value func(field string) string) []string {
	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = value(f)
	}
	return cells
}

func hours(h float64) string { return strconv.FormatFloat(h, 'f', 2, 64) }

func workerReport(r model.Report, data ReportData, content *model.ReportContent) {
	records := checkInsInRange(data.CheckIns, r.DateRange)
	worked := ShiftHours(records)
	checkIns := make(map[string]int)
	for _, c := range records {
		if c.Type == model.TypeCheckIn {
			checkIns[c.WorkerID]++
		}
	}

	active, totalHours := 0, 0.0
	for _, w := range data.Workers {
		if w.Status == model.WorkerActive {
			active++
		}
		totalHours += worked[w.ID]
		content.Rows = append(content.Rows, row(r.Fields, func(f string) string {
			switch f {
			case "name":
				return w.Name
			case "position":
				return w.Position
			case "department":
				return w.Department
			case "status":
				return string(w.Status)
			case "checkins":
				return strconv.Itoa(checkIns[w.ID])
			case "hours":
				return hours(worked[w.ID])
			case "skills":
				return strings.Join(w.Skills, "; ")
			case "contact":
				return w.ContactInfo.Email + " / " + w.ContactInfo.Phone
			}
			return ""
		}))
	}

	content.Summary = []model.Metric{
		{Name: "Total Workers", Value: float64(len(data.Workers))},
		{Name: "Active Workers", Value: float64(active)},
		{Name: "Check-ins", Value: float64(sumCounts(checkIns))},
		{Name: "Hours Worked", Value: roundHours(totalHours)},
	}
}

func customerReport(r model.Report, data ReportData, content *model.ReportContent) {
	var active, leads, interactions int
	var revenue float64
	for _, c := range data.Customers {
		switch c.Status {
		case model.CustomerActive:
			active++
		case model.CustomerLead:
			leads++
		}
		inRange := 0
		for _, i := range c.Interactions {
			if r.DateRange.Contains(i.Date) {
				inRange++
			}
		}
		interactions += inRange
		value := ProjectValue(c)
		revenue += value

		content.Rows = append(content.Rows, row(r.Fields, func(f string) string {
			switch f {
			case "name":
				return c.Name
			case "contact":
				return c.ContactName
			case "industry":
				return c.Industry
			case "status":
				return string(c.Status)
			case "projects":
				return strconv.Itoa(len(c.Projects))
			case "interactions":
				return strconv.Itoa(inRange)
			case "revenue":
				return strconv.FormatFloat(value, 'f', 2, 64)
			case "contact_info":
				return c.Email + " / " + c.Phone
			case "notes":
				return c.Notes
			}
			return ""
		}))
	}

	content.Summary = []model.Metric{
		{Name: "Total Customers", Value: float64(len(data.Customers))},
		{Name: "Active Customers", Value: float64(active)},
		{Name: "Leads", Value: float64(leads)},
		{Name: "Interactions", Value: float64(interactions)},
		{Name: "Project Value", Value: revenue},
	}
}

func checkInReport(r model.Report, data ReportData, content *model.ReportContent) {
	records := checkInsInRange(data.CheckIns, r.DateRange)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Timestamp.Before(records[j].Timestamp) })

	shifts := Shifts(records)
	closing := make(map[string]Shift, len(shifts))
	for _, s := range shifts {
		closing[s.WorkerID+"|"+s.End.String()] = s
	}

	workers := make(map[string]bool)
	var ins, outs int
	for _, c := range records {
		workers[c.WorkerID] = true
		if c.Type == model.TypeCheckIn {
			ins++
		} else {
			outs++
		}
		content.Rows = append(content.Rows, row(r.Fields, func(f string) string {
			switch f {
			case "worker":
				return c.WorkerName
			case "type":
				return string(c.Type)
			case "time":
				return c.Timestamp.Format("15:04")
			case "date":
				return c.Timestamp.Format("2006-01-02")
			case "location":
				if c.Location.Address != "" {
					return c.Location.Address
				}
				return fmt.Sprintf("%.5f, %.5f", c.Location.Latitude, c.Location.Longitude)
			case "duration":
				if s, ok := closing[c.WorkerID+"|"+c.Timestamp.String()]; ok && c.Type == model.TypeCheckOut {
					return hours(s.Hours()) + " h"
				}
			}
			return ""
		}))
	}

	var avg float64
	if len(shifts) > 0 {
		total := 0.0
		for _, s := range shifts {
			total += s.Hours()
		}
		avg = roundHours(total / float64(len(shifts)))
	}
	content.Summary = []model.Metric{
		{Name: "Total Records", Value: float64(len(records))},
		{Name: "Check-ins", Value: float64(ins)},
		{Name: "Check-outs", Value: float64(outs)},
		{Name: "Workers", Value: float64(len(workers))},
		{Name: "Average Shift Hours", Value: avg},
	}
}

func surveyReport(r model.Report, data ReportData, content *model.ReportContent) {
	bySurvey := make(map[string][]model.SurveyResponse)
	for _, resp := range data.Responses {
		if r.DateRange.Contains(resp.SubmittedAt) {
			bySurvey[resp.SurveyID] = append(bySurvey[resp.SurveyID], resp)
		}
	}

	var active, total int
	for _, s := range data.Surveys {
		if s.Status == model.SurveyActive {
			active++
		}
		responses := bySurvey[s.ID]
		total += len(responses)
		summary := Summarize(s, responses)

		content.Rows = append(content.Rows, row(r.Fields, func(f string) string {
			switch f {
			case "title":
				return s.Title
			case "responses":
				return strconv.Itoa(len(responses))
			case "questions":
				return strconv.Itoa(len(s.Questions))
			case "analytics":
				return surveyAnalytics(summary)
			case "date_range":
				end := "open"
				if s.ExpiresAt != nil {
					end = s.ExpiresAt.Format("2006-01-02")
				}
				return s.CreatedAt.Format("2006-01-02") + " to " + end
			case "respondents":
				return strings.Join(respondents(responses), "; ")
			case "comments":
				var texts []string
				for _, q := range summary.Questions {
					texts = append(texts, q.TextAnswers...)
				}
				return strings.Join(texts, " | ")
			}
			return ""
		}))
	}

	var perSurvey float64
	if len(data.Surveys) > 0 {
		perSurvey = float64(total) / float64(len(data.Surveys))
	}
	content.Summary = []model.Metric{
		{Name: "Total Surveys", Value: float64(len(data.Surveys))},
		{Name: "Active Surveys", Value: float64(active)},
		{Name: "Responses", Value: float64(total)},
		{Name: "Responses per Survey", Value: roundHours(perSurvey)},
	}
}

// surveyAnalytics condenses a summary to one cell: the average of each
// rating question and the leading option of each choice question.
func surveyAnalytics(s model.SurveySummary) string {
	var parts []string
	for _, q := range s.Questions {
		switch {
		case q.Type == model.QuestionRating && q.Answered > 0:
			parts = append(parts, fmt.Sprintf("%s: avg %.1f", q.Prompt, q.Average))
		case len(q.OptionCounts) > 0 && q.Answered > 0:
			top := q.OptionCounts[0]
			for _, oc := range q.OptionCounts[1:] {
				if oc.Count > top.Count {
					top = oc
				}
			}
			parts = append(parts, fmt.Sprintf("%s: %s (%d)", q.Prompt, top.Option, top.Count))
		}
	}
	return strings.Join(parts, "; ")
}

func respondents(responses []model.SurveyResponse) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range responses {
		if !seen[r.Respondent] {
			seen[r.Respondent] = true
			names = append(names, r.Respondent)
		}
	}
	sort.Strings(names)
	return names
}

func sumCounts(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func roundHours(h float64) float64 {
	v, _ := strconv.ParseFloat(hours(h), 64)
	return v
}

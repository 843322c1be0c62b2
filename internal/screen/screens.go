package screen

import (
	"context"

	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
)

// Tabs of the survey list.
const (
	TabAll       = ""
	TabActive    = string(model.SurveyActive)
	TabDraft     = string(model.SurveyDraft)
	TabCompleted = string(model.SurveyCompleted)
)

func NewWorkersScreen(svc *core.WorkerService) *ListScreen[model.Worker] {
	return NewListScreen("workers", svc.List, func(items []model.Worker, v View) []model.Worker {
		return core.FilterWorkers(items, v.Query)
	})
}

// NewCheckInsScreen lists recent check-ins; View.Only hides check-outs.
func NewCheckInsScreen(svc *core.CheckInService, f core.CheckInFilter) *ListScreen[model.CheckIn] {
	load := func(ctx context.Context) ([]model.CheckIn, error) { return svc.List(ctx, f) }
	return NewListScreen("checkins", load, func(items []model.CheckIn, v View) []model.CheckIn {
		return core.FilterCheckIns(items, v.Query, v.Only)
	})
}

func NewCustomersScreen(svc *core.CustomerService) *ListScreen[model.Customer] {
	return NewListScreen("customers", svc.List, func(items []model.Customer, v View) []model.Customer {
		return core.FilterCustomers(items, v.Query)
	})
}

// NewSurveysScreen lists surveys; View.Tab selects a status.
func NewSurveysScreen(svc *core.SurveyService) *ListScreen[model.Survey] {
	return NewListScreen("surveys", svc.List, func(items []model.Survey, v View) []model.Survey {
		out := core.FilterSurveys(items, v.Query)
		if v.Tab == TabAll {
			return out
		}
		kept := out[:0]
		for _, s := range out {
			if string(s.Status) == v.Tab {
				kept = append(kept, s)
			}
		}
		return kept
	})
}

func NewReportsScreen(svc *core.ReportService) *ListScreen[model.Report] {
	return NewListScreen("reports", svc.List, func(items []model.Report, v View) []model.Report {
		return core.FilterReports(items, v.Query)
	})
}

func NewWorkerDetailScreen(svc *core.WorkerService, id string) *DetailScreen[core.WorkerDetail] {
	return NewDetailScreen("worker", id, svc.Get, svc.Delete)
}

func NewCustomerDetailScreen(svc *core.CustomerService, id string) *DetailScreen[model.Customer] {
	return NewDetailScreen("customer", id, svc.Get, svc.Delete)
}

func NewSurveyDetailScreen(svc *core.SurveyService, id string) *DetailScreen[model.SurveySummary] {
	return NewDetailScreen("survey", id, svc.Summary, nil)
}

func NewReportDetailScreen(svc *core.ReportService, id string) *DetailScreen[model.Report] {
	return NewDetailScreen("report", id, svc.Get, nil)
}

// NewDashboardScreen loads the home screen summary.
func NewDashboardScreen(svc *core.DashboardService) *DetailScreen[core.DashboardStats] {
	load := func(ctx context.Context, _ string) (core.DashboardStats, error) { return svc.Stats(ctx) }
	return NewDetailScreen("dashboard", "", load, nil)
}

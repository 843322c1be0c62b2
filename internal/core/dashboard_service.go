package core

import (
	"context"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
)

// DefaultActiveWorkerPageSize is how many of the latest check-in records are
// inspected to derive who is on site.
const DefaultActiveWorkerPageSize = 100

const recentActivityLimit = 5

// DashboardStats is the home screen summary. ActiveApproximate is set when
// the inspected check-in page did not cover the whole history, so workers
// whose latest record is older than the page are not counted.
type DashboardStats struct {
	TotalWorkers      int             `json:"totalWorkers"`
	ActiveWorkers     int             `json:"activeWorkers"`
	ActiveApproximate bool            `json:"activeApproximate"`
	TotalCustomers    int             `json:"totalCustomers"`
	ActiveSurveys     int             `json:"activeSurveys"`
	RecentCheckIns    []model.CheckIn `json:"recentCheckIns"`
}

type DashboardService struct {
	docs     backend.Documents
	pageSize int
}

func NewDashboardService(docs backend.Documents, activePageSize int) *DashboardService {
	if activePageSize <= 0 {
		activePageSize = DefaultActiveWorkerPageSize
	}
	return &DashboardService{docs: docs, pageSize: activePageSize}
}

func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalWorkers, err = s.count(ctx, backend.Workers, backend.NewQuery()); err != nil {
		return DashboardStats{}, fail(ctx, "load dashboard", err)
	}
	if stats.TotalCustomers, err = s.count(ctx, backend.Customers, backend.NewQuery()); err != nil {
		return DashboardStats{}, fail(ctx, "load dashboard", err)
	}
	activeSurveys := backend.NewQuery().Equal("status", model.SurveyActive)
	if stats.ActiveSurveys, err = s.count(ctx, backend.Surveys, activeSurveys); err != nil {
		return DashboardStats{}, fail(ctx, "load dashboard", err)
	}

	page, total, err := list[model.CheckIn](ctx, s.docs, backend.CheckIns,
		newestFirst(backend.NewQuery()).WithLimit(s.pageSize))
	if err != nil {
		return DashboardStats{}, fail(ctx, "load dashboard", err)
	}
	stats.ActiveWorkers = ActiveWorkerCount(page)
	stats.ActiveApproximate = total > len(page)
	stats.RecentCheckIns = page[:min(len(page), recentActivityLimit)]
	return stats, nil
}

func (s *DashboardService) count(ctx context.Context, collection string, q backend.Query) (int, error) {
	res, err := s.docs.ListDocuments(ctx, collection, q.WithLimit(1))
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

package core

import (
	"strings"

	"fieldops.service/internal/core/model"
)

// The filters below run over already loaded lists. They never touch the
// backend and never modify their input; the result is always a new slice.

func filter[T any](items []T, query string, keep func(T) bool, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep != nil && !keep(item) {
			continue
		}
		if q == "" || matchesAny(fields(item), q) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAny(fields []string, q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func FilterWorkers(workers []model.Worker, query string) []model.Worker {
	return filter(workers, query, nil, func(w model.Worker) []string {
		return append([]string{w.Name, w.Position, w.Department}, w.Skills...)
	})
}

func FilterCustomers(customers []model.Customer, query string) []model.Customer {
	return filter(customers, query, nil, func(c model.Customer) []string {
		return []string{c.Name, c.ContactName, c.Industry}
	})
}

func FilterSurveys(surveys []model.Survey, query string) []model.Survey {
	return filter(surveys, query, nil, func(s model.Survey) []string {
		return []string{s.Title, s.Description}
	})
}

// FilterCheckIns matches worker names and addresses; onlyCheckIns hides
// check-out records.
func FilterCheckIns(records []model.CheckIn, query string, onlyCheckIns bool) []model.CheckIn {
	var keep func(model.CheckIn) bool
	if onlyCheckIns {
		keep = func(c model.CheckIn) bool { return c.Type == model.TypeCheckIn }
	}
	return filter(records, query, keep, func(c model.CheckIn) []string {
		return []string{c.WorkerName, c.Location.Address}
	})
}

func FilterReports(reports []model.Report, query string) []model.Report {
	return filter(reports, query, nil, func(r model.Report) []string {
		return []string{r.Name, string(r.Type)}
	})
}

package core

import (
	"sort"
	"time"

	"fieldops.service/internal/core/model"
)

// LatestByWorker keeps, for every worker in the page, the record with the
// latest timestamp. On equal timestamps the record seen first wins.
func LatestByWorker(page []model.CheckIn) map[string]model.CheckIn {
	latest := make(map[string]model.CheckIn, len(page))
	for _, c := range page {
		cur, ok := latest[c.WorkerID]
		if !ok || c.Timestamp.After(cur.Timestamp) {
			latest[c.WorkerID] = c
		}
	}
	return latest
}

// ActiveWorkerIDs lists, sorted, the workers whose latest record in the page
// is a check-in.
func ActiveWorkerIDs(page []model.CheckIn) []string {
	var ids []string
	for id, c := range LatestByWorker(page) {
		if c.Type == model.TypeCheckIn {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ActiveWorkerCount counts the workers currently checked in according to the
// page. It is only as complete as the page it is given.
func ActiveWorkerCount(page []model.CheckIn) int {
	n := 0
	for _, c := range LatestByWorker(page) {
		if c.Type == model.TypeCheckIn {
			n++
		}
	}
	return n
}

// Shift is a check-in paired with the check-out that closed it.
type Shift struct {
	WorkerID   string    `json:"workerId"`
	WorkerName string    `json:"workerName"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

func (s Shift) Hours() float64 { return s.End.Sub(s.Start).Hours() }

// Shifts pairs every check-in with the next check-out of the same worker.
// A check-in followed by another check-in is dropped as unmatched, as is a
// check-out with no open check-in.
func Shifts(records []model.CheckIn) []Shift {
	sorted := make([]model.CheckIn, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	open := make(map[string]model.CheckIn)
	var shifts []Shift
	for _, c := range sorted {
		switch c.Type {
		case model.TypeCheckIn:
			open[c.WorkerID] = c
		case model.TypeCheckOut:
			in, ok := open[c.WorkerID]
			if !ok {
				continue
			}
			delete(open, c.WorkerID)
			shifts = append(shifts, Shift{WorkerID: c.WorkerID, WorkerName: in.WorkerName, Start: in.Timestamp, End: c.Timestamp})
		}
	}
	return shifts
}

// ShiftHours totals completed shift hours per worker.
func ShiftHours(records []model.CheckIn) map[string]float64 {
	hours := make(map[string]float64)
	for _, s := range Shifts(records) {
		hours[s.WorkerID] += s.Hours()
	}
	return hours
}

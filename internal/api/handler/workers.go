package handler

import (
	"net/http"
	"strconv"

	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
)

func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Services.Workers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.FilterWorkers(workers, r.URL.Query().Get("q")))
}

func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req core.NewWorker
	if !decode(w, r, &req) {
		return
	}
	worker, err := h.Services.Workers.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, worker)
}

func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Services.Workers.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	var patch core.WorkerPatch
	if !decode(w, r, &patch) {
		return
	}
	current, err := h.Services.Workers.Find(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.Services.Workers.Update(r.Context(), current, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) ToggleWorker(w http.ResponseWriter, r *http.Request) {
	current, err := h.Services.Workers.Find(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.Services.Workers.ToggleStatus(r.Context(), current)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	if err := h.Services.Workers.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkInRequest struct {
	WorkerID string         `json:"workerId"`
	Location model.Location `json:"location"`
}

// RecordCheckIn toggles the worker between checked in and checked out.
func (h *Handler) RecordCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if !decode(w, r, &req) {
		return
	}
	if req.WorkerID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Please select a worker", Field: "workerId"})
		return
	}
	result, err := h.Services.CheckIns.Record(r.Context(), req.WorkerID, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.CheckInFilter{
		WorkerID: q.Get("workerId"),
		Type:     model.CheckInType(q.Get("type")),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive number", Field: "limit"})
			return
		}
		filter.Limit = n
	}
	records, err := h.Services.CheckIns.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.FilterCheckIns(records, q.Get("q"), false))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Services.Dashboard.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

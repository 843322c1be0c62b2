package handler

import (
	"net/http"

	"fieldops.service/internal/core"
)

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Services.Customers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.FilterCustomers(customers, r.URL.Query().Get("q")))
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req core.NewCustomer
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Services.Customers.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Services.Customers.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var patch core.CustomerPatch
	if !decode(w, r, &patch) {
		return
	}
	current, err := h.Services.Customers.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.Services.Customers.Update(r.Context(), current, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) AddInteraction(w http.ResponseWriter, r *http.Request) {
	var req core.NewInteraction
	if !decode(w, r, &req) {
		return
	}
	current, err := h.Services.Customers.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.Services.Customers.AddInteraction(r.Context(), current, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated)
}

func (h *Handler) AddProject(w http.ResponseWriter, r *http.Request) {
	var req core.NewProject
	if !decode(w, r, &req) {
		return
	}
	current, err := h.Services.Customers.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.Services.Customers.AddProject(r.Context(), current, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.Services.Customers.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

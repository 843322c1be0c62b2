package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fieldops.service/internal/app"
	"fieldops.service/internal/core"
	"fieldops.service/internal/ports/backend"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the REST gateway over the domain services.
type Handler struct {
	Services *app.Services
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

// writeError maps a service error to a status code. Only the user-facing
// notice is sent; the detail has already been logged by the service.
func writeError(w http.ResponseWriter, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case core.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "The requested record does not exist."})
	case errors.Is(err, backend.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: core.UserMessage(err)})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: core.UserMessage(err)})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// RequireSession rejects requests made while nobody is signed in.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Services.Auth.IsAuthenticated() {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Please sign in to continue."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Service is operational."))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req core.Credentials
	if !decode(w, r, &req) {
		return
	}
	user, err := h.Services.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req core.Registration
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.Services.Auth.Register(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	user, _ := h.Services.Auth.CurrentUser()
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Services.Auth.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := h.Services.Auth.CurrentUser()
	writeJSON(w, http.StatusOK, user)
}

package handler

import (
	"net/http"
	"time"

	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
)

type surveyRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Anonymous   bool               `json:"anonymous"`
	ExpiresAt   *time.Time         `json:"expiresAt"`
	Questions   model.Questions    `json:"questions"`
	Status      model.SurveyStatus `json:"status"`
}

type statusRequest struct {
	Status model.SurveyStatus `json:"status"`
}

type responseRequest struct {
	Respondent string         `json:"respondent"`
	Answers    []model.Answer `json:"answers"`
}

func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.Services.Surveys.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	surveys = core.FilterSurveys(surveys, r.URL.Query().Get("q"))
	if status := model.SurveyStatus(r.URL.Query().Get("status")); status != "" {
		kept := surveys[:0]
		for _, s := range surveys {
			if s.Status == status {
				kept = append(kept, s)
			}
		}
		surveys = kept
	}
	writeJSON(w, http.StatusOK, surveys)
}

func (h *Handler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if !decode(w, r, &req) {
		return
	}
	draft := &core.SurveyDraft{
		Title:       req.Title,
		Description: req.Description,
		Anonymous:   req.Anonymous,
		ExpiresAt:   req.ExpiresAt,
		Questions:   req.Questions,
	}
	survey, err := h.Services.Surveys.Create(r.Context(), draft, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	survey, err := h.Services.Surveys.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func (h *Handler) UpdateSurveyStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	current, err := h.Services.Surveys.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.Services.Surveys.UpdateStatus(r.Context(), current, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req responseRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.Services.Surveys.SubmitResponse(r.Context(), pathID(r), req.Respondent, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := h.Services.Surveys.Responses(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) SurveySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Services.Surveys.Summary(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

package handler

import (
	"fmt"
	"net/http"
	"time"

	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
	"github.com/rs/zerolog/log"
)

type reportRequest struct {
	Name          string             `json:"name"`
	Type          model.ReportType   `json:"type"`
	DateRange     *model.DateRange   `json:"dateRange"`
	Fields        []string           `json:"fields"`
	IncludeCharts *bool              `json:"includeCharts"`
	Format        model.ExportFormat `json:"format"`
}

// draft applies the request on top of the defaults of a new report.
func (req reportRequest) draft(at time.Time) (*core.ReportDraft, error) {
	d := core.NewReportDraft(at)
	d.Name = req.Name
	if req.Type != "" {
		if err := d.SelectType(req.Type); err != nil {
			return nil, err
		}
	}
	if req.DateRange != nil {
		d.DateRange = *req.DateRange
	}
	if req.Fields != nil {
		d.Fields = req.Fields
	}
	if req.IncludeCharts != nil {
		d.IncludeCharts = *req.IncludeCharts
	}
	if req.Format != "" {
		d.Format = req.Format
	}
	return d, nil
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Services.Reports.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.FilterReports(reports, r.URL.Query().Get("q")))
}

// RequestReport queues a report. The response is 202 while the report
// worker generates it and 201 when it was generated in the request.
func (h *Handler) RequestReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := req.draft(time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := h.Services.Reports.Request(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusAccepted
	if report.Status == model.ReportCompleted {
		status = http.StatusCreated
	}
	writeJSON(w, status, report)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Services.Reports.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	file, err := h.Services.Reports.Download(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write report file")
	}
}

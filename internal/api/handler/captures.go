package handler

import (
	"io"
	"net/http"

	"fieldops.service/internal/core"
)

// maxCaptureBytes bounds a multipart capture upload.
const maxCaptureBytes = 32 << 20

func (h *Handler) ListCaptures(w http.ResponseWriter, r *http.Request) {
	captures, err := h.Services.Captures.List(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, captures)
}

// CreateCapture accepts a multipart form with the capture fields and one or
// more "images" parts.
func (h *Handler) CreateCapture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCaptureBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid capture upload"})
		return
	}
	in := core.NewCapture{
		ProjectID:   r.FormValue("projectId"),
		Location:    r.FormValue("location"),
		Description: r.FormValue("description"),
	}
	for _, fh := range r.MultipartForm.File["images"] {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid capture upload"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid capture upload"})
			return
		}
		in.Images = append(in.Images, core.Image{ContentType: fh.Header.Get("Content-Type"), Data: data})
	}

	capture, err := h.Services.Captures.Capture(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, capture)
}

package model

import "time"

type Attachment struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// Capture is a field observation with photos, recorded against a project.
type Capture struct {
	ID          string       `json:"$id,omitempty"`
	ProjectID   string       `json:"projectId"`
	Location    string       `json:"location"`
	Description string       `json:"description"`
	Images      []Attachment `json:"images"`
	CapturedAt  time.Time    `json:"capturedAt"`
}

package model

import (
	"time"
)

// WorkerStatus is the employment state of a worker.
type WorkerStatus string

const (
	WorkerActive   WorkerStatus = "active"
	WorkerInactive WorkerStatus = "inactive"
)

// Toggle returns the opposite status.
func (s WorkerStatus) Toggle() WorkerStatus {
	if s == WorkerActive {
		return WorkerInactive
	}
	return WorkerActive
}

type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Worker struct {
	ID          string       `json:"$id,omitempty"`
	Name        string       `json:"name"`
	Position    string       `json:"position"`
	Department  string       `json:"department"`
	Status      WorkerStatus `json:"status"`
	ContactInfo ContactInfo  `json:"contactInfo"`
	Skills      []string     `json:"skills"`
	CreatedAt   time.Time    `json:"createdAt"`
	LastActive  *time.Time   `json:"lastActive,omitempty"`
}

package model

import "time"

// CheckInType tells whether a record opens or closes a worker's shift.
type CheckInType string

const (
	TypeCheckIn  CheckInType = "check-in"
	TypeCheckOut CheckInType = "check-out"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// CheckIn is an append-only presence record.
type CheckIn struct {
	ID         string      `json:"$id,omitempty"`
	WorkerID   string      `json:"workerId"`
	WorkerName string      `json:"workerName"`
	Type       CheckInType `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
	Location   Location    `json:"location"`
}

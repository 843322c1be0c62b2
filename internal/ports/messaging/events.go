package messaging

import "time"

// CheckOutEvent is the JSON payload sent via SQS to the email queue when a
// worker closes a shift.
type CheckOutEvent struct {
	CheckInID    string    `json:"checkInId"`
	WorkerID     string    `json:"workerId"`
	WorkerName   string    `json:"workerName"`
	HoursWorked  float64   `json:"hoursWorked"`
	ClockInTime  time.Time `json:"clockInTime"`
	ClockOutTime time.Time `json:"clockOutTime"`
}

// ReportRequestedEvent is the JSON payload sent via SQS to the report queue.
type ReportRequestedEvent struct {
	ReportID    string    `json:"reportId"`
	RequestedAt time.Time `json:"requestedAt"`
}

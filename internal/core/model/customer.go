package model

import "time"

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "Active"
	CustomerInactive CustomerStatus = "Inactive"
	CustomerLead     CustomerStatus = "Lead"
)

// InteractionType values seen in the customer timeline.
const (
	InteractionMeeting   = "Meeting"
	InteractionCall      = "Call"
	InteractionEmail     = "Email"
	InteractionSiteVisit = "Site Visit"
)

// Project status values.
const (
	ProjectPlanning   = "Planning"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
)

type Interaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Staff       string    `json:"staff"`
}

type Project struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Value  float64 `json:"value"`
}

type Customer struct {
	ID           string         `json:"$id,omitempty"`
	Name         string         `json:"name"`
	ContactName  string         `json:"contact"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Address      string         `json:"address"`
	Industry     string         `json:"industry"`
	Website      string         `json:"website,omitempty"`
	Status       CustomerStatus `json:"status"`
	JoinDate     time.Time      `json:"joinDate"`
	Notes        string         `json:"notes,omitempty"`
	Interactions []Interaction  `json:"interactions"`
	Projects     []Project      `json:"projects"`
}

package model

import "time"

type User struct {
	ID        string    `json:"$id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"$createdAt"`
}

// Session is an authenticated context against the backend.
type Session struct {
	ID       string    `json:"$id"`
	UserID   string    `json:"userId"`
	Secret   string    `json:"secret,omitempty"`
	ExpireAt time.Time `json:"expire"`
}

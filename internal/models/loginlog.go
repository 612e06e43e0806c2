package models

import "time"

type Action string

const (
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

// LoginLog is an append-only audit entry.
type LoginLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserRole  Role      `json:"userRole"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

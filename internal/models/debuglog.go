package models

import "time"

// LogLevel is the severity of a debug log entry
type LogLevel string

const (
	LogError   LogLevel = "error"
	LogWarning LogLevel = "warning"
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
)

// LogEntry is one line in the append-only debug log shown in the parent
// app's settings screen
type LogEntry struct {
	ID        string    `json:"id"`
	Level     LogLevel  `json:"level"`
	Context   string    `json:"context"` // e.g. "WishService.RequestRedemption"
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"` // JSON-encoded extras
	CreatedAt time.Time `json:"createdAt"`
}

// LogStats summarizes entry counts per level
type LogStats struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Success  int `json:"success"`
}

package models

import "time"

// ThemeName identifies a visual theme in the child app
type ThemeName string

const (
	ThemeDefault  ThemeName = "default"
	ThemeHuntrix  ThemeName = "huntrix"
	ThemeRabbit   ThemeName = "kaninchen"
	ThemeSpace    ThemeName = "weltraum"
	ThemeDino     ThemeName = "dino"
	ThemeUnicorn  ThemeName = "einhorn"
)

// ValidThemes lists the themes the child app ships with
var ValidThemes = []ThemeName{ThemeDefault, ThemeHuntrix, ThemeRabbit, ThemeSpace, ThemeDino, ThemeUnicorn}

// Child represents a child profile managed by the parents
type Child struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Avatar       string     `json:"avatar"`
	Grade        int        `json:"grade"` // school grade, 1-4
	TotalStars   int        `json:"totalStars"`
	Theme        ThemeName  `json:"theme"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
}

// ChildStats summarizes a child's current state for the parent dashboard
type ChildStats struct {
	ChildID             string     `json:"childId"`
	TotalStars          int        `json:"totalStars"`
	PendingWishes       int        `json:"pendingWishes"`
	TasksToday          int        `json:"tasksToday"`
	CompletedTasksToday int        `json:"completedTasksToday"`
	LastActivity        *time.Time `json:"lastActivity,omitempty"`
}

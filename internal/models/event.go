package models

import "time"

// EventCategory groups calendar entries
type EventCategory string

const (
	EventSchule    EventCategory = "schule"
	EventSport     EventCategory = "sport"
	EventFreizeit  EventCategory = "freizeit"
	EventArzt      EventCategory = "arzt"
	EventSonstiges EventCategory = "sonstiges"
)

// ValidEventCategories lists the categories both apps render
var ValidEventCategories = []EventCategory{EventSchule, EventSport, EventFreizeit, EventArzt, EventSonstiges}

// Event is a calendar entry (school dates, sports, doctor appointments)
type Event struct {
	ID        string        `json:"id"`
	ChildID   string        `json:"childId"`
	Title     string        `json:"title"`
	Date      time.Time     `json:"date"`
	Category  EventCategory `json:"category"`
	Reminder  bool          `json:"reminder"`
	CreatedBy CreatorRole   `json:"createdBy"`
	CreatedAt time.Time     `json:"createdAt"`
}

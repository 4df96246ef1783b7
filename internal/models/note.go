package models

import "time"

// NoteEntry is a photographed notebook page. StarsEarned mirrors the last
// ledger entry issued for this note (±5) and is a display cache only; the
// ledger remains authoritative.
type NoteEntry struct {
	ID         string      `json:"id"`
	ChildID    string      `json:"childId"`
	Subject    SubjectType `json:"subject"`
	Topic      string      `json:"topic"`
	PhotoURI   string      `json:"photoUri"`
	Understood bool        `json:"understood"`
	StarsEarned int        `json:"starsEarned"`
	Date       time.Time   `json:"date"`
	ParentNote *string     `json:"parentNote,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

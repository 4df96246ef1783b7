package models

import "time"

// SubjectType is a school subject (or "alltag" for household chores)
type SubjectType string

const (
	SubjectMathe     SubjectType = "mathe"
	SubjectDeutsch   SubjectType = "deutsch"
	SubjectSachkunde SubjectType = "sachkunde"
	SubjectKunst     SubjectType = "kunst"
	SubjectMusik     SubjectType = "musik"
	SubjectSport     SubjectType = "sport"
	SubjectEnglisch  SubjectType = "englisch"
	SubjectReligion  SubjectType = "religion"
	SubjectAlltag    SubjectType = "alltag"
)

// ValidSubjects lists every subject the apps know about
var ValidSubjects = []SubjectType{
	SubjectMathe, SubjectDeutsch, SubjectSachkunde, SubjectKunst, SubjectMusik,
	SubjectSport, SubjectEnglisch, SubjectReligion, SubjectAlltag,
}

// CreatorRole records which side of the household created a record
type CreatorRole string

const (
	CreatedByChild  CreatorRole = "child"
	CreatedByParent CreatorRole = "parent"
)

// Task is a homework or chores item. StarsAwarded is fixed at creation;
// toggling done issues a ledger entry of ±StarsAwarded.
type Task struct {
	ID           string       `json:"id"`
	ChildID      string       `json:"childId"`
	Title        string       `json:"title"`
	Subject      *SubjectType `json:"subject,omitempty"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
	Done         bool         `json:"done"`
	StarsAwarded int          `json:"starsAwarded"`
	CreatedBy    CreatorRole  `json:"createdBy"`
	CreatedAt    time.Time    `json:"createdAt"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
}

// IsDueOn reports whether the task's due date falls on the given calendar day
func (t *Task) IsDueOn(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	y1, m1, d1 := t.DueDate.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

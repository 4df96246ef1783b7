package models

import "time"

// StarSource identifies what kind of action produced a ledger entry
type StarSource string

const (
	SourceTaskCompleted     StarSource = "task_completed"
	SourceNoteUnderstood    StarSource = "note_understood"
	SourceExerciseCompleted StarSource = "exercise_completed"
	SourceWishRedeemed      StarSource = "wish_redeemed"
	SourceBonus             StarSource = "bonus"
	SourceManual            StarSource = "manual"
)

// StarLedgerEntry is one immutable line in a child's star journal.
// Amount records the delta that was requested, not the clamped effect on the
// balance; the journal shows intent, the balance shows clamped reality.
type StarLedgerEntry struct {
	ID        string     `json:"id"`
	ChildID   string     `json:"childId"`
	Amount    int        `json:"amount"` // signed: positive earned, negative spent
	Reason    string     `json:"reason"`
	Source    StarSource `json:"source"`
	SourceID  string     `json:"sourceId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

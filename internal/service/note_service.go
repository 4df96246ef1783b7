package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
	"sternwerk/internal/repository"
	"sternwerk/internal/validation"
)

// NoteStars is the fixed reward for a notebook page marked understood
const NoteStars = 5

var (
	ErrNoteNotFound = errors.New("note not found")
)

// NoteService manages notebook review entries. Marking a page understood
// credits a fixed five stars, unmarking requests them back.
type NoteService struct {
	db        *database.DB
	noteRepo  *repository.NoteRepository
	childRepo *repository.ChildRepository
	ledger    *LedgerService
	logs      *DebugLogService
}

// NewNoteService creates a new note service
func NewNoteService(db *database.DB, noteRepo *repository.NoteRepository, childRepo *repository.ChildRepository, ledger *LedgerService, logs *DebugLogService) *NoteService {
	return &NoteService{
		db:        db,
		noteRepo:  noteRepo,
		childRepo: childRepo,
		ledger:    ledger,
		logs:      logs,
	}
}

// CreateNote records a photographed notebook page. The photo itself lives on
// the device; only its URI is stored.
func (s *NoteService) CreateNote(childID string, subject models.SubjectType, topic, photoURI string, date time.Time) (*models.NoteEntry, error) {
	if err := validation.ValidateSubject(subject); err != nil {
		return nil, err
	}
	if err := validation.ValidateTitle(topic); err != nil {
		return nil, err
	}

	note := &models.NoteEntry{
		ID:        uuid.New().String(),
		ChildID:   childID,
		Subject:   subject,
		Topic:     topic,
		PhotoURI:  photoURI,
		Date:      date,
		CreatedAt: time.Now(),
	}
	if err := s.noteRepo.Create(note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// GetNote returns one note
func (s *NoteService) GetNote(noteID string) (*models.NoteEntry, error) {
	note, err := s.noteRepo.GetByID(s.db, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// ListNotes returns a child's notes
func (s *NoteService) ListNotes(childID string) ([]models.NoteEntry, error) {
	return s.noteRepo.ListByChild(childID)
}

// ListNotesBySubject returns a child's notes for one subject
func (s *NoteService) ListNotesBySubject(childID string, subject models.SubjectType) ([]models.NoteEntry, error) {
	if err := validation.ValidateSubject(subject); err != nil {
		return nil, err
	}
	return s.noteRepo.ListBySubject(childID, subject)
}

// ToggleUnderstood flips a note's understood flag. Marking understood credits
// five stars, unmarking requests five back; note update and ledger movement
// commit together. Returns the updated note, the signed star delta that was
// requested and the balance after.
func (s *NoteService) ToggleUnderstood(noteID string) (*models.NoteEntry, int, int, error) {
	// Resolve the child before taking its lock.
	note, err := s.GetNote(noteID)
	if err != nil {
		return nil, 0, 0, err
	}

	var delta, newTotal int
	var reason string
	err = s.ledger.WithChildLock(note.ChildID, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		// Re-read under the lock; a concurrent toggle may have flipped the
		// note since the lookup above.
		note, err = s.noteRepo.GetByID(tx, noteID)
		if err != nil {
			return fmt.Errorf("failed to load note: %w", err)
		}
		if note == nil {
			return ErrNoteNotFound
		}

		delta = NoteStars
		reason = fmt.Sprintf("Heftseite verstanden: %s", note.Topic)
		if note.Understood {
			delta = -NoteStars
			reason = fmt.Sprintf("Heftseite zurückgenommen: %s", note.Topic)
		}

		note.Understood = !note.Understood
		// StarsEarned mirrors the last ledger movement for this page, so an
		// un-toggle shows -5, not 0.
		note.StarsEarned = delta
		if err := s.noteRepo.Update(tx, note); err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}

		if _, newTotal, err = s.ledger.ApplyDeltaTx(tx, note.ChildID, delta, reason, models.SourceNoteUnderstood, note.ID); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, 0, 0, err
	}

	if err := s.childRepo.TouchActivity(note.ChildID, time.Now()); err != nil {
		s.logs.Warning("NoteService.ToggleUnderstood", "failed to update last activity", map[string]interface{}{
			"childId": note.ChildID,
			"error":   err.Error(),
		})
	}

	return note, delta, newTotal, nil
}

// SetParentNote attaches or clears a parent's comment on a note
func (s *NoteService) SetParentNote(noteID string, parentNote *string) (*models.NoteEntry, error) {
	note, err := s.GetNote(noteID)
	if err != nil {
		return nil, err
	}

	note.ParentNote = parentNote
	if err := s.noteRepo.Update(s.db, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// DeleteNote removes a note. Ledger entries it produced stay in the journal.
func (s *NoteService) DeleteNote(noteID string) error {
	if _, err := s.GetNote(noteID); err != nil {
		return err
	}
	return s.noteRepo.Delete(noteID)
}

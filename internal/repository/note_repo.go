package repository

import (
	"database/sql"
	"fmt"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// NoteRepository handles database operations for notebook entries
type NoteRepository struct {
	db *database.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *database.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = "id, child_id, subject, topic, photo_uri, understood, stars_earned, note_date, parent_note, created_at"

// Create inserts a new notebook entry
func (r *NoteRepository) Create(note *models.NoteEntry) error {
	query := "INSERT INTO notes (id, child_id, subject, topic, photo_uri, understood, stars_earned, note_date, parent_note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, note.ID, note.ChildID, string(note.Subject), note.Topic,
		note.PhotoURI, note.Understood, note.StarsEarned, note.Date, note.ParentNote, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// GetByID retrieves a notebook entry by ID, or nil if not found
func (r *NoteRepository) GetByID(q database.DBTX, noteID string) (*models.NoteEntry, error) {
	query := "SELECT " + noteColumns + " FROM notes WHERE id = ?"
	note, err := scanNoteRow(q.QueryRow(query, noteID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// ListByChild retrieves all notebook entries for a child, newest first
func (r *NoteRepository) ListByChild(childID string) ([]models.NoteEntry, error) {
	query := "SELECT " + noteColumns + " FROM notes WHERE child_id = ? ORDER BY note_date DESC"
	return r.queryNotes(query, childID)
}

// ListBySubject retrieves a child's notebook entries for one subject
func (r *NoteRepository) ListBySubject(childID string, subject models.SubjectType) ([]models.NoteEntry, error) {
	query := "SELECT " + noteColumns + " FROM notes WHERE child_id = ? AND subject = ? ORDER BY note_date DESC"
	return r.queryNotes(query, childID, string(subject))
}

// Update rewrites a note's mutable fields inside an optional transaction
func (r *NoteRepository) Update(q database.DBTX, note *models.NoteEntry) error {
	query := "UPDATE notes SET topic = ?, photo_uri = ?, understood = ?, stars_earned = ?, parent_note = ? WHERE id = ?"
	_, err := q.Exec(query, note.Topic, note.PhotoURI, note.Understood, note.StarsEarned, note.ParentNote, note.ID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// Delete removes a notebook entry
func (r *NoteRepository) Delete(noteID string) error {
	_, err := r.db.Exec("DELETE FROM notes WHERE id = ?", noteID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func (r *NoteRepository) queryNotes(query string, args ...interface{}) ([]models.NoteEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []models.NoteEntry
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

func scanNoteRow(row *sql.Row) (*models.NoteEntry, error) {
	note := &models.NoteEntry{}
	var subject string
	var parentNote sql.NullString
	err := row.Scan(&note.ID, &note.ChildID, &subject, &note.Topic, &note.PhotoURI,
		&note.Understood, &note.StarsEarned, &note.Date, &parentNote, &note.CreatedAt)
	if err != nil {
		return nil, err
	}
	note.Subject = models.SubjectType(subject)
	if parentNote.Valid {
		note.ParentNote = &parentNote.String
	}
	return note, nil
}

func scanNote(rows *sql.Rows) (*models.NoteEntry, error) {
	note := &models.NoteEntry{}
	var subject string
	var parentNote sql.NullString
	err := rows.Scan(&note.ID, &note.ChildID, &subject, &note.Topic, &note.PhotoURI,
		&note.Understood, &note.StarsEarned, &note.Date, &parentNote, &note.CreatedAt)
	if err != nil {
		return nil, err
	}
	note.Subject = models.SubjectType(subject)
	if parentNote.Valid {
		note.ParentNote = &parentNote.String
	}
	return note, nil
}

package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// BackupData is the complete database snapshot written by the backup CLI
type BackupData struct {
	Version      string                   `json:"version"`
	ExportedAt   time.Time                `json:"exported_at"`
	Users        []models.User            `json:"users"`
	Children     []models.Child           `json:"children"`
	Ledger       []models.StarLedgerEntry `json:"ledger"`
	Tasks        []models.Task            `json:"tasks"`
	Notes        []models.NoteEntry       `json:"notes"`
	Wishes       []models.RewardWish      `json:"wishes"`
	Events       []models.Event           `json:"events"`
	Settings     map[string]string        `json:"settings"`
	PasswordData []backupUserSecret       `json:"password_data"`
}

// backupUserSecret carries the credential columns the User JSON tags hide
type backupUserSecret struct {
	UserID        string `json:"user_id"`
	PasswordHash  string `json:"password_hash"`
	OAuthProvider string `json:"oauth_provider"`
	OAuthSubject  string `json:"oauth_subject"`
}

// BackupService handles database export and restore
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Settings:   make(map[string]string),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportChildren(backup); err != nil {
		return fmt.Errorf("failed to export children: %w", err)
	}
	if err := s.exportLedger(backup); err != nil {
		return fmt.Errorf("failed to export ledger: %w", err)
	}
	if err := s.exportTasks(backup); err != nil {
		return fmt.Errorf("failed to export tasks: %w", err)
	}
	if err := s.exportNotes(backup); err != nil {
		return fmt.Errorf("failed to export notes: %w", err)
	}
	if err := s.exportWishes(backup); err != nil {
		return fmt.Errorf("failed to export wishes: %w", err)
	}
	if err := s.exportEvents(backup); err != nil {
		return fmt.Errorf("failed to export events: %w", err)
	}
	if err := s.exportSettings(backup); err != nil {
		return fmt.Errorf("failed to export settings: %w", err)
	}

	log.Printf("Exported: %d users, %d children, %d ledger entries, %d tasks, %d notes, %d wishes, %d events",
		len(backup.Users), len(backup.Children), len(backup.Ledger),
		len(backup.Tasks), len(backup.Notes), len(backup.Wishes), len(backup.Events))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup stream
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Restore in dependency order
	if err := s.importUsers(backup.Users, backup.PasswordData); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importChildren(backup.Children); err != nil {
		return fmt.Errorf("failed to import children: %w", err)
	}
	if err := s.importLedger(backup.Ledger); err != nil {
		return fmt.Errorf("failed to import ledger: %w", err)
	}
	if err := s.importTasks(backup.Tasks); err != nil {
		return fmt.Errorf("failed to import tasks: %w", err)
	}
	if err := s.importNotes(backup.Notes); err != nil {
		return fmt.Errorf("failed to import notes: %w", err)
	}
	if err := s.importWishes(backup.Wishes); err != nil {
		return fmt.Errorf("failed to import wishes: %w", err)
	}
	if err := s.importEvents(backup.Events); err != nil {
		return fmt.Errorf("failed to import events: %w", err)
	}
	if err := s.importSettings(backup.Settings); err != nil {
		return fmt.Errorf("failed to import settings: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, email, password_hash, name, oauth_provider, oauth_subject, created_at FROM users ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
		backup.PasswordData = append(backup.PasswordData, backupUserSecret{
			UserID:        u.ID,
			PasswordHash:  u.PasswordHash,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
		})
	}
	return rows.Err()
}

func (s *BackupService) exportChildren(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, avatar, grade, total_stars, theme, created_at, last_activity FROM children ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Child
		var lastActivity sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Avatar, &c.Grade, &c.TotalStars, &c.Theme, &c.CreatedAt, &lastActivity); err != nil {
			return err
		}
		if lastActivity.Valid {
			c.LastActivity = &lastActivity.Time
		}
		backup.Children = append(backup.Children, c)
	}
	return rows.Err()
}

func (s *BackupService) exportLedger(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, child_id, amount, reason, source, COALESCE(source_id, ''), created_at FROM star_ledger ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.StarLedgerEntry
		if err := rows.Scan(&e.ID, &e.ChildID, &e.Amount, &e.Reason, &e.Source, &e.SourceID, &e.CreatedAt); err != nil {
			return err
		}
		backup.Ledger = append(backup.Ledger, e)
	}
	return rows.Err()
}

func (s *BackupService) exportTasks(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, child_id, title, subject, due_date, done, stars_awarded, created_by, created_at, completed_at FROM tasks ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Task
		var subject sql.NullString
		var dueDate, completedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.ChildID, &t.Title, &subject, &dueDate, &t.Done, &t.StarsAwarded, &t.CreatedBy, &t.CreatedAt, &completedAt); err != nil {
			return err
		}
		if subject.Valid {
			subj := models.SubjectType(subject.String)
			t.Subject = &subj
		}
		if dueDate.Valid {
			t.DueDate = &dueDate.Time
		}
		if completedAt.Valid {
			t.CompletedAt = &completedAt.Time
		}
		backup.Tasks = append(backup.Tasks, t)
	}
	return rows.Err()
}

func (s *BackupService) exportNotes(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, child_id, subject, topic, photo_uri, understood, stars_earned, note_date, parent_note, created_at FROM notes ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var n models.NoteEntry
		var parentNote sql.NullString
		if err := rows.Scan(&n.ID, &n.ChildID, &n.Subject, &n.Topic, &n.PhotoURI, &n.Understood, &n.StarsEarned, &n.Date, &parentNote, &n.CreatedAt); err != nil {
			return err
		}
		if parentNote.Valid {
			n.ParentNote = &parentNote.String
		}
		backup.Notes = append(backup.Notes, n)
	}
	return rows.Err()
}

func (s *BackupService) exportWishes(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, child_id, title, star_price, status, created_at, requested_at, approved_at, rejected_at, fulfilled_at, parent_note FROM wishes ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w models.RewardWish
		var requestedAt, approvedAt, rejectedAt, fulfilledAt sql.NullTime
		var parentNote sql.NullString
		if err := rows.Scan(&w.ID, &w.ChildID, &w.Title, &w.StarPrice, &w.Status, &w.CreatedAt, &requestedAt, &approvedAt, &rejectedAt, &fulfilledAt, &parentNote); err != nil {
			return err
		}
		if requestedAt.Valid {
			w.RequestedAt = &requestedAt.Time
		}
		if approvedAt.Valid {
			w.ApprovedAt = &approvedAt.Time
		}
		if rejectedAt.Valid {
			w.RejectedAt = &rejectedAt.Time
		}
		if fulfilledAt.Valid {
			w.FulfilledAt = &fulfilledAt.Time
		}
		if parentNote.Valid {
			w.ParentNote = &parentNote.String
		}
		backup.Wishes = append(backup.Wishes, w)
	}
	return rows.Err()
}

func (s *BackupService) exportEvents(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, child_id, title, event_date, category, reminder, created_by, created_at FROM events ORDER BY event_date")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.ChildID, &e.Title, &e.Date, &e.Category, &e.Reminder, &e.CreatedBy, &e.CreatedAt); err != nil {
			return err
		}
		backup.Events = append(backup.Events, e)
	}
	return rows.Err()
}

func (s *BackupService) exportSettings(backup *BackupData) error {
	rows, err := s.db.Query("SELECT setting_key, setting_value FROM settings ORDER BY setting_key")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		backup.Settings[key] = value
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []models.User, secrets []backupUserSecret) error {
	log.Printf("Importing %d users...", len(users))
	secretByUser := make(map[string]backupUserSecret, len(secrets))
	for _, sec := range secrets {
		secretByUser[sec.UserID] = sec
	}

	for _, u := range users {
		sec := secretByUser[u.ID]
		_, err := s.db.Exec(
			"INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			u.ID, u.Email, sec.PasswordHash, u.Name, sec.OAuthProvider, sec.OAuthSubject, u.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importChildren(children []models.Child) error {
	log.Printf("Importing %d children...", len(children))
	for _, c := range children {
		_, err := s.db.Exec(
			"INSERT INTO children (id, name, avatar, grade, total_stars, theme, created_at, last_activity) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			c.ID, c.Name, c.Avatar, c.Grade, c.TotalStars, c.Theme, c.CreatedAt, nullableTime(c.LastActivity),
		)
		if err != nil {
			return fmt.Errorf("failed to import child %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importLedger(entries []models.StarLedgerEntry) error {
	log.Printf("Importing %d ledger entries...", len(entries))
	for _, e := range entries {
		_, err := s.db.Exec(
			"INSERT INTO star_ledger (id, child_id, amount, reason, source, source_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			e.ID, e.ChildID, e.Amount, e.Reason, e.Source, nullIfEmpty(e.SourceID), e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import ledger entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTasks(tasks []models.Task) error {
	log.Printf("Importing %d tasks...", len(tasks))
	for _, t := range tasks {
		var subject interface{}
		if t.Subject != nil {
			subject = string(*t.Subject)
		}
		_, err := s.db.Exec(
			"INSERT INTO tasks (id, child_id, title, subject, due_date, done, stars_awarded, created_by, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			t.ID, t.ChildID, t.Title, subject, nullableTime(t.DueDate), t.Done, t.StarsAwarded, t.CreatedBy, t.CreatedAt, nullableTime(t.CompletedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to import task %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importNotes(notes []models.NoteEntry) error {
	log.Printf("Importing %d notes...", len(notes))
	for _, n := range notes {
		var parentNote interface{}
		if n.ParentNote != nil {
			parentNote = *n.ParentNote
		}
		_, err := s.db.Exec(
			"INSERT INTO notes (id, child_id, subject, topic, photo_uri, understood, stars_earned, note_date, parent_note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			n.ID, n.ChildID, n.Subject, n.Topic, n.PhotoURI, n.Understood, n.StarsEarned, n.Date, parentNote, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import note %s: %w", n.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importWishes(wishes []models.RewardWish) error {
	log.Printf("Importing %d wishes...", len(wishes))
	for _, w := range wishes {
		var parentNote interface{}
		if w.ParentNote != nil {
			parentNote = *w.ParentNote
		}
		_, err := s.db.Exec(
			"INSERT INTO wishes (id, child_id, title, star_price, status, created_at, requested_at, approved_at, rejected_at, fulfilled_at, parent_note) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			w.ID, w.ChildID, w.Title, w.StarPrice, w.Status, w.CreatedAt,
			nullableTime(w.RequestedAt), nullableTime(w.ApprovedAt), nullableTime(w.RejectedAt), nullableTime(w.FulfilledAt), parentNote,
		)
		if err != nil {
			return fmt.Errorf("failed to import wish %s: %w", w.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importEvents(events []models.Event) error {
	log.Printf("Importing %d events...", len(events))
	for _, e := range events {
		_, err := s.db.Exec(
			"INSERT INTO events (id, child_id, title, event_date, category, reminder, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			e.ID, e.ChildID, e.Title, e.Date, e.Category, e.Reminder, e.CreatedBy, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import event %s: %w", e.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSettings(settings map[string]string) error {
	log.Printf("Importing %d settings...", len(settings))
	upsert := s.db.Dialect.UpsertSettingQuery()
	for key, value := range settings {
		if _, err := s.db.Exec(upsert, key, value); err != nil {
			return fmt.Errorf("failed to import setting %s: %w", key, err)
		}
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

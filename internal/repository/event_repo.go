package repository

import (
	"database/sql"
	"fmt"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// EventRepository handles database operations for calendar events
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = "id, child_id, title, event_date, category, reminder, created_by, created_at"

// Create inserts a new event
func (r *EventRepository) Create(event *models.Event) error {
	query := "INSERT INTO events (id, child_id, title, event_date, category, reminder, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, event.ID, event.ChildID, event.Title, event.Date,
		string(event.Category), event.Reminder, string(event.CreatedBy), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID, or nil if not found
func (r *EventRepository) GetByID(eventID string) (*models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE id = ?"
	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	event, err := scanEvent(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return event, nil
}

// ListByChild retrieves all events for a child, soonest first
func (r *EventRepository) ListByChild(childID string) ([]models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE child_id = ? ORDER BY event_date ASC"
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// Update rewrites an event's mutable fields
func (r *EventRepository) Update(event *models.Event) error {
	query := "UPDATE events SET title = ?, event_date = ?, category = ?, reminder = ? WHERE id = ?"
	_, err := r.db.Exec(query, event.Title, event.Date, string(event.Category), event.Reminder, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(eventID string) error {
	_, err := r.db.Exec("DELETE FROM events WHERE id = ?", eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func scanEvent(rows *sql.Rows) (*models.Event, error) {
	event := &models.Event{}
	var category, createdBy string
	err := rows.Scan(&event.ID, &event.ChildID, &event.Title, &event.Date,
		&category, &event.Reminder, &createdBy, &event.CreatedAt)
	if err != nil {
		return nil, err
	}
	event.Category = models.EventCategory(category)
	event.CreatedBy = models.CreatorRole(createdBy)
	return event, nil
}

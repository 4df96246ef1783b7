package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sternwerk/internal/models"
	"sternwerk/internal/repository"
	"sternwerk/internal/validation"
)

var (
	ErrEventNotFound = errors.New("event not found")
)

// EventService manages the shared family calendar. Events never touch the
// star ledger.
type EventService struct {
	eventRepo *repository.EventRepository
}

// NewEventService creates a new event service
func NewEventService(eventRepo *repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

// CreateEvent records a calendar entry for one child
func (s *EventService) CreateEvent(childID, title string, date time.Time, category models.EventCategory, reminder bool, createdBy models.CreatorRole) (*models.Event, error) {
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateEventCategory(category); err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:        uuid.New().String(),
		ChildID:   childID,
		Title:     title,
		Date:      date,
		Category:  category,
		Reminder:  reminder,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if err := s.eventRepo.Create(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// GetEvent returns one event
func (s *EventService) GetEvent(eventID string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// ListEvents returns a child's upcoming and past events, soonest first
func (s *EventService) ListEvents(childID string) ([]models.Event, error) {
	return s.eventRepo.ListByChild(childID)
}

// UpdateEvent changes an event's details
func (s *EventService) UpdateEvent(eventID, title string, date time.Time, category models.EventCategory, reminder bool) (*models.Event, error) {
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateEventCategory(category); err != nil {
		return nil, err
	}

	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	event.Title = title
	event.Date = date
	event.Category = category
	event.Reminder = reminder
	if err := s.eventRepo.Update(event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event
func (s *EventService) DeleteEvent(eventID string) error {
	if _, err := s.GetEvent(eventID); err != nil {
		return err
	}
	return s.eventRepo.Delete(eventID)
}

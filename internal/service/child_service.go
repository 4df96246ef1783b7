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
	ErrChildNotFound = errors.New("child not found")
)

// ChildService manages child profiles and the parent dashboard stats
type ChildService struct {
	childRepo *repository.ChildRepository
	taskRepo  *repository.TaskRepository
	wishRepo  *repository.WishRepository
}

// NewChildService creates a new child service
func NewChildService(childRepo *repository.ChildRepository, taskRepo *repository.TaskRepository, wishRepo *repository.WishRepository) *ChildService {
	return &ChildService{
		childRepo: childRepo,
		taskRepo:  taskRepo,
		wishRepo:  wishRepo,
	}
}

// CreateChild creates a new child profile with an empty star balance
func (s *ChildService) CreateChild(name, avatar string, grade int) (*models.Child, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateGrade(grade); err != nil {
		return nil, err
	}

	child := &models.Child{
		ID:        uuid.New().String(),
		Name:      name,
		Avatar:    avatar,
		Grade:     grade,
		Theme:     models.ThemeDefault,
		CreatedAt: time.Now(),
	}
	if err := s.childRepo.Create(child); err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	return child, nil
}

// GetChild returns one child profile
func (s *ChildService) GetChild(childID string) (*models.Child, error) {
	child, err := s.childRepo.GetByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// ListChildren returns all child profiles
func (s *ChildService) ListChildren() ([]models.Child, error) {
	return s.childRepo.List()
}

// UpdateChild changes a child's name, avatar or grade
func (s *ChildService) UpdateChild(childID, name, avatar string, grade int) (*models.Child, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateGrade(grade); err != nil {
		return nil, err
	}

	child, err := s.GetChild(childID)
	if err != nil {
		return nil, err
	}

	child.Name = name
	child.Avatar = avatar
	child.Grade = grade
	if err := s.childRepo.Update(child); err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	return child, nil
}

// SetTheme switches the child app's visual theme
func (s *ChildService) SetTheme(childID string, theme models.ThemeName) (*models.Child, error) {
	if err := validation.ValidateTheme(theme); err != nil {
		return nil, err
	}

	child, err := s.GetChild(childID)
	if err != nil {
		return nil, err
	}

	if err := s.childRepo.UpdateTheme(childID, theme); err != nil {
		return nil, fmt.Errorf("failed to update theme: %w", err)
	}
	child.Theme = theme
	return child, nil
}

// DeleteChild removes a child profile. Journal entries stay for the record.
func (s *ChildService) DeleteChild(childID string) error {
	if _, err := s.GetChild(childID); err != nil {
		return err
	}
	return s.childRepo.Delete(childID)
}

// GetStats assembles the dashboard summary for one child
func (s *ChildService) GetStats(childID string) (*models.ChildStats, error) {
	child, err := s.GetChild(childID)
	if err != nil {
		return nil, err
	}

	pending, err := s.wishRepo.CountByChildAndStatus(childID, models.WishPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending wishes: %w", err)
	}

	tasks, err := s.taskRepo.ListByChild(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	today := time.Now()
	stats := &models.ChildStats{
		ChildID:       childID,
		TotalStars:    child.TotalStars,
		PendingWishes: pending,
		LastActivity:  child.LastActivity,
	}
	for i := range tasks {
		if !tasks[i].IsDueOn(today) {
			continue
		}
		stats.TasksToday++
		if tasks[i].Done {
			stats.CompletedTasksToday++
		}
	}

	return stats, nil
}

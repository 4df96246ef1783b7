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

var (
	ErrTaskNotFound = errors.New("task not found")
)

// TaskService manages homework and chores. Toggling a task done or undone
// moves the task's fixed star reward through the ledger in the same
// transaction as the task update.
type TaskService struct {
	db        *database.DB
	taskRepo  *repository.TaskRepository
	childRepo *repository.ChildRepository
	ledger    *LedgerService
	logs      *DebugLogService
}

// NewTaskService creates a new task service
func NewTaskService(db *database.DB, taskRepo *repository.TaskRepository, childRepo *repository.ChildRepository, ledger *LedgerService, logs *DebugLogService) *TaskService {
	return &TaskService{
		db:        db,
		taskRepo:  taskRepo,
		childRepo: childRepo,
		ledger:    ledger,
		logs:      logs,
	}
}

// CreateTask creates a new open task. StarsAwarded is fixed for the task's
// lifetime so that a later undo reverses exactly what completion granted.
func (s *TaskService) CreateTask(childID, title string, subject *models.SubjectType, dueDate *time.Time, starsAwarded int, createdBy models.CreatorRole) (*models.Task, error) {
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateStarsAwarded(starsAwarded); err != nil {
		return nil, err
	}
	if subject != nil {
		if err := validation.ValidateSubject(*subject); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ID:           uuid.New().String(),
		ChildID:      childID,
		Title:        title,
		Subject:      subject,
		DueDate:      dueDate,
		Done:         false,
		StarsAwarded: starsAwarded,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask returns one task
func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(s.db, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns a child's tasks
func (s *TaskService) ListTasks(childID string) ([]models.Task, error) {
	return s.taskRepo.ListByChild(childID)
}

// UpdateTask changes a task's title, subject or due date. Done state moves
// only through ToggleDone, and the star reward stays fixed.
func (s *TaskService) UpdateTask(taskID, title string, subject *models.SubjectType, dueDate *time.Time) (*models.Task, error) {
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if subject != nil {
		if err := validation.ValidateSubject(*subject); err != nil {
			return nil, err
		}
	}

	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	task.Title = title
	task.Subject = subject
	task.DueDate = dueDate
	if err := s.taskRepo.Update(s.db, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// ToggleDone flips a task between open and done. Completing credits the
// task's star reward, undoing requests the same amount back; both the task
// update and the ledger movement commit together. Returns the updated task,
// the signed star delta that was requested and the child's balance after the
// movement. The delta is what the client shows as feedback; the balance may
// differ when the floor clamp kicked in.
func (s *TaskService) ToggleDone(taskID string) (*models.Task, int, int, error) {
	// Resolve the child before taking its lock.
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, 0, 0, err
	}

	now := time.Now()
	var delta, newTotal int
	var reason string
	err = s.ledger.WithChildLock(task.ChildID, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		// Re-read under the lock; a concurrent toggle may have flipped the
		// task since the lookup above.
		task, err = s.taskRepo.GetByID(tx, taskID)
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}
		if task == nil {
			return ErrTaskNotFound
		}

		delta = task.StarsAwarded
		reason = fmt.Sprintf("Aufgabe erledigt: %s", task.Title)
		if task.Done {
			delta = -task.StarsAwarded
			reason = fmt.Sprintf("Aufgabe zurückgenommen: %s", task.Title)
		}

		task.Done = !task.Done
		if task.Done {
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
		if err := s.taskRepo.Update(tx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if _, newTotal, err = s.ledger.ApplyDeltaTx(tx, task.ChildID, delta, reason, models.SourceTaskCompleted, task.ID); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, 0, 0, err
	}

	if err := s.childRepo.TouchActivity(task.ChildID, now); err != nil {
		s.logs.Warning("TaskService.ToggleDone", "failed to update last activity", map[string]interface{}{
			"childId": task.ChildID,
			"error":   err.Error(),
		})
	}

	s.logs.Success("TaskService.ToggleDone", reason, map[string]interface{}{
		"taskId":  task.ID,
		"childId": task.ChildID,
		"delta":   delta,
		"balance": newTotal,
	})

	return task, delta, newTotal, nil
}

// DeleteTask removes a task. Ledger entries the task produced stay in the
// journal.
func (s *TaskService) DeleteTask(taskID string) error {
	if _, err := s.GetTask(taskID); err != nil {
		return err
	}
	return s.taskRepo.Delete(taskID)
}

package repository

import (
	"database/sql"
	"fmt"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = "id, child_id, title, subject, due_date, done, stars_awarded, created_by, created_at, completed_at"

// Create inserts a new task
func (r *TaskRepository) Create(task *models.Task) error {
	query := "INSERT INTO tasks (id, child_id, title, subject, due_date, done, stars_awarded, created_by, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	var subject interface{}
	if task.Subject != nil {
		subject = string(*task.Subject)
	}
	_, err := r.db.Exec(query, task.ID, task.ChildID, task.Title, subject, task.DueDate,
		task.Done, task.StarsAwarded, string(task.CreatedBy), task.CreatedAt, task.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by ID, or nil if not found
func (r *TaskRepository) GetByID(q database.DBTX, taskID string) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ?"
	task, err := scanTaskRow(q.QueryRow(query, taskID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListByChild retrieves all tasks for a child, newest first
func (r *TaskRepository) ListByChild(childID string) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE child_id = ? ORDER BY created_at DESC"
	return r.queryTasks(query, childID)
}

// Update rewrites a task's mutable fields inside an optional transaction
func (r *TaskRepository) Update(q database.DBTX, task *models.Task) error {
	query := "UPDATE tasks SET title = ?, subject = ?, due_date = ?, done = ?, completed_at = ? WHERE id = ?"
	var subject interface{}
	if task.Subject != nil {
		subject = string(*task.Subject)
	}
	_, err := q.Exec(query, task.Title, subject, task.DueDate, task.Done, task.CompletedAt, task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task. Ledger entries issued for past completions stay.
func (r *TaskRepository) Delete(taskID string) error {
	_, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) queryTasks(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTaskRow(row *sql.Row) (*models.Task, error) {
	task := &models.Task{}
	var subject sql.NullString
	var dueDate, completedAt sql.NullTime
	var createdBy string
	err := row.Scan(&task.ID, &task.ChildID, &task.Title, &subject, &dueDate,
		&task.Done, &task.StarsAwarded, &createdBy, &task.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if subject.Valid {
		s := models.SubjectType(subject.String)
		task.Subject = &s
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	task.CreatedBy = models.CreatorRole(createdBy)
	return task, nil
}

func scanTask(rows *sql.Rows) (*models.Task, error) {
	task := &models.Task{}
	var subject sql.NullString
	var dueDate, completedAt sql.NullTime
	var createdBy string
	err := rows.Scan(&task.ID, &task.ChildID, &task.Title, &subject, &dueDate,
		&task.Done, &task.StarsAwarded, &createdBy, &task.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if subject.Valid {
		s := models.SubjectType(subject.String)
		task.Subject = &s
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	task.CreatedBy = models.CreatorRole(createdBy)
	return task, nil
}

package repository

import (
	"database/sql"
	"fmt"
	"time"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// ChildRepository handles database operations for child profiles
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = "id, name, avatar, grade, total_stars, theme, created_at, last_activity"

// Create inserts a new child profile
func (r *ChildRepository) Create(child *models.Child) error {
	query := "INSERT INTO children (id, name, avatar, grade, total_stars, theme, created_at, last_activity) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query,
		child.ID, child.Name, child.Avatar, child.Grade, child.TotalStars,
		string(child.Theme), child.CreatedAt, child.LastActivity)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}
	return nil
}

// GetByID retrieves a child by ID, or nil if not found
func (r *ChildRepository) GetByID(childID string) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE id = ?"
	child, err := scanChild(r.db.QueryRow(query, childID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// List retrieves all children ordered by creation time
func (r *ChildRepository) List() ([]models.Child, error) {
	query := "SELECT " + childColumns + " FROM children ORDER BY created_at ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		child, err := scanChildRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}
	return children, rows.Err()
}

// Update rewrites a child's editable profile fields
func (r *ChildRepository) Update(child *models.Child) error {
	query := "UPDATE children SET name = ?, avatar = ?, grade = ?, theme = ? WHERE id = ?"
	_, err := r.db.Exec(query, child.Name, child.Avatar, child.Grade, string(child.Theme), child.ID)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// UpdateTheme changes only the child's selected theme
func (r *ChildRepository) UpdateTheme(childID string, theme models.ThemeName) error {
	query := "UPDATE children SET theme = ? WHERE id = ?"
	_, err := r.db.Exec(query, string(theme), childID)
	if err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
	}
	return nil
}

// TouchActivity records the child's last activity timestamp
func (r *ChildRepository) TouchActivity(childID string, at time.Time) error {
	query := "UPDATE children SET last_activity = ? WHERE id = ?"
	_, err := r.db.Exec(query, at, childID)
	if err != nil {
		return fmt.Errorf("failed to touch activity: %w", err)
	}
	return nil
}

// Delete removes a child profile. The star ledger is not touched: the audit
// trail stays immutable even when its subject is removed.
func (r *ChildRepository) Delete(childID string) error {
	query := "DELETE FROM children WHERE id = ?"
	_, err := r.db.Exec(query, childID)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}

// TotalStars reads the cached balance inside a transaction. The second return
// reports whether the child row exists at all.
func (r *ChildRepository) TotalStars(q database.DBTX, childID string) (int, bool, error) {
	var total int
	err := q.QueryRow("SELECT total_stars FROM children WHERE id = ?", childID).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read total stars: %w", err)
	}
	return total, true, nil
}

// SetTotalStars writes the cached balance inside a transaction
func (r *ChildRepository) SetTotalStars(q database.DBTX, childID string, total int) error {
	_, err := q.Exec("UPDATE children SET total_stars = ? WHERE id = ?", total, childID)
	if err != nil {
		return fmt.Errorf("failed to set total stars: %w", err)
	}
	return nil
}

// CreateBalanceStub inserts a minimal child row so a balance can be tracked
// for a child ID that has no roster entry yet (the ledger is permissive about
// unknown children).
func (r *ChildRepository) CreateBalanceStub(q database.DBTX, childID string, total int, now time.Time) error {
	query := "INSERT INTO children (id, name, avatar, grade, total_stars, theme, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := q.Exec(query, childID, "", "", 1, total, string(models.ThemeDefault), now)
	if err != nil {
		return fmt.Errorf("failed to create balance stub: %w", err)
	}
	return nil
}

func scanChild(row *sql.Row) (*models.Child, error) {
	child := &models.Child{}
	var theme string
	var lastActivity sql.NullTime
	err := row.Scan(&child.ID, &child.Name, &child.Avatar, &child.Grade,
		&child.TotalStars, &theme, &child.CreatedAt, &lastActivity)
	if err != nil {
		return nil, err
	}
	child.Theme = models.ThemeName(theme)
	if lastActivity.Valid {
		child.LastActivity = &lastActivity.Time
	}
	return child, nil
}

func scanChildRows(rows *sql.Rows) (*models.Child, error) {
	child := &models.Child{}
	var theme string
	var lastActivity sql.NullTime
	err := rows.Scan(&child.ID, &child.Name, &child.Avatar, &child.Grade,
		&child.TotalStars, &theme, &child.CreatedAt, &lastActivity)
	if err != nil {
		return nil, err
	}
	child.Theme = models.ThemeName(theme)
	if lastActivity.Valid {
		child.LastActivity = &lastActivity.Time
	}
	return child, nil
}

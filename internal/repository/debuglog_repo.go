package repository

import (
	"database/sql"
	"fmt"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// DebugLogRepository handles database operations for the capped debug log
type DebugLogRepository struct {
	db *database.DB
}

// NewDebugLogRepository creates a new debug log repository
func NewDebugLogRepository(db *database.DB) *DebugLogRepository {
	return &DebugLogRepository{db: db}
}

const logColumns = "id, level, context, message, details, created_at"

// Insert appends one log entry
func (r *DebugLogRepository) Insert(entry *models.LogEntry) error {
	query := "INSERT INTO debug_logs (id, level, context, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	var details interface{}
	if entry.Details != "" {
		details = entry.Details
	}
	_, err := r.db.Exec(query, entry.ID, string(entry.Level), entry.Context,
		entry.Message, details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	return nil
}

// List retrieves up to limit entries, newest first
func (r *DebugLogRepository) List(limit int) ([]models.LogEntry, error) {
	query := "SELECT " + logColumns + " FROM debug_logs ORDER BY created_at DESC, id DESC LIMIT ?"
	return r.queryLogs(query, limit)
}

// ListByLevel retrieves up to limit entries of one level, newest first
func (r *DebugLogRepository) ListByLevel(level models.LogLevel, limit int) ([]models.LogEntry, error) {
	query := "SELECT " + logColumns + " FROM debug_logs WHERE level = ? ORDER BY created_at DESC, id DESC LIMIT ?"
	return r.queryLogs(query, string(level), limit)
}

// Count returns the total number of stored entries
func (r *DebugLogRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM debug_logs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count log entries: %w", err)
	}
	return count, nil
}

// TrimOldest deletes the oldest entries until at most keep remain
func (r *DebugLogRepository) TrimOldest(keep int) error {
	count, err := r.Count()
	if err != nil {
		return err
	}
	excess := count - keep
	if excess <= 0 {
		return nil
	}

	// Collect the IDs of the oldest rows; LIMIT inside DELETE is not portable
	rows, err := r.db.Query("SELECT id FROM debug_logs ORDER BY created_at ASC, id ASC LIMIT ?", excess)
	if err != nil {
		return fmt.Errorf("failed to find oldest log entries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan log id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := r.db.Exec("DELETE FROM debug_logs WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to trim log entry: %w", err)
		}
	}
	return nil
}

// Clear deletes all log entries
func (r *DebugLogRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM debug_logs"); err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}
	return nil
}

// Stats returns entry counts per level
func (r *DebugLogRepository) Stats() (*models.LogStats, error) {
	rows, err := r.db.Query("SELECT level, COUNT(*) FROM debug_logs GROUP BY level")
	if err != nil {
		return nil, fmt.Errorf("failed to query log stats: %w", err)
	}
	defer rows.Close()

	stats := &models.LogStats{}
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan log stats: %w", err)
		}
		stats.Total += count
		switch models.LogLevel(level) {
		case models.LogError:
			stats.Errors = count
		case models.LogWarning:
			stats.Warnings = count
		case models.LogInfo:
			stats.Info = count
		case models.LogSuccess:
			stats.Success = count
		}
	}
	return stats, rows.Err()
}

func (r *DebugLogRepository) queryLogs(query string, args ...interface{}) ([]models.LogEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		var level string
		var details sql.NullString
		if err := rows.Scan(&entry.ID, &level, &entry.Context, &entry.Message,
			&details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entry.Level = models.LogLevel(level)
		if details.Valid {
			entry.Details = details.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

package repository

import (
	"fmt"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// LedgerRepository handles database operations for the star ledger.
// The ledger is append-only: there are deliberately no update or delete
// methods on this type.
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Insert appends one journal entry. Callers pass the enclosing transaction so
// the entry and the balance update commit together.
func (r *LedgerRepository) Insert(q database.DBTX, entry *models.StarLedgerEntry) error {
	query := "INSERT INTO star_ledger (id, child_id, amount, reason, source, source_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	var sourceID interface{}
	if entry.SourceID != "" {
		sourceID = entry.SourceID
	}
	_, err := q.Exec(query, entry.ID, entry.ChildID, entry.Amount, entry.Reason,
		string(entry.Source), sourceID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// ListByChild retrieves a child's journal, newest first
func (r *LedgerRepository) ListByChild(childID string) ([]models.StarLedgerEntry, error) {
	query := `
		SELECT id, child_id, amount, reason, source, source_id, created_at
		FROM star_ledger
		WHERE child_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []models.StarLedgerEntry
	for rows.Next() {
		var entry models.StarLedgerEntry
		var source string
		var sourceID *string
		if err := rows.Scan(&entry.ID, &entry.ChildID, &entry.Amount, &entry.Reason,
			&source, &sourceID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entry.Source = models.StarSource(source)
		if sourceID != nil {
			entry.SourceID = *sourceID
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CountByChild returns the number of journal entries for a child
func (r *LedgerRepository) CountByChild(childID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM star_ledger WHERE child_id = ?", childID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}

// SumByChild returns the sum of all requested deltas for a child. The journal
// records requested deltas while the balance clamps at zero, so this sum can
// run below the cached balance once clamping has swallowed part of a debit.
func (r *LedgerRepository) SumByChild(childID string) (int, error) {
	var sum int
	err := r.db.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM star_ledger WHERE child_id = ?", childID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger entries: %w", err)
	}
	return sum, nil
}

package repository

import (
	"database/sql"
	"fmt"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// WishRepository handles database operations for reward wishes
type WishRepository struct {
	db *database.DB
}

// NewWishRepository creates a new wish repository
func NewWishRepository(db *database.DB) *WishRepository {
	return &WishRepository{db: db}
}

const wishColumns = "id, child_id, title, star_price, status, created_at, requested_at, approved_at, rejected_at, fulfilled_at, parent_note"

// Create inserts a new wish
func (r *WishRepository) Create(wish *models.RewardWish) error {
	query := "INSERT INTO wishes (id, child_id, title, star_price, status, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, wish.ID, wish.ChildID, wish.Title, wish.StarPrice,
		string(wish.Status), wish.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wish: %w", err)
	}
	return nil
}

// GetByID retrieves a wish by ID, or nil if not found
func (r *WishRepository) GetByID(q database.DBTX, wishID string) (*models.RewardWish, error) {
	query := "SELECT " + wishColumns + " FROM wishes WHERE id = ?"
	wish, err := scanWishRow(q.QueryRow(query, wishID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wish: %w", err)
	}
	return wish, nil
}

// ListByChild retrieves all wishes for a child, newest first
func (r *WishRepository) ListByChild(childID string) ([]models.RewardWish, error) {
	query := "SELECT " + wishColumns + " FROM wishes WHERE child_id = ? ORDER BY created_at DESC"
	return r.queryWishes(query, childID)
}

// ListByStatus retrieves all wishes in a given lifecycle state across children
func (r *WishRepository) ListByStatus(status models.WishStatus) ([]models.RewardWish, error) {
	query := "SELECT " + wishColumns + " FROM wishes WHERE status = ? ORDER BY created_at ASC"
	return r.queryWishes(query, string(status))
}

// CountByChildAndStatus counts a child's wishes in a given state
func (r *WishRepository) CountByChildAndStatus(childID string, status models.WishStatus) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM wishes WHERE child_id = ? AND status = ?",
		childID, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count wishes: %w", err)
	}
	return count, nil
}

// Update rewrites a wish's lifecycle fields inside an optional transaction
func (r *WishRepository) Update(q database.DBTX, wish *models.RewardWish) error {
	query := `
		UPDATE wishes
		SET title = ?, status = ?, requested_at = ?, approved_at = ?, rejected_at = ?, fulfilled_at = ?, parent_note = ?
		WHERE id = ?
	`
	_, err := q.Exec(query, wish.Title, string(wish.Status), wish.RequestedAt,
		wish.ApprovedAt, wish.RejectedAt, wish.FulfilledAt, wish.ParentNote, wish.ID)
	if err != nil {
		return fmt.Errorf("failed to update wish: %w", err)
	}
	return nil
}

// Delete removes a wish. Stars already spent on a redemption request stay
// spent; deleting a wish never rewrites the ledger.
func (r *WishRepository) Delete(wishID string) error {
	_, err := r.db.Exec("DELETE FROM wishes WHERE id = ?", wishID)
	if err != nil {
		return fmt.Errorf("failed to delete wish: %w", err)
	}
	return nil
}

func (r *WishRepository) queryWishes(query string, args ...interface{}) ([]models.RewardWish, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishes: %w", err)
	}
	defer rows.Close()

	var wishes []models.RewardWish
	for rows.Next() {
		wish, err := scanWish(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wish: %w", err)
		}
		wishes = append(wishes, *wish)
	}
	return wishes, rows.Err()
}

func scanWishRow(row *sql.Row) (*models.RewardWish, error) {
	wish := &models.RewardWish{}
	var status string
	var requestedAt, approvedAt, rejectedAt, fulfilledAt sql.NullTime
	var parentNote sql.NullString
	err := row.Scan(&wish.ID, &wish.ChildID, &wish.Title, &wish.StarPrice, &status,
		&wish.CreatedAt, &requestedAt, &approvedAt, &rejectedAt, &fulfilledAt, &parentNote)
	if err != nil {
		return nil, err
	}
	wish.Status = models.WishStatus(status)
	if requestedAt.Valid {
		wish.RequestedAt = &requestedAt.Time
	}
	if approvedAt.Valid {
		wish.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		wish.RejectedAt = &rejectedAt.Time
	}
	if fulfilledAt.Valid {
		wish.FulfilledAt = &fulfilledAt.Time
	}
	if parentNote.Valid {
		wish.ParentNote = &parentNote.String
	}
	return wish, nil
}

func scanWish(rows *sql.Rows) (*models.RewardWish, error) {
	wish := &models.RewardWish{}
	var status string
	var requestedAt, approvedAt, rejectedAt, fulfilledAt sql.NullTime
	var parentNote sql.NullString
	err := rows.Scan(&wish.ID, &wish.ChildID, &wish.Title, &wish.StarPrice, &status,
		&wish.CreatedAt, &requestedAt, &approvedAt, &rejectedAt, &fulfilledAt, &parentNote)
	if err != nil {
		return nil, err
	}
	wish.Status = models.WishStatus(status)
	if requestedAt.Valid {
		wish.RequestedAt = &requestedAt.Time
	}
	if approvedAt.Valid {
		wish.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		wish.RejectedAt = &rejectedAt.Time
	}
	if fulfilledAt.Valid {
		wish.FulfilledAt = &fulfilledAt.Time
	}
	if parentNote.Valid {
		wish.ParentNote = &parentNote.String
	}
	return wish, nil
}

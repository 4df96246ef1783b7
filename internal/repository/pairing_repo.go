package repository

import (
	"database/sql"
	"fmt"
	"time"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
)

// PairingRepository handles database operations for child-device pairing codes
type PairingRepository struct {
	db *database.DB
}

// NewPairingRepository creates a new pairing repository
func NewPairingRepository(db *database.DB) *PairingRepository {
	return &PairingRepository{db: db}
}

// Create stores a new pairing code
func (r *PairingRepository) Create(code *models.PairingCode) error {
	query := "INSERT INTO pairing_codes (code, child_id, expires_at, created_at) VALUES (?, ?, ?, ?)"
	_, err := r.db.Exec(query, code.Code, code.ChildID, code.ExpiresAt, code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pairing code: %w", err)
	}
	return nil
}

// Get retrieves a pairing code, or nil if not found
func (r *PairingRepository) Get(code string) (*models.PairingCode, error) {
	pc := &models.PairingCode{}
	query := "SELECT code, child_id, expires_at, created_at FROM pairing_codes WHERE code = ?"
	err := r.db.QueryRow(query, code).Scan(&pc.Code, &pc.ChildID, &pc.ExpiresAt, &pc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pairing code: %w", err)
	}
	return pc, nil
}

// Delete removes a pairing code (codes are single-use)
func (r *PairingRepository) Delete(code string) error {
	if _, err := r.db.Exec("DELETE FROM pairing_codes WHERE code = ?", code); err != nil {
		return fmt.Errorf("failed to delete pairing code: %w", err)
	}
	return nil
}

// DeleteExpired removes all expired pairing codes
func (r *PairingRepository) DeleteExpired() error {
	if _, err := r.db.Exec("DELETE FROM pairing_codes WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired pairing codes: %w", err)
	}
	return nil
}

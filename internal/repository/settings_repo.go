package repository

import (
	"database/sql"

	"sternwerk/internal/database"
)

// SettingsRepository stores small key/value configuration flags
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a setting value by key; missing keys return ""
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	query := "SELECT setting_value FROM settings WHERE setting_key = ?"
	err := r.db.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set updates or inserts a setting
func (r *SettingsRepository) Set(key, value string) error {
	query := r.db.Dialect.UpsertSettingQuery()
	_, err := r.db.Exec(query, key, value)
	return err
}

// GetBool reads a boolean setting; missing or unparseable keys return the default
func (r *SettingsRepository) GetBool(key string, defaultValue bool) bool {
	value, err := r.Get(key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value == "true"
}

// SetBool writes a boolean setting
func (r *SettingsRepository) SetBool(key string, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return r.Set(key, value)
}

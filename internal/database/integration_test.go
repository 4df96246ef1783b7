package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// testMigrationsPath points at the repo-root migrations directory
const testMigrationsPath = "../../migrations"

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_integration.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.RunMigrations(testMigrationsPath); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Test that tables were created by migrations
	tables := []string{"children", "star_ledger", "tasks", "notes", "wishes", "events", "debug_logs", "users", "sessions", "pairing_codes", "settings"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		err := db.QueryRowContext(ctx, query, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Migrations must be idempotent
	if err := db.RunMigrations(testMigrationsPath); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_transactions.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(testMigrationsPath); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// A rolled-back insert must not be visible
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	_, err = tx.Exec("INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)", "tx_test", "1")
	if err != nil {
		t.Fatalf("Failed to insert in transaction: %v", err)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to rollback: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM settings WHERE setting_key = ?", "tx_test").Scan(&count); err != nil {
		t.Fatalf("Failed to count settings: %v", err)
	}
	if count != 0 {
		t.Errorf("Rolled back insert is visible: count = %d, want 0", count)
	}

	// A committed insert must be visible
	tx, err = db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)", "tx_test", "1"); err != nil {
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM settings WHERE setting_key = ?", "tx_test").Scan(&count); err != nil {
		t.Fatalf("Failed to count settings: %v", err)
	}
	if count != 1 {
		t.Errorf("Committed insert not visible: count = %d, want 1", count)
	}

	_ = os.Remove(dbPath)
}

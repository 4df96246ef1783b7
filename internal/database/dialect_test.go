package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("DSN uses path with connection options", func(t *testing.T) {
		result := dialect.DSN(DialectConfig{Path: "./sternwerk.db"})
		expected := "./sternwerk.db?_busy_timeout=5000&_foreign_keys=on"
		if result != expected {
			t.Errorf("DSN() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("UpsertSettingQuery uses ON CONFLICT", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertSettingQuery(), "ON CONFLICT") {
			t.Error("UpsertSettingQuery() should use ON CONFLICT for PostgreSQL")
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("UpsertSettingQuery uses ON DUPLICATE KEY", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertSettingQuery(), "ON DUPLICATE KEY") {
			t.Error("UpsertSettingQuery() should use ON DUPLICATE KEY for MySQL")
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM children WHERE id = ?",
			expected: "SELECT * FROM children WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM children WHERE id = ?",
			expected: "SELECT * FROM children WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO star_ledger (child_id, amount) VALUES (?, ?)",
			expected: "INSERT INTO star_ledger (child_id, amount) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE wishes SET status = ?, parent_note = ? WHERE id = ?",
			expected: "UPDATE wishes SET status = ?, parent_note = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

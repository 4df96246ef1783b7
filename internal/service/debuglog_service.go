package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"sternwerk/internal/models"
	"sternwerk/internal/repository"
)

// DebugLogService records application events into a capped, append-only log
// that parents can inspect from the settings screen. Recording is best-effort:
// a failure to write a log entry never fails the operation being logged.
type DebugLogService struct {
	logRepo    *repository.DebugLogRepository
	maxEntries int
}

// NewDebugLogService creates a new debug log service
func NewDebugLogService(logRepo *repository.DebugLogRepository, maxEntries int) *DebugLogService {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	return &DebugLogService{
		logRepo:    logRepo,
		maxEntries: maxEntries,
	}
}

// Log records an entry and trims the log down to the configured cap
func (s *DebugLogService) Log(level models.LogLevel, context, message string, details map[string]interface{}) {
	entry := &models.LogEntry{
		ID:        uuid.New().String(),
		Level:     level,
		Context:   context,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if len(details) > 0 {
		encoded, err := json.Marshal(details)
		if err != nil {
			entry.Details = fmt.Sprintf(`{"encodeError":%q}`, err.Error())
		} else {
			entry.Details = string(encoded)
		}
	}

	if err := s.logRepo.Insert(entry); err != nil {
		log.Printf("debug log insert failed: %v", err)
		return
	}

	count, err := s.logRepo.Count()
	if err != nil {
		log.Printf("debug log count failed: %v", err)
		return
	}
	if count > s.maxEntries {
		if err := s.logRepo.TrimOldest(s.maxEntries); err != nil {
			log.Printf("debug log trim failed: %v", err)
		}
	}
}

// Error records an error-level entry
func (s *DebugLogService) Error(context, message string, details map[string]interface{}) {
	s.Log(models.LogError, context, message, details)
}

// Warning records a warning-level entry
func (s *DebugLogService) Warning(context, message string, details map[string]interface{}) {
	s.Log(models.LogWarning, context, message, details)
}

// Info records an info-level entry
func (s *DebugLogService) Info(context, message string, details map[string]interface{}) {
	s.Log(models.LogInfo, context, message, details)
}

// Success records a success-level entry
func (s *DebugLogService) Success(context, message string, details map[string]interface{}) {
	s.Log(models.LogSuccess, context, message, details)
}

// List returns the newest entries, most recent first
func (s *DebugLogService) List(limit int) ([]models.LogEntry, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}
	return s.logRepo.List(limit)
}

// ListByLevel returns the newest entries of one level
func (s *DebugLogService) ListByLevel(level models.LogLevel, limit int) ([]models.LogEntry, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}
	return s.logRepo.ListByLevel(level, limit)
}

// Stats returns per-level entry counts
func (s *DebugLogService) Stats() (*models.LogStats, error) {
	return s.logRepo.Stats()
}

// Clear wipes the entire log
func (s *DebugLogService) Clear() error {
	return s.logRepo.Clear()
}

// Export serializes the whole log as indented JSON for sharing
func (s *DebugLogService) Export() ([]byte, error) {
	entries, err := s.logRepo.List(s.maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to load log entries: %w", err)
	}

	export := struct {
		ExportedAt time.Time         `json:"exportedAt"`
		Entries    []models.LogEntry `json:"entries"`
	}{
		ExportedAt: time.Now(),
		Entries:    entries,
	}

	return json.MarshalIndent(export, "", "  ")
}

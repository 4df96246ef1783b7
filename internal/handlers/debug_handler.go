package handlers

import (
	"net/http"
	"strconv"

	"sternwerk/internal/models"
	"sternwerk/internal/service"
)

// DebugHandler exposes the capped debug log to the parent app
type DebugHandler struct {
	logs *service.DebugLogService
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(logs *service.DebugLogService) *DebugHandler {
	return &DebugHandler{logs: logs}
}

// ListLogs returns the newest log entries, optionally filtered by level
func (h *DebugHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var entries []models.LogEntry
	var err error
	if level := r.URL.Query().Get("level"); level != "" {
		entries, err = h.logs.ListByLevel(models.LogLevel(level), limit)
	} else {
		entries, err = h.logs.List(limit)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list logs", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetLogStats returns per-level entry counts
func (h *DebugHandler) GetLogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.logs.Stats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to read log stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ClearLogs wipes the debug log
func (h *DebugHandler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.logs.Clear(); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to clear logs", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ExportLogs downloads the whole log as a JSON file for sharing
func (h *DebugHandler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	data, err := h.logs.Export()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to export logs", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=sternwerk-debug-log.json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

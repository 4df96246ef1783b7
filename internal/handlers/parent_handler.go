package handlers

import (
	"net/http"
	"strconv"
	"time"

	"sternwerk/internal/models"
	"sternwerk/internal/repository"
	"sternwerk/internal/service"
)

// ParentHandler serves the parent app's API: child profiles, task and wish
// management, manual star adjustments and settings
type ParentHandler struct {
	childService *service.ChildService
	childAuth    *service.ChildAuthService
	ledger       *service.LedgerService
	tasks        *service.TaskService
	notes        *service.NoteService
	wishes       *service.WishService
	events       *service.EventService
	settings     *repository.SettingsRepository
	backup       *service.BackupService
}

// NewParentHandler creates a new parent handler
func NewParentHandler(childService *service.ChildService, childAuth *service.ChildAuthService, ledger *service.LedgerService, tasks *service.TaskService, notes *service.NoteService, wishes *service.WishService, events *service.EventService, settings *repository.SettingsRepository, backup *service.BackupService) *ParentHandler {
	return &ParentHandler{
		childService: childService,
		childAuth:    childAuth,
		ledger:       ledger,
		tasks:        tasks,
		notes:        notes,
		wishes:       wishes,
		events:       events,
		settings:     settings,
		backup:       backup,
	}
}

// ListChildren returns all child profiles
func (h *ParentHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.childService.ListChildren()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list children", err)
		return
	}
	respondJSON(w, http.StatusOK, children)
}

// CreateChild creates a new child profile
func (h *ParentHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
		Grade  int    `json:"grade"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	child, err := h.childService.CreateChild(req.Name, req.Avatar, req.Grade)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, child)
}

// GetChild returns one child profile
func (h *ParentHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	child, err := h.childService.GetChild(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// UpdateChild changes a child's profile
func (h *ParentHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
		Grade  int    `json:"grade"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	child, err := h.childService.UpdateChild(r.PathValue("id"), req.Name, req.Avatar, req.Grade)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// DeleteChild removes a child profile
func (h *ParentHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	if err := h.childService.DeleteChild(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetChildStats returns the dashboard summary for one child
func (h *ParentHandler) GetChildStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.childService.GetStats(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetChildLedger returns a child's star journal for the parent view
func (h *ParentHandler) GetChildLedger(w http.ResponseWriter, r *http.Request) {
	if _, err := h.childService.GetChild(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	entries, err := h.ledger.ListEntries(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// IssuePairingCode creates a pairing code for a child's device
func (h *ParentHandler) IssuePairingCode(w http.ResponseWriter, r *http.Request) {
	pairing, err := h.childAuth.IssuePairingCode(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pairing)
}

// AdjustStars credits or debits stars manually, outside tasks and wishes
func (h *ParentHandler) AdjustStars(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int    `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	if _, err := h.childService.GetChild(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	source := models.SourceManual
	if req.Amount > 0 {
		source = models.SourceBonus
	}
	entry, balance, err := h.ledger.ApplyDelta(r.PathValue("id"), req.Amount, req.Reason, source, "")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entry":   entry,
		"balance": balance,
	})
}

// CreateTask assigns a new task to a child
func (h *ParentHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID      string              `json:"childId"`
		Title        string              `json:"title"`
		Subject      *models.SubjectType `json:"subject"`
		DueDate      *time.Time          `json:"dueDate"`
		StarsAwarded int                 `json:"starsAwarded"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	task, err := h.tasks.CreateTask(req.ChildID, req.Title, req.Subject, req.DueDate, req.StarsAwarded, models.CreatedByParent)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask changes a task's title, subject or due date
func (h *ParentHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string              `json:"title"`
		Subject *models.SubjectType `json:"subject"`
		DueDate *time.Time          `json:"dueDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	task, err := h.tasks.UpdateTask(r.PathValue("id"), req.Title, req.Subject, req.DueDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// ToggleTask flips a task done or undone on the child's behalf
func (h *ParentHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	task, delta, balance, err := h.tasks.ToggleDone(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"task":       task,
		"starsDelta": delta,
		"balance":    balance,
	})
}

// DeleteTask removes a task
func (h *ParentHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteTask(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListChildTasks returns one child's tasks for the parent view
func (h *ParentHandler) ListChildTasks(w http.ResponseWriter, r *http.Request) {
	if _, err := h.childService.GetChild(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	tasks, err := h.tasks.ListTasks(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// ListChildNotes returns one child's notebook entries for the parent view
func (h *ParentHandler) ListChildNotes(w http.ResponseWriter, r *http.Request) {
	if _, err := h.childService.GetChild(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	notes, err := h.notes.ListNotes(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list notes", err)
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

// SetNoteParentNote attaches a comment to a notebook entry
func (h *ParentHandler) SetNoteParentNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentNote *string `json:"parentNote"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	note, err := h.notes.SetParentNote(r.PathValue("id"), req.ParentNote)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// ListWishQueue returns wishes awaiting a decision
func (h *ParentHandler) ListWishQueue(w http.ResponseWriter, r *http.Request) {
	status := models.WishStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.WishPending
	}

	wishes, err := h.wishes.ListWishesByStatus(status)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list wishes", err)
		return
	}
	respondJSON(w, http.StatusOK, wishes)
}

// ApproveWish approves a pending wish
func (h *ParentHandler) ApproveWish(w http.ResponseWriter, r *http.Request) {
	wish, err := h.wishes.Approve(r.PathValue("id"), decodeParentNote(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wish)
}

// RejectWish rejects a pending wish
func (h *ParentHandler) RejectWish(w http.ResponseWriter, r *http.Request) {
	wish, err := h.wishes.Reject(r.PathValue("id"), decodeParentNote(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wish)
}

// FulfillWish marks an approved wish as handed over
func (h *ParentHandler) FulfillWish(w http.ResponseWriter, r *http.Request) {
	wish, err := h.wishes.Fulfill(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wish)
}

// CreateEvent records a calendar entry
func (h *ParentHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID  string               `json:"childId"`
		Title    string               `json:"title"`
		Date     time.Time            `json:"date"`
		Category models.EventCategory `json:"category"`
		Reminder bool                 `json:"reminder"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	event, err := h.events.CreateEvent(req.ChildID, req.Title, req.Date, req.Category, req.Reminder, models.CreatedByParent)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// UpdateEvent changes a calendar entry
func (h *ParentHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string               `json:"title"`
		Date     time.Time            `json:"date"`
		Category models.EventCategory `json:"category"`
		Reminder bool                 `json:"reminder"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	event, err := h.events.UpdateEvent(r.PathValue("id"), req.Title, req.Date, req.Category, req.Reminder)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// DeleteEvent removes a calendar entry
func (h *ParentHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListChildEvents returns one child's calendar for the parent view
func (h *ParentHandler) ListChildEvents(w http.ResponseWriter, r *http.Request) {
	if _, err := h.childService.GetChild(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	events, err := h.events.ListEvents(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list events", err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// GetSettings returns the app-wide settings the parent app can edit
func (h *ParentHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{
		service.SettingRefundOnReject: h.settings.GetBool(service.SettingRefundOnReject, false),
	})
}

// UpdateSettings switches the app-wide settings
func (h *ParentHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	for key, value := range req {
		switch key {
		case service.SettingRefundOnReject:
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Invalid boolean value for "+key, "", nil)
				return
			}
			if err := h.settings.SetBool(key, enabled); err != nil {
				respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to save setting", err)
				return
			}
		default:
			respondWithError(w, http.StatusBadRequest, "Unknown setting "+key, "", nil)
			return
		}
	}

	h.GetSettings(w, r)
}

// ExportBackup streams a full database backup
func (h *ParentHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=sternwerk-backup.json")
	if err := h.backup.ExportToWriter(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to export backup", err)
	}
}

func decodeParentNote(r *http.Request) *string {
	var req struct {
		ParentNote *string `json:"parentNote"`
	}
	if err := decodeJSON(r, &req); err != nil {
		return nil
	}
	return req.ParentNote
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"sternwerk/internal/models"
	"sternwerk/internal/service"
	"sternwerk/internal/validation"
)

// ChildHandler serves the child app's device API. Every route except Pair
// runs behind RequireChild, so handlers read the child from the context and
// never trust IDs from the request.
type ChildHandler struct {
	childAuth    *service.ChildAuthService
	childService *service.ChildService
	ledger       *service.LedgerService
	tasks        *service.TaskService
	notes        *service.NoteService
	wishes       *service.WishService
	events       *service.EventService
}

// NewChildHandler creates a new child handler
func NewChildHandler(childAuth *service.ChildAuthService, childService *service.ChildService, ledger *service.LedgerService, tasks *service.TaskService, notes *service.NoteService, wishes *service.WishService, events *service.EventService) *ChildHandler {
	return &ChildHandler{
		childAuth:    childAuth,
		childService: childService,
		ledger:       ledger,
		tasks:        tasks,
		notes:        notes,
		wishes:       wishes,
		events:       events,
	}
}

// Pair exchanges a pairing code for a device token
func (h *ChildHandler) Pair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	token, child, err := h.childAuth.ExchangePairingCode(req.Code)
	if err != nil {
		if errors.Is(err, service.ErrPairingCodeInvalid) {
			respondWithError(w, http.StatusUnauthorized, "Pairing code invalid or expired", "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to exchange pairing code", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"child": child,
	})
}

// Profile returns the paired child's profile
func (h *ChildHandler) Profile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetChildFromContext(r.Context()))
}

// SetTheme switches the child app's theme
func (h *ChildHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	var req struct {
		Theme models.ThemeName `json:"theme"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	updated, err := h.childService.SetTheme(child.ID, req.Theme)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Balance returns the child's current star balance
func (h *ChildHandler) Balance(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	balance, err := h.ledger.GetBalance(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to read balance", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

// Ledger returns the child's star journal, newest first
func (h *ChildHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	entries, err := h.ledger.ListEntries(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ListTasks returns the child's tasks
func (h *ChildHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	tasks, err := h.tasks.ListTasks(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask lets the child add an own task
func (h *ChildHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	var req struct {
		Title        string              `json:"title"`
		Subject      *models.SubjectType `json:"subject"`
		DueDate      *time.Time          `json:"dueDate"`
		StarsAwarded int                 `json:"starsAwarded"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	task, err := h.tasks.CreateTask(child.ID, req.Title, req.Subject, req.DueDate, req.StarsAwarded, models.CreatedByChild)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// ToggleTask flips a task between open and done
func (h *ChildHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	task, err := h.tasks.GetTask(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if task.ChildID != child.ID {
		respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		return
	}

	task, delta, balance, err := h.tasks.ToggleDone(task.ID)
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

// DeleteTask removes one of the child's own tasks
func (h *ChildHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	task, err := h.tasks.GetTask(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if task.ChildID != child.ID {
		respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		return
	}

	if err := h.tasks.DeleteTask(task.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListNotes returns the child's notebook entries
func (h *ChildHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	if subject := r.URL.Query().Get("subject"); subject != "" {
		notes, err := h.notes.ListNotesBySubject(child.ID, models.SubjectType(subject))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, notes)
		return
	}

	notes, err := h.notes.ListNotes(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list notes", err)
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

// CreateNote records a photographed notebook page
func (h *ChildHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	var req struct {
		Subject  models.SubjectType `json:"subject"`
		Topic    string             `json:"topic"`
		PhotoURI string             `json:"photoUri"`
		Date     time.Time          `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	note, err := h.notes.CreateNote(child.ID, req.Subject, req.Topic, req.PhotoURI, req.Date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

// ToggleNote flips a note's understood flag
func (h *ChildHandler) ToggleNote(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	note, err := h.notes.GetNote(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if note.ChildID != child.ID {
		respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		return
	}

	note, delta, balance, err := h.notes.ToggleUnderstood(note.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"note":       note,
		"starsDelta": delta,
		"balance":    balance,
	})
}

// ListWishes returns the child's wishes
func (h *ChildHandler) ListWishes(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	wishes, err := h.wishes.ListWishes(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list wishes", err)
		return
	}
	respondJSON(w, http.StatusOK, wishes)
}

// CreateWish records a new wish
func (h *ChildHandler) CreateWish(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	var req struct {
		Title     string `json:"title"`
		StarPrice int    `json:"starPrice"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	wish, err := h.wishes.CreateWish(child.ID, req.Title, req.StarPrice)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, wish)
}

// RedeemWish spends stars on a wish and hands it to the parents
func (h *ChildHandler) RedeemWish(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	wish, err := h.wishes.GetWish(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if wish.ChildID != child.ID {
		respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		return
	}

	wish, balance, err := h.wishes.RequestRedemption(wish.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"wish":    wish,
		"balance": balance,
	})
}

// DeleteWish removes one of the child's active wishes
func (h *ChildHandler) DeleteWish(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	wish, err := h.wishes.GetWish(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if wish.ChildID != child.ID {
		respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		return
	}

	if err := h.wishes.DeleteWish(wish.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListEvents returns the child's calendar
func (h *ChildHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

	events, err := h.events.ListEvents(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list events", err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// CreateEvent lets the child add a calendar entry
func (h *ChildHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())

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
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	event, err := h.events.CreateEvent(child.ID, req.Title, req.Date, req.Category, req.Reminder, models.CreatedByChild)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// respondServiceError maps service sentinel errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	var valErr *validation.ValidationError
	switch {
	case errors.As(err, &valErr):
		respondWithError(w, http.StatusBadRequest, valErr.Error(), "", nil)
	case errors.Is(err, service.ErrChildNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrNoteNotFound),
		errors.Is(err, service.ErrWishNotFound),
		errors.Is(err, service.ErrEventNotFound):
		respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
	case errors.Is(err, service.ErrInsufficientStars):
		respondWithError(w, http.StatusConflict, "Not enough stars", "", nil)
	case errors.Is(err, service.ErrInvalidWishState):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidAmount):
		respondWithError(w, http.StatusBadRequest, "Amount must not be zero", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "service error", err)
	}
}

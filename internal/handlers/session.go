package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/book-engine/internal/metrics"
	"github.com/jwebster45206/book-engine/internal/services"
	"github.com/jwebster45206/book-engine/pkg/session"
)

// CreateSessionRequest is the body for POST /v1/sessions.
type CreateSessionRequest struct {
	BookID     uuid.UUID `json:"book_id"`
	Character  string    `json:"character"`
	StartIndex int       `json:"start_index"`
	Language   string    `json:"language"`
}

// ActionRequest is the body for POST /v1/sessions/{id}/action.
type ActionRequest struct {
	Action string `json:"action"`
}

type SessionHandler struct {
	storage   services.Storage
	generator session.Generator
	timeout   time.Duration
	logger    *slog.Logger

	// locks serializes turns per session ID. Persistence backends
	// rehydrate an independent copy of the session on every request, so
	// the session's own mutex cannot order concurrent actions.
	locks   map[uuid.UUID]*sync.Mutex
	locksMu sync.Mutex
}

func NewSessionHandler(storage services.Storage, generator session.Generator, timeout time.Duration, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage:   storage,
		generator: generator,
		timeout:   timeout,
		logger:    logger,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// sessionLock returns the lock for one session ID, creating it on first use.
func (h *SessionHandler) sessionLock(id uuid.UUID) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	l, ok := h.locks[id]
	if !ok {
		l = &sync.Mutex{}
		h.locks[id] = l
	}
	return l
}

func (h *SessionHandler) releaseLock(id uuid.UUID) {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	delete(h.locks, id)
}

// ServeHTTP handles HTTP requests for session operations
// Routes:
// POST /v1/sessions              - Start a session for a book character
// GET /v1/sessions/{id}          - Read current session state
// POST /v1/sessions/{id}/action  - Apply a choice or custom action
// DELETE /v1/sessions/{id}       - End and remove a session
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	parts := strings.Split(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleCreate(w, r)
		return
	}

	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, sessionID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "action" && r.Method == http.MethodPost:
		h.handleAction(w, r, sessionID)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid session request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.storage.LoadBook(r.Context(), req.BookID)
	if err != nil {
		h.logger.Error("Failed to load book", "uuid", req.BookID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load book")
		return
	}
	if book == nil {
		writeError(w, h.logger, http.StatusNotFound, "Book not found")
		return
	}

	s, err := session.New(book, req.Character, req.StartIndex, req.Language)
	if err != nil {
		if errors.Is(err, session.ErrUnknownCharacter) {
			writeError(w, h.logger, http.StatusNotFound, "Unknown character: "+req.Character)
			return
		}
		h.logger.Error("Failed to create session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}
	s.GeneratorTimeout = h.timeout

	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Failed to save session", "uuid", s.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info("Session created",
		"uuid", s.ID,
		"book", book.Title,
		"character", s.PlayerCharacter,
		"start_index", s.CurrentEventIndex)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(s.State()); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, ok := h.loadBoundSession(w, r, id)
	if !ok {
		return
	}

	if err := json.NewEncoder(w).Encode(s.State()); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleAction(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid action request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	// One outstanding turn per session: load, apply, and save as a unit.
	lock := h.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	s, ok := h.loadBoundSession(w, r, id)
	if !ok {
		return
	}
	s.GeneratorTimeout = h.timeout

	result, err := s.ApplyAction(r.Context(), h.generator, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidAction):
			writeError(w, h.logger, http.StatusBadRequest, "Action text is required")
		case errors.Is(err, session.ErrSessionEnded):
			writeError(w, h.logger, http.StatusConflict, "Session has ended")
		default:
			h.logger.Error("Failed to apply action", "uuid", id, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to apply action")
		}
		return
	}

	metrics.TurnsResolved.WithLabelValues(string(result.EventType)).Inc()
	if result.Fallback {
		metrics.GeneratorFallbacks.Inc()
	}

	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Failed to save session", "uuid", s.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode action response", "error", err)
	}
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	lock := h.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	s, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	s.End()
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	h.releaseLock(id)
	h.logger.Info("Session ended", "uuid", id, "turns", len(s.History))
	w.WriteHeader(http.StatusNoContent)
}

// loadBoundSession loads a session and binds its book, writing the error
// response itself when either is missing.
func (h *SessionHandler) loadBoundSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*session.Session, bool) {
	s, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return nil, false
	}

	book, err := h.storage.LoadBook(r.Context(), s.BookID)
	if err != nil || book == nil {
		h.logger.Error("Failed to load session book", "uuid", id, "book", s.BookID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session book")
		return nil, false
	}
	if err := s.Bind(book); err != nil {
		h.logger.Error("Failed to bind session book", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to bind session book")
		return nil, false
	}

	return s, true
}

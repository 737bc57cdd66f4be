package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/book-engine/internal/metrics"
	"github.com/jwebster45206/book-engine/internal/services"
	"github.com/jwebster45206/book-engine/pkg/knowledge"
)

// ErrorResponse is the JSON body for all error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

const maxBookBytes = 10 << 20 // 10 MB of source text is plenty

// CreateBookRequest is the body for POST /v1/books.
type CreateBookRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type BookHandler struct {
	engine  *knowledge.Engine
	storage services.Storage
	logger  *slog.Logger
}

func NewBookHandler(engine *knowledge.Engine, storage services.Storage, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		engine:  engine,
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for book operations
// Routes:
// POST /v1/books         - Extract a book from raw text
// GET /v1/books/{id}     - Read an extracted book by ID
// DELETE /v1/books/{id}  - Delete a book by ID
func (h *BookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/books")
	var bookID uuid.UUID
	var err error

	if path != "" && path != "/" {
		idStr := strings.Trim(path, "/")
		bookID, err = uuid.Parse(idStr)
		if err != nil {
			h.logger.Warn("Invalid book ID", "id", idStr, "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid book ID format")
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		if bookID != uuid.Nil {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleCreate(w, r)

	case http.MethodGet:
		if bookID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Book ID is required for GET requests")
			return
		}
		h.handleRead(w, r, bookID)

	case http.MethodDelete:
		if bookID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Book ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, bookID)

	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *BookHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBookBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid book request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	start := time.Now()
	book, err := h.engine.ExtractBook(r.Context(), req.Title, req.Text)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmptyTitle) {
			writeError(w, h.logger, http.StatusBadRequest, "Book title is required")
			return
		}
		h.logger.Error("Book extraction failed", "title", req.Title, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to extract book")
		return
	}
	metrics.BooksExtracted.Inc()
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())

	if err := h.storage.SaveBook(r.Context(), book); err != nil {
		h.logger.Error("Failed to save book", "uuid", book.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save book")
		return
	}

	h.logger.Info("Book extracted",
		"uuid", book.ID,
		"title", book.Title,
		"characters", len(book.Characters),
		"locations", len(book.Locations),
		"events", len(book.Events))

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(book); err != nil {
		h.logger.Error("Failed to encode book response", "error", err)
	}
}

func (h *BookHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	book, err := h.storage.LoadBook(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load book", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load book")
		return
	}
	if book == nil {
		writeError(w, h.logger, http.StatusNotFound, "Book not found")
		return
	}

	if err := json.NewEncoder(w).Encode(book); err != nil {
		h.logger.Error("Failed to encode book response", "error", err)
	}
}

func (h *BookHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteBook(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete book", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

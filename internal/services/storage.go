package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
	"github.com/jwebster45206/book-engine/pkg/session"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for book and session persistence
type Storage interface {
	HealthChecker
	Closer

	// SaveBook saves an extracted book
	SaveBook(ctx context.Context, book *knowledge.Book) error

	// LoadBook retrieves a book by ID
	// Returns nil if the book doesn't exist
	LoadBook(ctx context.Context, id uuid.UUID) (*knowledge.Book, error)

	// DeleteBook removes a book by ID
	DeleteBook(ctx context.Context, id uuid.UUID) error

	// SaveSession saves a narrative session
	SaveSession(ctx context.Context, s *session.Session) error

	// LoadSession retrieves a session by ID. The caller must Bind the
	// session's book before use.
	// Returns nil if the session doesn't exist
	LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error)

	// DeleteSession removes a session by ID
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

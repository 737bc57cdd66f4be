package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
	"github.com/jwebster45206/book-engine/pkg/session"
)

// MemoryStorage implements the Storage interface in process memory. It is the
// default backend: sessions only need to live for the process lifetime.
type MemoryStorage struct {
	mu       sync.RWMutex
	books    map[uuid.UUID]*knowledge.Book
	sessions map[uuid.UUID]*session.Session
}

// Ensure MemoryStorage implements Storage interface
var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		books:    make(map[uuid.UUID]*knowledge.Book),
		sessions: make(map[uuid.UUID]*session.Session),
	}
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) SaveBook(ctx context.Context, book *knowledge.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[book.ID] = book
	return nil
}

func (m *MemoryStorage) LoadBook(ctx context.Context, id uuid.UUID) (*knowledge.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.books[id], nil
}

func (m *MemoryStorage) DeleteBook(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	return nil
}

func (m *MemoryStorage) SaveSession(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id], nil
}

func (m *MemoryStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
	"github.com/jwebster45206/book-engine/pkg/session"
)

// SqliteStorage implements the Storage interface with an embedded SQLite
// database. Books and sessions are stored as JSON documents, so the schema
// survives model changes without migrations.
type SqliteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SqliteStorage implements Storage interface
var _ Storage = (*SqliteStorage)(nil)

// NewSqliteStorage opens (or creates) the database at dbPath.
func NewSqliteStorage(dbPath string, logger *slog.Logger) (*SqliteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SqliteStorage{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SqliteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		data TEXT NOT NULL, -- JSON document
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		book_id TEXT NOT NULL,
		data TEXT NOT NULL, -- JSON document
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (book_id) REFERENCES books(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SqliteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SqliteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", "error", err)
		return err
	}
	return nil
}

func (s *SqliteStorage) SaveBook(ctx context.Context, book *knowledge.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("failed to marshal book: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, data = excluded.data`,
		book.ID.String(), book.Title, string(data))
	if err != nil {
		s.logger.Error("Failed to save book", "uuid", book.ID, "error", err)
		return fmt.Errorf("failed to save book: %w", err)
	}
	return nil
}

func (s *SqliteStorage) LoadBook(ctx context.Context, id uuid.UUID) (*knowledge.Book, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM books WHERE id = ?`, id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	var book knowledge.Book
	if err := json.Unmarshal([]byte(data), &book); err != nil {
		return nil, fmt.Errorf("failed to unmarshal book: %w", err)
	}
	return &book, nil
}

func (s *SqliteStorage) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

func (s *SqliteStorage) SaveSession(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, book_id, data, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		sess.ID.String(), sess.BookID.String(), string(data))
	if err != nil {
		s.logger.Error("Failed to save session", "uuid", sess.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SqliteStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *SqliteStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Package sqlitestore backs the record store with an embedded SQLite
// database, an alternative to the per-session file layout for deployments
// that prefer a single datastore file.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    row_number INTEGER NOT NULL,
    column_code TEXT NOT NULL,
    location TEXT NOT NULL,
    face TEXT NOT NULL,
    position_on_stack INTEGER NOT NULL,
    recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_books_session ON books(session_id);
CREATE INDEX IF NOT EXISTS idx_books_location ON books(session_id, location, face);
`

// Store manages session record persistence backed by SQLite.
type Store struct {
	db    *sql.DB
	locks *store.SessionLocks
}

var _ store.Store = (*Store)(nil)

// Open initializes or connects to the inventory database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "inventory.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, locks: store.NewSessionLocks()}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// checkID enforces the same id alphabet as the file backend, so callers see
// one contract regardless of backend.
func checkID(sessionID string) error {
	if !store.ValidID(sessionID) {
		return fmt.Errorf("session id %q: %w", sessionID, store.ErrInvalidID)
	}
	return nil
}

// Exists reports whether the session row is present.
func (s *Store) Exists(sessionID string) bool {
	if checkID(sessionID) != nil {
		return false
	}
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&one)
	return err == nil
}

// Ensure inserts the session row when missing.
func (s *Store) Ensure(ctx context.Context, sessionID string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO sessions (id, created_at) VALUES (?, ?)`,
		sessionID,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

// Append inserts records in input order inside one transaction.
func (s *Store) Append(ctx context.Context, sessionID string, records []models.BookRecord) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO books (
                session_id, title, author, row_number, column_code,
                location, face, position_on_stack, recorded_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID,
			record.Title,
			record.Author,
			record.Row,
			record.Column,
			record.Location,
			record.Face,
			record.PositionOnStack,
			record.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// ReadAll returns the session's records in insertion order. Rows without a
// title are excluded to match the file backend's header filtering.
func (s *Store) ReadAll(ctx context.Context, sessionID string) ([]models.BookRecord, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT title, author, row_number, column_code, location, face, position_on_stack, recorded_at
         FROM books WHERE session_id = ? AND title != '' ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.BookRecord
	for rows.Next() {
		var record models.BookRecord
		if err := rows.Scan(
			&record.Title,
			&record.Author,
			&record.Row,
			&record.Column,
			&record.Location,
			&record.Face,
			&record.PositionOnStack,
			&record.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// DeleteWhere removes records matching (location, face) and returns the
// number of records kept.
func (s *Store) DeleteWhere(ctx context.Context, sessionID, loc string, face models.Face) (int, error) {
	if err := checkID(sessionID); err != nil {
		return 0, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM books WHERE session_id = ? AND location = ? AND face = ?`,
		sessionID, loc, face,
	)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}

	var kept int
	err = s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM books WHERE session_id = ?`,
		sessionID,
	).Scan(&kept)
	if err != nil {
		return 0, fmt.Errorf("count remaining records: %w", err)
	}
	return kept, nil
}

// Clear deletes all records of the session, keeping the session itself.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Destroy removes the session row and, via the cascade, its records. Like
// the file backend, destroying a session that does not exist is an error.
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("destroy session %s: no such session", sessionID)
	}
	return nil
}

// List enumerates all sessions.
func (s *Store) List(ctx context.Context) ([]models.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var id, createdAt string
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		created, _ := time.Parse(time.RFC3339, createdAt)
		sessions = append(sessions, models.Session{ID: id, CreatedAt: created})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

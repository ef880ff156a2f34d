// Package store defines the session-scoped record table the pipeline writes
// into. The interface is an injected capability so the same pipeline logic
// runs against the semicolon-file backend or the embedded SQLite backend.
package store

import (
	"context"
	"errors"
	"regexp"

	"github.com/boekenzolder/stackscan/internal/models"
)

// ErrInvalidID is returned when a session id falls outside the allocation
// alphabet. Ids become file names in the file backend, so both backends
// reject anything else before touching storage.
var ErrInvalidID = errors.New("invalid session id")

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidID reports whether sessionID consists solely of letters, digits,
// underscores and dashes, the same alphabet the session registry allocates
// from.
func ValidID(sessionID string) bool {
	return idPattern.MatchString(sessionID)
}

// Store is an append-oriented table of book records keyed by session id.
//
// Every mutation on one session is serialized by the implementation; a
// reader never observes a partially appended batch. Ensure materializes an
// empty record set on first reference instead of erroring. Session ids
// outside the ValidID alphabet are rejected with ErrInvalidID.
type Store interface {
	// Ensure creates the session's record set when it does not exist yet.
	Ensure(ctx context.Context, sessionID string) error
	// Append adds records to the end of the session's set in input order.
	Append(ctx context.Context, sessionID string, records []models.BookRecord) error
	// ReadAll returns every stored record, excluding header-like rows and
	// rows without a title, with numeric fields coerced.
	ReadAll(ctx context.Context, sessionID string) ([]models.BookRecord, error)
	// DeleteWhere removes every record matching (location, face) exactly and
	// returns the number of records kept.
	DeleteWhere(ctx context.Context, sessionID, location string, face models.Face) (int, error)
	// Clear resets the session's record set to empty without destroying it.
	Clear(ctx context.Context, sessionID string) error
	// Destroy removes the session and its records entirely.
	Destroy(ctx context.Context, sessionID string) error
	// Exists reports whether the session has a record set.
	Exists(sessionID string) bool
	// List enumerates all known sessions.
	List(ctx context.Context) ([]models.Session, error)
	// Close releases the backing resources.
	Close() error
}

// Package session manages the named sessions that scope inventory records.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/store"
)

// ErrNotFound is returned when an operation targets a session id that has
// no record set.
var ErrNotFound = errors.New("session not found")

var disallowed = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Registry allocates unique, filesystem-safe session identifiers on top of
// a record store.
type Registry struct {
	store store.Store
	mu    sync.Mutex
}

// NewRegistry returns a registry backed by the given store.
func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s}
}

// List enumerates all known sessions.
func (r *Registry) List(ctx context.Context) ([]models.Session, error) {
	return r.store.List(ctx)
}

// Create allocates a unique session id derived from name and materializes
// its empty record set. An empty name defaults to the current timestamp.
// The check-then-allocate step is serialized so concurrent creates cannot
// pick the same id.
func (r *Registry) Create(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = time.Now().UTC().Format("2006-01-02T15-04-05Z")
	}

	base := disallowed.ReplaceAllString(name, "_")
	id := base
	for i := 1; r.store.Exists(id); i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}

	if err := r.store.Ensure(ctx, id); err != nil {
		return "", fmt.Errorf("create session %s: %w", id, err)
	}

	slog.Info("Session created", "session_id", id)
	return id, nil
}

// Clear resets the session's record set to empty.
func (r *Registry) Clear(ctx context.Context, sessionID string) error {
	if !r.store.Exists(sessionID) {
		return ErrNotFound
	}
	return r.store.Clear(ctx, sessionID)
}

// Destroy removes the session and its records.
func (r *Registry) Destroy(ctx context.Context, sessionID string) error {
	if !r.store.Exists(sessionID) {
		return ErrNotFound
	}
	if err := r.store.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("destroy session %s: %w", sessionID, err)
	}
	slog.Info("Session destroyed", "session_id", sessionID)
	return nil
}

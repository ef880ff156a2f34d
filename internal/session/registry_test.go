package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/boekenzolder/stackscan/internal/models"
)

// memStore is a minimal in-memory store.Store for registry tests.
type memStore struct {
	sets map[string][]models.BookRecord
}

func newMemStore() *memStore {
	return &memStore{sets: make(map[string][]models.BookRecord)}
}

func (m *memStore) Ensure(_ context.Context, id string) error {
	if _, ok := m.sets[id]; !ok {
		m.sets[id] = nil
	}
	return nil
}

func (m *memStore) Append(_ context.Context, id string, records []models.BookRecord) error {
	m.sets[id] = append(m.sets[id], records...)
	return nil
}

func (m *memStore) ReadAll(_ context.Context, id string) ([]models.BookRecord, error) {
	return m.sets[id], nil
}

func (m *memStore) DeleteWhere(_ context.Context, id, loc string, face models.Face) (int, error) {
	var kept []models.BookRecord
	for _, r := range m.sets[id] {
		if r.Location == loc && r.Face == face {
			continue
		}
		kept = append(kept, r)
	}
	m.sets[id] = kept
	return len(kept), nil
}

func (m *memStore) Clear(_ context.Context, id string) error {
	m.sets[id] = nil
	return nil
}

func (m *memStore) Destroy(_ context.Context, id string) error {
	delete(m.sets, id)
	return nil
}

func (m *memStore) Exists(id string) bool {
	_, ok := m.sets[id]
	return ok
}

func (m *memStore) List(_ context.Context) ([]models.Session, error) {
	var sessions []models.Session
	for id := range m.sets {
		sessions = append(sessions, models.Session{ID: id, CreatedAt: time.Now()})
	}
	return sessions, nil
}

func (m *memStore) Close() error { return nil }

func TestCreateSanitizesName(t *testing.T) {
	registry := NewRegistry(newMemStore())

	id, err := registry.Create(context.Background(), "mijn zolder (2024)")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if strings.ContainsAny(id, " ()") {
		t.Errorf("Expected sanitized id, got %q", id)
	}
}

func TestCreateDisambiguates(t *testing.T) {
	registry := NewRegistry(newMemStore())
	ctx := context.Background()

	first, err := registry.Create(ctx, "x")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := registry.Create(ctx, "x")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if first != "x" {
		t.Errorf("Expected first id x, got %s", first)
	}
	if second != "x_1" {
		t.Errorf("Expected second id x_1, got %s", second)
	}
	if first == second {
		t.Error("Expected distinct ids")
	}
}

func TestCreateDefaultsToTimestamp(t *testing.T) {
	registry := NewRegistry(newMemStore())

	id, err := registry.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a generated id")
	}
	if !strings.HasPrefix(id, time.Now().UTC().Format("2006-")) {
		t.Errorf("Expected timestamp-derived id, got %q", id)
	}
}

func TestClearUnknownSession(t *testing.T) {
	registry := NewRegistry(newMemStore())

	err := registry.Clear(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDestroyTwice(t *testing.T) {
	registry := NewRegistry(newMemStore())
	ctx := context.Background()

	id, err := registry.Create(ctx, "x")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := registry.Destroy(ctx, id); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := registry.Destroy(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second destroy, got %v", err)
	}
}

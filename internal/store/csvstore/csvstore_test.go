package csvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord(title, loc string, face models.Face, position int) models.BookRecord {
	return models.BookRecord{
		Title:           title,
		Author:          "Author",
		Row:             3,
		Column:          "B",
		Location:        loc,
		Face:            face,
		PositionOnStack: position,
		Timestamp:       "2024-05-01T10:00:00Z",
	}
}

func TestEnsureWritesHeader(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Ensure(ctx, "attic"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !s.Exists("attic") {
		t.Fatal("Expected session file to exist")
	}

	data, err := os.ReadFile(s.path("attic"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "title;author;row;column;location;face;positionOnStack;timestamp") {
		t.Errorf("Expected header line, got %q", string(data))
	}
}

func TestAppendReadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []models.BookRecord{
		sampleRecord("First", "3B", models.FaceFront, 1),
		sampleRecord("Second", "3B", models.FaceFront, 2),
		sampleRecord("Third", "3B", models.FaceFront, 3),
	}
	if err := s.Append(ctx, "attic", records); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ReadAll(ctx, "attic")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(got))
	}
	for i, want := range records {
		if got[i] != want {
			t.Errorf("record %d: expected %+v, got %+v", i, want, got[i])
		}
	}
	if got[0].Row != 3 || got[2].PositionOnStack != 3 {
		t.Error("Expected numeric fields to be coerced")
	}
}

func TestReadAllMissingSessionIsEmpty(t *testing.T) {
	s := newTestStore(t)

	records, err := s.ReadAll(context.Background(), "never-created")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty result, got %d records", len(records))
	}
}

func TestDeleteWhere(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []models.BookRecord{
		sampleRecord("A", "A1", models.FaceFront, 1),
		sampleRecord("B", "A1", models.FaceFront, 2),
		sampleRecord("C", "A1", models.FaceBack, 1),
	}
	if err := s.Append(ctx, "attic", records); err != nil {
		t.Fatalf("append: %v", err)
	}

	kept, err := s.DeleteWhere(ctx, "attic", "A1", models.FaceFront)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if kept != 1 {
		t.Errorf("Expected 1 record kept, got %d", kept)
	}

	remaining, err := s.ReadAll(ctx, "attic")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Title != "C" || remaining[0].Face != models.FaceBack {
		t.Errorf("Expected only the back record to remain, got %+v", remaining)
	}
}

func TestDeleteWhereNoMatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "attic", []models.BookRecord{sampleRecord("A", "A1", models.FaceFront, 1)}); err != nil {
		t.Fatalf("append: %v", err)
	}

	kept, err := s.DeleteWhere(ctx, "attic", "Z9", models.FaceFront)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if kept != 1 {
		t.Errorf("Expected original count 1 reported, got %d", kept)
	}
}

func TestClearKeepsSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "attic", []models.BookRecord{sampleRecord("A", "A1", models.FaceFront, 1)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Clear(ctx, "attic"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	records, err := s.ReadAll(ctx, "attic")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records after clear, got %d", len(records))
	}
	if !s.Exists("attic") {
		t.Error("Expected session to survive clear")
	}

	// Clearing an already-empty session stays empty.
	if err := s.Clear(ctx, "attic"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestDestroy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Ensure(ctx, "attic"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := s.Destroy(ctx, "attic"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if s.Exists("attic") {
		t.Error("Expected session to be gone")
	}
	if err := s.Destroy(ctx, "attic"); err == nil {
		t.Error("Expected destroying a missing session to fail")
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"eerste", "tweede"} {
		if err := s.Ensure(ctx, id); err != nil {
			t.Fatalf("ensure %s: %v", id, err)
		}
	}

	sessions, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	ids := map[string]bool{}
	for _, sess := range sessions {
		ids[sess.ID] = true
		if sess.CreatedAt.IsZero() {
			t.Errorf("Expected creation time for %s", sess.ID)
		}
	}
	if !ids["eerste"] || !ids["tweede"] {
		t.Errorf("Expected both ids, got %v", ids)
	}
}

func TestSessionIDOutsideAlphabetRejected(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "data", "sessions")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	// Ids that would leave the sessions directory, or contain separators,
	// must be refused before any path is built.
	for _, id := range []string{"../../../outside/evil", "..", "a/b", "attic zolder", "attic.csv"} {
		if err := s.Ensure(ctx, id); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("Ensure(%q): expected invalid id error, got %v", id, err)
		}
		if err := s.Append(ctx, id, []models.BookRecord{sampleRecord("A", "A1", models.FaceFront, 1)}); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("Append(%q): expected invalid id error, got %v", id, err)
		}
		if _, err := s.ReadAll(ctx, id); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("ReadAll(%q): expected invalid id error, got %v", id, err)
		}
		if _, err := s.DeleteWhere(ctx, id, "A1", models.FaceFront); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("DeleteWhere(%q): expected invalid id error, got %v", id, err)
		}
		if err := s.Clear(ctx, id); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("Clear(%q): expected invalid id error, got %v", id, err)
		}
		if err := s.Destroy(ctx, id); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("Destroy(%q): expected invalid id error, got %v", id, err)
		}
		if s.Exists(id) {
			t.Errorf("Exists(%q): expected false", id)
		}
	}

	// Nothing may have been written outside the sessions directory.
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "data" {
		t.Errorf("Expected only the data dir under root, got %v", entries)
	}
	entries, err = os.ReadDir(filepath.Join(root, "data"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "sessions" {
		t.Errorf("Expected only the sessions dir under data, got %v", entries)
	}
}

func TestFailedAppendKeepsExistingRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "attic", []models.BookRecord{sampleRecord("First", "A1", models.FaceFront, 1)}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Swap the session file for a directory so the append cannot open it.
	path := s.path("attic")
	backup := path + ".orig"
	if err := os.Rename(path, backup); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatal(err)
	}

	err := s.Append(ctx, "attic", []models.BookRecord{sampleRecord("Second", "A1", models.FaceFront, 2)})
	if err == nil {
		t.Fatal("Expected append to fail")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(backup, path); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadAll(ctx, "attic")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Title != "First" {
		t.Errorf("Expected only the original record, got %+v", got)
	}
}

func TestQuotedSemicolonSurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("Punt; Komma", "3B", models.FaceFront, 1)
	if err := s.Append(ctx, "attic", []models.BookRecord{record}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ReadAll(ctx, "attic")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Punt; Komma" {
		t.Errorf("Expected title with semicolon preserved, got %+v", got)
	}
}

// Package csvstore persists each session as one semicolon-delimited file
// under the sessions directory, the layout the export download mirrors.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/store"
)

const (
	filePrefix = "session-"
	fileSuffix = ".csv"
)

// Header is the column layout of every session file. It is present even
// when the session is empty.
var Header = []string{"title", "author", "row", "column", "location", "face", "positionOnStack", "timestamp"}

// Store keeps one CSV file per session under dir.
type Store struct {
	dir     string
	dirLock *flock.Flock
	locks   *store.SessionLocks
}

var _ store.Store = (*Store)(nil)

// Open prepares the sessions directory and takes a directory-level lock so
// a second service instance cannot interleave file rewrites.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}

	dirLock := flock.New(filepath.Join(dir, "sessions.lock"))
	locked, err := dirLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire sessions dir lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("sessions dir %s is locked by another process", dir)
	}

	return &Store{
		dir:     dir,
		dirLock: dirLock,
		locks:   store.NewSessionLocks(),
	}, nil
}

// Close releases the directory lock.
func (s *Store) Close() error {
	if s.dirLock == nil {
		return nil
	}
	return s.dirLock.Unlock()
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.dir, filePrefix+sessionID+fileSuffix)
}

// checkID rejects ids that would leave the sessions directory when joined
// into a file name.
func checkID(sessionID string) error {
	if !store.ValidID(sessionID) {
		return fmt.Errorf("session id %q: %w", sessionID, store.ErrInvalidID)
	}
	return nil
}

// Exists reports whether the session file is present.
func (s *Store) Exists(sessionID string) bool {
	if checkID(sessionID) != nil {
		return false
	}
	_, err := os.Stat(s.path(sessionID))
	return err == nil
}

// Ensure creates the session file with its header when missing.
func (s *Store) Ensure(_ context.Context, sessionID string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.ensureLocked(sessionID)
}

func (s *Store) ensureLocked(sessionID string) error {
	path := s.path(sessionID)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()

	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	return nil
}

// Append adds records to the end of the session file in input order. The
// batch is encoded up front and written in one call, so a failed append
// leaves no partial batch behind for readers.
func (s *Store) Append(_ context.Context, sessionID string, records []models.BookRecord) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.ensureLocked(sessionID); err != nil {
		return err
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	for _, record := range records {
		if err := w.Write(recordFields(record)); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	file, err := os.OpenFile(s.path(sessionID), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(buf.String()); err != nil {
		return fmt.Errorf("append records: %w", err)
	}
	return nil
}

// ReadAll returns every data row in stored order. Header-like rows and rows
// without a title are excluded; numeric fields are coerced.
func (s *Store) ReadAll(_ context.Context, sessionID string) ([]models.BookRecord, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.readLocked(sessionID)
}

func (s *Store) readLocked(sessionID string) ([]models.BookRecord, error) {
	file, err := os.Open(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			// A missing backing file reads as empty after Ensure semantics.
			return nil, nil
		}
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var records []models.BookRecord
	for _, row := range rows {
		record, ok := rowToRecord(row)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteWhere rewrites the session file without the records matching
// (location, face) and returns the number of records kept.
func (s *Store) DeleteWhere(_ context.Context, sessionID, location string, face models.Face) (int, error) {
	if err := checkID(sessionID); err != nil {
		return 0, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	records, err := s.readLocked(sessionID)
	if err != nil {
		return 0, err
	}

	var kept []models.BookRecord
	for _, record := range records {
		if record.Location == location && record.Face == face {
			continue
		}
		kept = append(kept, record)
	}

	if err := s.rewriteLocked(sessionID, kept); err != nil {
		return 0, err
	}
	return len(kept), nil
}

// Clear resets the session file to just its header.
func (s *Store) Clear(_ context.Context, sessionID string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.rewriteLocked(sessionID, nil)
}

// rewriteLocked writes the full record set to a temp file and renames it
// into place, so readers see either the old or the new file, never a mix.
func (s *Store) rewriteLocked(sessionID string, records []models.BookRecord) error {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(recordFields(record)); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush rewrite: %w", err)
	}

	path := s.path(sessionID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Destroy removes the session file.
func (s *Store) Destroy(_ context.Context, sessionID string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := os.Remove(s.path(sessionID)); err != nil {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// List enumerates session files with their modification time as creation
// time, matching the reference behavior of statting each file.
func (s *Store) List(_ context.Context) ([]models.Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	sessions := make([]models.Session, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, models.Session{
			ID:        strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix),
			CreatedAt: info.ModTime(),
		})
	}
	return sessions, nil
}

func recordFields(record models.BookRecord) []string {
	return []string{
		record.Title,
		record.Author,
		strconv.Itoa(record.Row),
		record.Column,
		record.Location,
		string(record.Face),
		strconv.Itoa(record.PositionOnStack),
		record.Timestamp,
	}
}

// rowToRecord converts a raw CSV row, rejecting the header row and rows
// without a title.
func rowToRecord(row []string) (models.BookRecord, bool) {
	if len(row) == 0 || row[0] == "" || row[0] == Header[0] {
		return models.BookRecord{}, false
	}

	record := models.BookRecord{Title: row[0]}
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	record.Author = get(1)
	record.Row, _ = strconv.Atoi(get(2))
	record.Column = get(3)
	record.Location = get(4)
	record.Face = models.Face(get(5))
	record.PositionOnStack, _ = strconv.Atoi(get(6))
	record.Timestamp = get(7)
	return record, true
}

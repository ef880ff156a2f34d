package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/boekenzolder/stackscan/internal/models"
)

func sampleRecords() []models.BookRecord {
	return []models.BookRecord{
		{
			Title:           "The Hobbit",
			Author:          "Tolkien",
			Row:             3,
			Column:          "B",
			Location:        "3B",
			Face:            models.FaceFront,
			PositionOnStack: 1,
			Timestamp:       "2024-05-01T10:00:00Z",
		},
		{
			Title:           "Punt; Komma",
			Author:          "unknown",
			Row:             3,
			Column:          "B",
			Location:        "3B",
			Face:            models.FaceBack,
			PositionOnStack: 1,
			Timestamp:       "2024-05-01T10:05:00Z",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 records, got %d lines", len(lines))
	}
	if lines[0] != "title;author;row;column;location;face;positionOnStack;timestamp" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "The Hobbit;Tolkien;3;B;3B;front;1;") {
		t.Errorf("Unexpected record line %q", lines[1])
	}
	// A semicolon inside a field must be quoted.
	if !strings.Contains(lines[2], `"Punt; Komma"`) {
		t.Errorf("Expected quoted semicolon field, got %q", lines[2])
	}
}

func TestWriteCSVEmptyKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "title;author;row;column;location;face;positionOnStack;timestamp" {
		t.Errorf("Expected bare header, got %q", buf.String())
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, sampleRecords()); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := parquet.Read[parquetRow](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Title != "The Hobbit" || rows[0].Row != 3 || rows[0].Face != "front" {
		t.Errorf("Unexpected first row %+v", rows[0])
	}
}

func TestWriteParquetEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Expected a valid empty parquet file, got no bytes")
	}
}

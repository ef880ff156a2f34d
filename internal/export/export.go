// Package export renders a session's record set for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/store/csvstore"
)

// WriteCSV writes the canonical semicolon-delimited export: one header line
// followed by one line per record. The header is present even for an empty
// session.
func WriteCSV(w io.Writer, records []models.BookRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvstore.Header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, record := range records {
		row := []string{
			record.Title,
			record.Author,
			strconv.Itoa(record.Row),
			record.Column,
			record.Location,
			string(record.Face),
			strconv.Itoa(record.PositionOnStack),
			record.Timestamp,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write export record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

type parquetRow struct {
	Title           string `parquet:"title"`
	Author          string `parquet:"author"`
	Row             int32  `parquet:"row"`
	Column          string `parquet:"column"`
	Location        string `parquet:"location"`
	Face            string `parquet:"face"`
	PositionOnStack int32  `parquet:"positionOnStack"`
	Timestamp       string `parquet:"timestamp"`
}

// WriteParquet writes the record set as a Parquet file with the same column
// layout as the text export.
func WriteParquet(w io.Writer, records []models.BookRecord) error {
	rows := make([]parquetRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, parquetRow{
			Title:           record.Title,
			Author:          record.Author,
			Row:             int32(record.Row),
			Column:          record.Column,
			Location:        record.Location,
			Face:            string(record.Face),
			PositionOnStack: int32(record.PositionOnStack),
			Timestamp:       record.Timestamp,
		})
	}

	pw := parquet.NewGenericWriter[parquetRow](w)
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

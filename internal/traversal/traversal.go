// Package traversal generates the ordered walk an operator follows when
// photographing every shelf slot in a warehouse grid.
//
// The walk iterates rows outermost, then column labels, then stack faces,
// so both faces of one slot are photographed before moving on. The Cursor
// is pure client-facing orchestration state; it never touches storage.
package traversal

import (
	"strings"

	"github.com/boekenzolder/stackscan/internal/models"
)

// Coordinate is one stop on the bulk walk.
type Coordinate struct {
	Row    int         `json:"row"`
	Column string      `json:"column"`
	Face   models.Face `json:"face"`
	Prefix string      `json:"prefix,omitempty"`
}

// ParseColumns splits a comma separated column label list, trims and
// upper-cases each entry, and drops empties.
func ParseColumns(columnsCSV string) []string {
	var columns []string
	for _, c := range strings.Split(columnsCSV, ",") {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			columns = append(columns, c)
		}
	}
	return columns
}

// Generate produces the full ordered coordinate sequence for a grid.
// Any zero dimension yields an empty sequence.
func Generate(rows int, columnsCSV string, faces []models.Face, prefix string) []Coordinate {
	columns := ParseColumns(columnsCSV)

	var locations []Coordinate
	for row := 1; row <= rows; row++ {
		for _, column := range columns {
			for _, face := range faces {
				locations = append(locations, Coordinate{
					Row:    row,
					Column: column,
					Face:   face,
					Prefix: prefix,
				})
			}
		}
	}
	return locations
}

// Cursor walks a generated sequence one coordinate at a time.
type Cursor struct {
	locations []Coordinate
	index     int
}

// Start generates a fresh sequence and positions the cursor at its first
// coordinate. It returns false when the grid is empty, in which case bulk
// mode cannot start.
func Start(rows int, columnsCSV string, faces []models.Face, prefix string) (*Cursor, bool) {
	locations := Generate(rows, columnsCSV, faces, prefix)
	if len(locations) == 0 {
		return nil, false
	}
	return &Cursor{locations: locations}, true
}

// Current returns the coordinate the cursor points at.
func (c *Cursor) Current() Coordinate {
	return c.locations[c.index]
}

// Advance moves to the next coordinate. It returns false when the walk is
// complete; the cursor stays on the last coordinate.
func (c *Cursor) Advance() bool {
	if c.index+1 >= len(c.locations) {
		return false
	}
	c.index++
	return true
}

// Retreat moves back one coordinate. At the first coordinate it is a no-op.
func (c *Cursor) Retreat() {
	if c.index > 0 {
		c.index--
	}
}

// Progress reports the 1-based position and the total number of stops.
func (c *Cursor) Progress() (int, int) {
	return c.index + 1, len(c.locations)
}

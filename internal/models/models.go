package models

import "time"

// Unknown is the sentinel value for a title or author the vision model
// could not read.
const Unknown = "unknown"

// Face identifies which side of a double-stacked shelf slot a record
// belongs to.
type Face string

const (
	FaceFront Face = "front"
	FaceBack  Face = "back"
)

// Valid reports whether f is one of the two known faces.
func (f Face) Valid() bool {
	return f == FaceFront || f == FaceBack
}

// BookRecord is one recognized book on a stack.
type BookRecord struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Row             int    `json:"row"`
	Column          string `json:"column"`
	Location        string `json:"location"`
	Face            Face   `json:"face"`
	PositionOnStack int    `json:"positionOnStack"`
	Timestamp       string `json:"timestamp"`
}

// Session describes one named inventory session.
type Session struct {
	ID        string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

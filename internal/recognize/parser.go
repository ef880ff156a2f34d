// Package recognize turns the vision model's free-form reply into ordered
// (title, author) pairs.
//
// The model is asked for one `"Title";"Author"` line per book, but the
// output format is not contractually guaranteed. Parsing is therefore
// lenient: malformed lines still yield a best-effort entry, and only fully
// blank lines are dropped. Losing a detected book is worse than importing
// one with unknown fields.
package recognize

import (
	"strings"

	"github.com/boekenzolder/stackscan/internal/models"
)

// Entry is one parsed book, in stack order top to bottom.
type Entry struct {
	Title  string
	Author string
}

// ParseListing splits the raw model reply into entries, one per non-blank
// line. A line without a semicolon becomes a title with an unknown author.
func ParseListing(raw string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ";", 2)
		title := cleanField(parts[0])
		author := models.Unknown
		if len(parts) == 2 {
			author = cleanField(parts[1])
		}
		entries = append(entries, Entry{Title: title, Author: author})
	}
	return entries
}

// cleanField strips surrounding whitespace and quote characters. An empty
// result falls back to the unknown sentinel.
func cleanField(field string) string {
	field = strings.TrimSpace(field)
	field = strings.Trim(field, `"`)
	field = strings.TrimSpace(field)
	if field == "" {
		return models.Unknown
	}
	return field
}

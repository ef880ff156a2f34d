// Package location composes canonical shelf location strings.
//
// A location is the shelf row number immediately followed by the column
// letter code, e.g. "3B". Special-case placements carry a custom prefix
// separated by a dash, e.g. "Hendrik-3B". The string is write-once: records
// store it verbatim and deletion matches it by exact equality, so the format
// must stay stable.
package location

import "fmt"

// Encode builds the canonical location string for a shelf coordinate.
// The column is used verbatim; callers own its casing.
func Encode(row int, column, prefix string) string {
	if prefix == "" {
		return fmt.Sprintf("%d%s", row, column)
	}
	return fmt.Sprintf("%s-%d%s", prefix, row, column)
}

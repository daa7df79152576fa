package roster

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. The spreadsheet is hand-edited, so the set
// covers the formats people actually type into it.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC3339,
}

// ParseDate parses a spreadsheet date cell.
// Returns nil when the cell is empty or matches no known layout; a nil date
// is treated as non-matching, never as an error.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

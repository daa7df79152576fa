package roster

import (
	"strings"
	"time"

	logx "bdaybot/pkg/logx"
)

// Person is one roster row with its labeled date fields parsed.
// Nil dates mean "missing or unparseable" and never match.
type Person struct {
	Name     string
	Birthday *time.Time
	HireDate *time.Time
}

// Table is a header-indexed row set as returned by a Source.
type Table struct {
	header  []string
	colIdx  map[string]int
	records [][]string
}

// NewTable builds a Table from raw CSV-shaped records. The first record is
// the header row. Header matching is case-insensitive and trims whitespace.
func NewTable(records [][]string) Table {
	t := Table{colIdx: map[string]int{}}
	if len(records) == 0 {
		return t
	}
	t.header = records[0]
	for i, name := range t.header {
		key := normalizeHeader(name)
		if key == "" {
			continue
		}
		if _, dup := t.colIdx[key]; !dup {
			t.colIdx[key] = i
		}
	}
	t.records = records[1:]
	return t
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (t Table) Len() int { return len(t.records) }

// Column returns the values of the named column, one per row.
// A missing column yields (nil, false); rows shorter than the column index
// contribute empty strings.
func (t Table) Column(name string) ([]string, bool) {
	idx, ok := t.colIdx[normalizeHeader(name)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.records))
	for i, rec := range t.records {
		if idx < len(rec) {
			out[i] = rec[idx]
		}
	}
	return out, true
}

// Columns names the roster columns of interest.
type Columns struct {
	Name     string
	Birthday string
	HireDate string
}

// DefaultColumns matches the spreadsheet layout the bot was built for.
func DefaultColumns() Columns {
	return Columns{Name: "Employee Name", Birthday: "Birthday", HireDate: "Hire Date"}
}

func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if strings.TrimSpace(c.Name) == "" {
		c.Name = d.Name
	}
	if strings.TrimSpace(c.Birthday) == "" {
		c.Birthday = d.Birthday
	}
	if strings.TrimSpace(c.HireDate) == "" {
		c.HireDate = d.HireDate
	}
	return c
}

// People converts a table into parsed persons.
//
// Missing columns are logged once as a warning and produce an empty series
// for every row, so downstream matching simply finds nothing.
func People(t Table, cols Columns, log logx.Logger) []Person {
	cols = cols.withDefaults()

	series := func(name string) []string {
		vals, ok := t.Column(name)
		if !ok {
			log.Warn("roster column missing", logx.String("column", name))
			return make([]string, t.Len())
		}
		return vals
	}

	names := series(cols.Name)
	birthdays := series(cols.Birthday)
	hireDates := series(cols.HireDate)

	people := make([]Person, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		name := strings.TrimSpace(names[i])
		if name == "" {
			continue
		}
		people = append(people, Person{
			Name:     name,
			Birthday: ParseDate(birthdays[i]),
			HireDate: ParseDate(hireDates[i]),
		})
	}
	return people
}

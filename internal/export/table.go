// Package export turns extracted records into workbooks and text formats.
package export

import (
	"github.com/rezonia/nfe-converter/internal/model"
)

// Table is a rectangular view of records. Columns are the union of record
// labels in order of first appearance; absent cells are "".
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a table from records
func NewTable(records []*model.Record) *Table {
	t := &Table{}
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, label := range rec.Labels() {
			if !seen[label] {
				seen[label] = true
				t.Columns = append(t.Columns, label)
			}
		}
	}

	t.Rows = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = rec.Get(col)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Column returns the values of the named column, or nil if absent
func (t *Table) Column(name string) []string {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

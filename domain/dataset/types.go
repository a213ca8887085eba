package dataset

import (
	"fmt"
	"time"

	"gotally/domain/core"
)

// Column is a named, ordered sequence of cells
type Column struct {
	Name   string  `json:"name"`
	Values []Value `json:"values"`
}

// Len returns the number of cells in the column
func (c Column) Len() int {
	return len(c.Values)
}

// Source describes where a table was loaded from
type Source struct {
	Filename  string    `json:"filename"`
	SheetName string    `json:"sheet_name,omitempty"`
	HeaderRow int       `json:"header_row"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Table is an in-memory dataset with named, typed columns.
// All columns have the same length and names are unique.
type Table struct {
	columns []Column
	index   map[string]int
	Source  Source
}

// NewTable validates the columns and builds a table
func NewTable(columns []Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	rows := -1
	for _, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("%w: empty column name", core.ErrInvalidTable)
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateColumn, col.Name)
		}
		if rows >= 0 && col.Len() != rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", core.ErrRaggedColumns, col.Name, col.Len(), rows)
		}
		rows = col.Len()
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustTable builds a table and panics on invalid input. Intended for tests and fixtures.
func MustTable(columns ...Column) *Table {
	t, err := NewTable(columns)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column names in order
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// IsEmpty returns true when the table has no rows
func (t *Table) IsEmpty() bool {
	return t.RowCount() == 0
}

// HasColumn reports whether a column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Row returns the cells of one row in column order
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Values[i]
	}
	return row
}

// Rows returns every row in column order
func (t *Table) Rows() [][]Value {
	rows := make([][]Value, t.RowCount())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

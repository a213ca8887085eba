package dataset

import (
	"fmt"

	"gotally/domain/core"
)

// SelectRows returns a new table containing the given rows in the given order
func (t *Table) SelectRows(rows []int) *Table {
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   t.index,
		Source:  t.Source,
	}
	for j, col := range t.columns {
		values := make([]Value, len(rows))
		for k, r := range rows {
			values[k] = col.Values[r]
		}
		out.columns[j] = Column{Name: col.Name, Values: values}
	}
	return out
}

// Head returns the first n rows
func (t *Table) Head(n int) *Table {
	if n > t.RowCount() {
		n = t.RowCount()
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.SelectRows(rows)
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		Source:  t.Source,
	}
	for j, col := range t.columns {
		values := make([]Value, len(col.Values))
		copy(values, col.Values)
		out.columns[j] = Column{Name: col.Name, Values: values}
		out.index[col.Name] = j
	}
	return out
}

// SetColumn replaces the values of an existing column in place
func (t *Table) SetColumn(name string, values []Value) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrFieldNotFound, name)
	}
	if len(values) != t.RowCount() {
		return fmt.Errorf("%w: %q has %d rows, expected %d", core.ErrRaggedColumns, name, len(values), t.RowCount())
	}
	t.columns[i] = Column{Name: name, Values: values}
	return nil
}

// NumericColumns returns columns holding no text cells and at least one number
func (t *Table) NumericColumns() []string {
	var names []string
	for _, col := range t.columns {
		if !hasText(col) && hasNumber(col) {
			names = append(names, col.Name)
		}
	}
	return names
}

// CategoricalColumns returns columns holding at least one text cell
func (t *Table) CategoricalColumns() []string {
	var names []string
	for _, col := range t.columns {
		if hasText(col) {
			names = append(names, col.Name)
		}
	}
	return names
}

// ColumnKind returns the dominant kind of a column: text if any text cell exists
func (t *Table) ColumnKind(name string) (Kind, bool) {
	col, ok := t.Column(name)
	if !ok {
		return KindMissing, false
	}
	if hasText(col) {
		return KindText, true
	}
	return KindNumber, true
}

func hasText(col Column) bool {
	for _, v := range col.Values {
		if v.IsText() {
			return true
		}
	}
	return false
}

func hasNumber(col Column) bool {
	for _, v := range col.Values {
		if v.IsNumeric() {
			return true
		}
	}
	return false
}

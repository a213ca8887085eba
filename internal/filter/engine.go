// Package filter narrows a table by membership filters.
package filter

import (
	"fmt"

	"gotally/domain/core"
	"gotally/domain/dataset"
	dfilter "gotally/domain/filter"
)

// BuildDomain returns the distinct values of field in first-appearance order
func BuildDomain(t *dataset.Table, field string) ([]dataset.Value, error) {
	col, ok := t.Column(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrFieldNotFound, field)
	}

	seen := make(map[string]bool)
	values := make([]dataset.Value, 0)
	for _, v := range col.Values {
		key := v.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, v)
	}
	return values, nil
}

// Apply keeps the rows that satisfy every active spec. Inactive specs are
// ignored; with none active the input table itself is returned. A result
// with zero rows is returned together with core.ErrNoDataAfterFilters.
func Apply(t *dataset.Table, specs []dfilter.Spec) (*dataset.Table, error) {
	active := make([]dfilter.Spec, 0, len(specs))
	columns := make([]dataset.Column, 0, len(specs))
	for _, spec := range specs {
		if !spec.Active() {
			continue
		}
		col, ok := t.Column(spec.Field)
		if !ok {
			return nil, fmt.Errorf("%w: filter on %q", core.ErrFieldNotFound, spec.Field)
		}
		active = append(active, spec)
		columns = append(columns, col)
	}

	out := t
	if len(active) > 0 {
		rows := make([]int, 0, t.RowCount())
		for i := 0; i < t.RowCount(); i++ {
			if matchesAll(active, columns, i) {
				rows = append(rows, i)
			}
		}
		out = t.SelectRows(rows)
	}

	if out.IsEmpty() {
		return out, core.ErrNoDataAfterFilters
	}
	return out, nil
}

func matchesAll(specs []dfilter.Spec, columns []dataset.Column, row int) bool {
	for k, spec := range specs {
		if !spec.Matches(columns[k].Values[row]) {
			return false
		}
	}
	return true
}

// PrimaryFields lists the candidate fields for the first dashboard filter
func PrimaryFields(t *dataset.Table) []string {
	return t.Columns()
}

// SecondaryFields lists the candidates for the second dashboard filter,
// which never repeats the field chosen for the first
func SecondaryFields(t *dataset.Table, first string) []string {
	return without(t.Columns(), first)
}

// AdditionalFields lists the candidates for the detailed-analysis filter,
// excluding only the categorical grouping field
func AdditionalFields(t *dataset.Table, groupField string) []string {
	return without(t.Columns(), groupField)
}

func without(fields []string, exclude string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != exclude {
			out = append(out, f)
		}
	}
	return out
}

// Package aggregate computes scalar and grouped metrics over a table.
// Every result is truncated toward zero, never rounded.
package aggregate

import (
	"fmt"
	"sort"

	"gotally/domain/aggregate"
	"gotally/domain/core"
	"gotally/domain/dataset"
	"gotally/internal/format"

	"github.com/montanaflynn/stats"
)

// ComputeScalar computes one operation over one column.
// count counts non-missing cells; sum and average need numeric cells.
func ComputeScalar(t *dataset.Table, field string, op aggregate.Operation) (int64, error) {
	col, ok := t.Column(field)
	if !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrFieldNotFound, field)
	}
	return compute(col.Values, op)
}

// ScalarCard computes one card. A failure is reported on the card itself
// so sibling cards are unaffected.
func ScalarCard(t *dataset.Table, label, field string, op aggregate.Operation) aggregate.Card {
	card := aggregate.Card{Label: label, Field: field, Op: op}
	value, err := ComputeScalar(t, field, op)
	if err != nil {
		card.Error = fmt.Sprintf("error computing %s for %s: %v", op, field, err)
		return card
	}
	card.Value = value
	card.Display = format.Int(value)
	return card
}

// ComputeGrouped groups rows by groupField and computes each operation over
// numericField per group. Rows are ordered by group key, numbers before
// text; rows whose key is missing are dropped.
func ComputeGrouped(t *dataset.Table, groupField, numericField string, ops []aggregate.Operation) (*aggregate.GroupTable, error) {
	groupCol, ok := t.Column(groupField)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrFieldNotFound, groupField)
	}
	numCol, ok := t.Column(numericField)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrFieldNotFound, numericField)
	}
	ops, err := normalizeOps(ops)
	if err != nil {
		return nil, err
	}

	keys := make([]dataset.Value, 0)
	members := make(map[string][]dataset.Value)
	for i, key := range groupCol.Values {
		if key.IsMissing() {
			continue
		}
		k := key.Key()
		if _, seen := members[k]; !seen {
			keys = append(keys, key)
		}
		members[k] = append(members[k], numCol.Values[i])
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	result := &aggregate.GroupTable{
		GroupField:   groupField,
		NumericField: numericField,
		Operations:   ops,
		Rows:         make([]aggregate.GroupRow, 0, len(keys)),
	}
	for _, key := range keys {
		row := aggregate.GroupRow{
			Key:     key,
			Values:  make(map[aggregate.Operation]int64, len(ops)),
			Display: make(map[aggregate.Operation]string, len(ops)),
		}
		for _, op := range ops {
			v, err := compute(members[key.Key()], op)
			if err != nil {
				return nil, fmt.Errorf("group %s: %s of %s: %w", key, op, numericField, err)
			}
			row.Values[op] = v
			row.Display[op] = format.Int(v)
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func compute(values []dataset.Value, op aggregate.Operation) (int64, error) {
	switch op {
	case aggregate.OpCount:
		var n int64
		for _, v := range values {
			if !v.IsMissing() {
				n++
			}
		}
		return n, nil

	case aggregate.OpSum:
		data, err := numeric(values)
		if err != nil {
			return 0, err
		}
		if len(data) == 0 {
			return 0, nil
		}
		sum, err := stats.Sum(data)
		if err != nil {
			return 0, err
		}
		return truncate(sum), nil

	case aggregate.OpAverage:
		data, err := numeric(values)
		if err != nil {
			return 0, err
		}
		if len(data) == 0 {
			return 0, core.ErrNoValues
		}
		mean, err := stats.Mean(data)
		if err != nil {
			return 0, err
		}
		return truncate(mean), nil
	}
	return 0, fmt.Errorf("%w: %q", core.ErrUnknownOperation, op)
}

// numeric collects the numbers of a column, skipping missing cells.
// A text cell makes the column non-numeric.
func numeric(values []dataset.Value) (stats.Float64Data, error) {
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		switch {
		case v.IsMissing():
			continue
		case v.IsText():
			return nil, fmt.Errorf("%w: text value %q", core.ErrNonNumeric, v.Text)
		}
		f, _ := v.Float()
		data = append(data, f)
	}
	return data, nil
}

// truncate converts toward zero: 7.9 -> 7, -7.9 -> -7
func truncate(f float64) int64 {
	return int64(f)
}

func normalizeOps(ops []aggregate.Operation) ([]aggregate.Operation, error) {
	seen := make(map[aggregate.Operation]bool, len(ops))
	out := make([]aggregate.Operation, 0, len(ops))
	for _, op := range ops {
		switch op {
		case aggregate.OpSum, aggregate.OpCount, aggregate.OpAverage:
		default:
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownOperation, op)
		}
		if !seen[op] {
			seen[op] = true
			out = append(out, op)
		}
	}
	return out, nil
}

package aggregate

import (
	"testing"

	"gotally/domain/aggregate"
	"gotally/domain/core"
	"gotally/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbers(fs ...float64) []dataset.Value {
	out := make([]dataset.Value, len(fs))
	for i, f := range fs {
		out[i] = dataset.Number(f)
	}
	return out
}

func texts(ss ...string) []dataset.Value {
	out := make([]dataset.Value, len(ss))
	for i, s := range ss {
		out[i] = dataset.Text(s)
	}
	return out
}

func single(values []dataset.Value) *dataset.Table {
	return dataset.MustTable(dataset.Column{Name: "N", Values: values})
}

func TestComputeScalarTruncates(t *testing.T) {
	tests := []struct {
		name   string
		values []dataset.Value
		op     aggregate.Operation
		want   int64
	}{
		{"sum truncates the total", numbers(1, 2, 3.9), aggregate.OpSum, 6},
		{"average exact", numbers(4, 5, 6), aggregate.OpAverage, 5},
		{"average truncates", numbers(4, 5, 7), aggregate.OpAverage, 5},
		{"average 7.9 is 7", numbers(7.9), aggregate.OpAverage, 7},
		{"negative toward zero", numbers(-3.5, -4.4), aggregate.OpSum, -7},
		{"count all present", numbers(0, 0, 1), aggregate.OpCount, 3},
		{"sum skips missing", []dataset.Value{dataset.Number(2), dataset.Missing(), dataset.Number(3)}, aggregate.OpSum, 5},
		{"sum of nothing", []dataset.Value{dataset.Missing()}, aggregate.OpSum, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeScalar(single(tt.values), "N", tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountIgnoresCoercion(t *testing.T) {
	values := []dataset.Value{dataset.Text("a"), dataset.Missing(), dataset.Number(1), dataset.Text("b"), dataset.Missing()}
	got, err := ComputeScalar(single(values), "N", aggregate.OpCount)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got, "count is the number of non-missing cells")
}

func TestComputeScalarErrors(t *testing.T) {
	table := single(texts("x", "y"))

	_, err := ComputeScalar(table, "N", aggregate.OpSum)
	assert.ErrorIs(t, err, core.ErrNonNumeric)
	_, err = ComputeScalar(table, "N", aggregate.OpAverage)
	assert.ErrorIs(t, err, core.ErrNonNumeric)
	_, err = ComputeScalar(table, "Missing", aggregate.OpCount)
	assert.ErrorIs(t, err, core.ErrFieldNotFound)
	_, err = ComputeScalar(table, "N", aggregate.Operation("median"))
	assert.ErrorIs(t, err, core.ErrUnknownOperation)
	_, err = ComputeScalar(single([]dataset.Value{dataset.Missing()}), "N", aggregate.OpAverage)
	assert.ErrorIs(t, err, core.ErrNoValues)
}

func TestScalarCard(t *testing.T) {
	table := dataset.MustTable(
		dataset.Column{Name: "Sales", Values: numbers(1000000, 234567)},
		dataset.Column{Name: "Name", Values: texts("a", "b")},
	)

	ok := ScalarCard(table, "Sales", "Sales", aggregate.OpSum)
	assert.False(t, ok.Failed())
	assert.Equal(t, int64(1234567), ok.Value)
	assert.Equal(t, "1,234,567", ok.Display)

	bad := ScalarCard(table, "Name", "Name", aggregate.OpSum)
	assert.True(t, bad.Failed())
	assert.Contains(t, bad.Error, "error computing sum for Name")
	assert.Empty(t, bad.Display)
}

func TestComputeGroupedTwoGroups(t *testing.T) {
	table := dataset.MustTable(
		dataset.Column{Name: "G", Values: texts("A", "A", "B")},
		dataset.Column{Name: "N", Values: numbers(10, 20, 30)},
	)

	got, err := ComputeGrouped(table, "G", "N", aggregate.AllOperations)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)

	a, ok := got.Lookup(dataset.Text("A"))
	require.True(t, ok)
	assert.Equal(t, map[aggregate.Operation]int64{aggregate.OpSum: 30, aggregate.OpCount: 2, aggregate.OpAverage: 15}, a.Values)

	b, ok := got.Lookup(dataset.Text("B"))
	require.True(t, ok)
	assert.Equal(t, map[aggregate.Operation]int64{aggregate.OpSum: 30, aggregate.OpCount: 1, aggregate.OpAverage: 30}, b.Values)
}

func TestComputeGroupedEndToEnd(t *testing.T) {
	table := dataset.MustTable(
		dataset.Column{Name: "category", Values: texts("A", "A", "B", "B")},
		dataset.Column{Name: "amount", Values: numbers(10, 20, 30, 40)},
	)

	got, err := ComputeGrouped(table, "category", "amount",
		[]aggregate.Operation{aggregate.OpSum, aggregate.OpAverage, aggregate.OpCount})
	require.NoError(t, err)

	assert.Equal(t, []dataset.Value{dataset.Text("A"), dataset.Text("B")}, []dataset.Value{got.Rows[0].Key, got.Rows[1].Key})
	assert.Equal(t, int64(30), got.Rows[0].Values[aggregate.OpSum])
	assert.Equal(t, int64(2), got.Rows[0].Values[aggregate.OpCount])
	assert.Equal(t, int64(15), got.Rows[0].Values[aggregate.OpAverage])
	assert.Equal(t, int64(70), got.Rows[1].Values[aggregate.OpSum])
	assert.Equal(t, int64(2), got.Rows[1].Values[aggregate.OpCount])
	assert.Equal(t, int64(35), got.Rows[1].Values[aggregate.OpAverage])
	assert.Equal(t, "70", got.Rows[1].Display[aggregate.OpSum])
}

func TestComputeGroupedOrderingAndSubset(t *testing.T) {
	table := dataset.MustTable(
		dataset.Column{Name: "G", Values: []dataset.Value{
			dataset.Text("b"), dataset.Number(10), dataset.Missing(), dataset.Text("a"), dataset.Number(2),
		}},
		dataset.Column{Name: "N", Values: numbers(1, 2, 3, 4, 5)},
	)

	got, err := ComputeGrouped(table, "G", "N", []aggregate.Operation{aggregate.OpCount, aggregate.OpCount})
	require.NoError(t, err)
	assert.Equal(t, []aggregate.Operation{aggregate.OpCount}, got.Operations)

	keys := make([]dataset.Value, len(got.Rows))
	for i, row := range got.Rows {
		keys[i] = row.Key
		assert.NotContains(t, row.Values, aggregate.OpSum)
	}
	assert.Equal(t, []dataset.Value{dataset.Number(2), dataset.Number(10), dataset.Text("a"), dataset.Text("b")}, keys)
}

func TestComputeGroupedErrors(t *testing.T) {
	table := dataset.MustTable(
		dataset.Column{Name: "G", Values: texts("A")},
		dataset.Column{Name: "T", Values: texts("x")},
	)

	_, err := ComputeGrouped(table, "Nope", "T", aggregate.AllOperations)
	assert.ErrorIs(t, err, core.ErrFieldNotFound)
	_, err = ComputeGrouped(table, "G", "Nope", aggregate.AllOperations)
	assert.ErrorIs(t, err, core.ErrFieldNotFound)
	_, err = ComputeGrouped(table, "G", "T", []aggregate.Operation{aggregate.OpSum})
	assert.ErrorIs(t, err, core.ErrNonNumeric)
	_, err = ComputeGrouped(table, "G", "T", []aggregate.Operation{"max"})
	assert.ErrorIs(t, err, core.ErrUnknownOperation)

	counted, err := ComputeGrouped(table, "G", "T", []aggregate.Operation{aggregate.OpCount})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counted.Rows[0].Values[aggregate.OpCount])
}

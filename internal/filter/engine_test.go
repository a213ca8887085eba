package filter

import (
	"testing"

	"gotally/domain/core"
	"gotally/domain/dataset"
	dfilter "gotally/domain/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesTable() *dataset.Table {
	return dataset.MustTable(
		dataset.Column{Name: "Region", Values: []dataset.Value{
			dataset.Text("North"), dataset.Text("South"), dataset.Text("North"), dataset.Text("East"), dataset.Missing(),
		}},
		dataset.Column{Name: "Year", Values: []dataset.Value{
			dataset.Number(2023), dataset.Number(2024), dataset.Number(2024), dataset.Number(2023), dataset.Number(2024),
		}},
		dataset.Column{Name: "Amount", Values: []dataset.Value{
			dataset.Number(10), dataset.Number(20), dataset.Number(30), dataset.Number(40), dataset.Number(50),
		}},
	)
}

func spec(field string, values ...dataset.Value) dfilter.Spec {
	return dfilter.Spec{Field: field, Values: values}
}

func amounts(t *testing.T, table *dataset.Table) []float64 {
	t.Helper()
	col, ok := table.Column("Amount")
	require.True(t, ok)
	out := make([]float64, 0, col.Len())
	for _, v := range col.Values {
		f, _ := v.Float()
		out = append(out, f)
	}
	return out
}

func TestBuildDomain(t *testing.T) {
	table := salesTable()

	values, err := BuildDomain(table, "Region")
	require.NoError(t, err)
	assert.Equal(t, []dataset.Value{
		dataset.Text("North"), dataset.Text("South"), dataset.Text("East"), dataset.Missing(),
	}, values)

	values, err = BuildDomain(table, "Year")
	require.NoError(t, err)
	assert.Equal(t, []dataset.Value{dataset.Number(2023), dataset.Number(2024)}, values)

	_, err = BuildDomain(table, "Nope")
	assert.ErrorIs(t, err, core.ErrFieldNotFound)
}

func TestApplyIdentity(t *testing.T) {
	table := salesTable()

	out, err := Apply(table, nil)
	require.NoError(t, err)
	assert.Same(t, table, out)

	out, err = Apply(table, []dfilter.Spec{spec("Region"), spec("Year"), spec("")})
	require.NoError(t, err)
	assert.Same(t, table, out, "filters with empty selections are pass-through")
}

func TestApplySingleAndAnd(t *testing.T) {
	table := salesTable()
	north := spec("Region", dataset.Text("North"), dataset.Text("East"))
	y2024 := spec("Year", dataset.Number(2024))

	only1, err := Apply(table, []dfilter.Spec{north})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 30, 40}, amounts(t, only1))

	only2, err := Apply(table, []dfilter.Spec{y2024})
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 30, 50}, amounts(t, only2))

	both, err := Apply(table, []dfilter.Spec{north, y2024})
	require.NoError(t, err)
	assert.Equal(t, []float64{30}, amounts(t, both), "AND equals the intersection of each filter alone")

	assert.Equal(t, 5, table.RowCount(), "input table is untouched")
}

func TestApplyMatchesMissing(t *testing.T) {
	out, err := Apply(salesTable(), []dfilter.Spec{spec("Region", dataset.Missing())})
	require.NoError(t, err)
	assert.Equal(t, []float64{50}, amounts(t, out))
}

func TestApplyEmptyResult(t *testing.T) {
	out, err := Apply(salesTable(), []dfilter.Spec{
		spec("Region", dataset.Text("South")),
		spec("Year", dataset.Number(2023)),
	})
	assert.ErrorIs(t, err, core.ErrNoDataAfterFilters)
	require.NotNil(t, out)
	assert.Equal(t, 0, out.RowCount())
}

func TestApplyUnknownField(t *testing.T) {
	_, err := Apply(salesTable(), []dfilter.Spec{spec("Nope", dataset.Text("x"))})
	assert.ErrorIs(t, err, core.ErrFieldNotFound)

	_, err = Apply(salesTable(), []dfilter.Spec{spec("Nope")})
	assert.NoError(t, err, "inactive specs are not validated")
}

func TestCandidateFields(t *testing.T) {
	table := salesTable()
	assert.Equal(t, []string{"Region", "Year", "Amount"}, PrimaryFields(table))
	assert.Equal(t, []string{"Region", "Amount"}, SecondaryFields(table, "Year"))
	assert.Equal(t, []string{"Region", "Year", "Amount"}, SecondaryFields(table, ""))
	assert.Equal(t, []string{"Year", "Amount"}, AdditionalFields(table, "Region"))
}

// Package profiling summarizes numeric columns for the query page.
package profiling

import (
	"math"
	"sort"

	"gotally/domain/dataset"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds descriptive statistics of one numeric column.
// Statistics that cannot be computed for the sample size are zero.
type ColumnSummary struct {
	Field    string  `json:"field"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
}

// DataProfiler computes column summaries
type DataProfiler struct{}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{}
}

// ProfileColumn summarizes the numeric cells of a column. ok is false when
// the column holds text or no numbers at all.
func (dp *DataProfiler) ProfileColumn(col dataset.Column) (ColumnSummary, bool) {
	summary := ColumnSummary{Field: col.Name}
	data := make([]float64, 0, col.Len())
	for _, v := range col.Values {
		switch {
		case v.IsText():
			return summary, false
		case v.IsMissing():
			summary.Missing++
		default:
			f, _ := v.Float()
			data = append(data, f)
		}
	}
	if len(data) == 0 {
		return summary, false
	}

	sort.Float64s(data)
	summary.Count = len(data)
	summary.Min = floats.Min(data)
	summary.Max = floats.Max(data)
	summary.Mean, summary.StdDev = stat.MeanStdDev(data, nil)
	summary.Median = stat.Quantile(0.5, stat.Empirical, data, nil)
	summary.Q25 = stat.Quantile(0.25, stat.Empirical, data, nil)
	summary.Q75 = stat.Quantile(0.75, stat.Empirical, data, nil)
	summary.Skewness = stat.Skew(data, nil)

	summary.StdDev = finite(summary.StdDev)
	summary.Skewness = finite(summary.Skewness)
	return summary, true
}

// ProfileTable summarizes every numeric column in table order
func (dp *DataProfiler) ProfileTable(t *dataset.Table) []ColumnSummary {
	out := make([]ColumnSummary, 0)
	for _, name := range t.NumericColumns() {
		col, _ := t.Column(name)
		if summary, ok := dp.ProfileColumn(col); ok {
			out = append(out, summary)
		}
	}
	return out
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

package aggregate

import (
	"fmt"
	"strings"

	"gotally/domain/core"
	"gotally/domain/dataset"
)

// Operation is one of sum, count or average
type Operation string

const (
	OpSum     Operation = "sum"
	OpCount   Operation = "count"
	OpAverage Operation = "average"
)

// AllOperations lists operations in display order
var AllOperations = []Operation{OpSum, OpCount, OpAverage}

// ParseOperation accepts the canonical names and a few aliases
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum", "sumatoria":
		return OpSum, nil
	case "count", "cantidad":
		return OpCount, nil
	case "average", "avg", "mean", "promedio":
		return OpAverage, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownOperation, s)
}

// Label returns the display name of the operation
func (o Operation) Label() string {
	switch o {
	case OpSum:
		return "Sum"
	case OpCount:
		return "Count"
	case OpAverage:
		return "Average"
	}
	return string(o)
}

// Request asks for one operation over one field
type Request struct {
	Field string    `json:"field"`
	Op    Operation `json:"op"`
}

// Card is a computed scalar ready for display.
// Error is set instead of Value when the metric could not be computed.
type Card struct {
	Label   string    `json:"label"`
	Field   string    `json:"field"`
	Op      Operation `json:"op"`
	Value   int64     `json:"value"`
	Display string    `json:"display"`
	Error   string    `json:"error,omitempty"`
}

// Failed reports whether the card carries an error
func (c Card) Failed() bool {
	return c.Error != ""
}

// GroupRow holds the results for one group key
type GroupRow struct {
	Key     dataset.Value        `json:"key"`
	Values  map[Operation]int64  `json:"values"`
	Display map[Operation]string `json:"display"`
}

// GroupTable is the grouped aggregation result, ordered by group key
type GroupTable struct {
	GroupField   string      `json:"group_field"`
	NumericField string      `json:"numeric_field"`
	Operations   []Operation `json:"operations"`
	Rows         []GroupRow  `json:"rows"`
}

// Lookup returns the row for a key
func (g *GroupTable) Lookup(key dataset.Value) (GroupRow, bool) {
	for _, row := range g.Rows {
		if row.Key.Equal(key) {
			return row, true
		}
	}
	return GroupRow{}, false
}

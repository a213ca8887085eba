package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind defines the storage kind of a cell
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// String returns the kind name used in JSON and logs
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single typed cell: numeric, text, or missing
type Value struct {
	Kind Kind
	Num  float64
	Text string
}

// Number creates a numeric value. NaN and infinities become missing.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value{Kind: KindNumber, Num: f}
}

// Text creates a text value
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Missing creates a missing value
func Missing() Value {
	return Value{Kind: KindMissing}
}

// IsMissing returns true for empty cells
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// IsNumeric returns true if the value holds a number
func (v Value) IsNumeric() bool {
	return v.Kind == KindNumber
}

// IsText returns true if the value holds text
func (v Value) IsText() bool {
	return v.Kind == KindText
}

// Float returns the numeric value and whether it is numeric
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// Equal reports whether two cells hold the same value.
// Missing equals missing, matching membership tests on loaded sheets.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == other.Num
	case KindText:
		return v.Text == other.Text
	default:
		return true
	}
}

// Key returns a comparable key used for distinct-value and group lookups
func (v Value) Key() string {
	switch v.Kind {
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return "s:" + v.Text
	default:
		return "missing"
	}
}

// String returns the display representation of the cell
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Text
	default:
		return ""
	}
}

// Less orders values: numbers first (numerically), then text (lexically), then missing
func (v Value) Less(other Value) bool {
	if v.Kind != other.Kind {
		return kindRank(v.Kind) < kindRank(other.Kind)
	}
	switch v.Kind {
	case KindNumber:
		return v.Num < other.Num
	case KindText:
		return v.Text < other.Text
	default:
		return false
	}
}

func kindRank(k Kind) int {
	switch k {
	case KindNumber:
		return 0
	case KindText:
		return 1
	default:
		return 2
	}
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and missing as null
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindText:
		return json.Marshal(v.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the representation produced by MarshalJSON
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Missing()
	case float64:
		*v = Number(t)
	case string:
		*v = Text(t)
	case bool:
		*v = Text(strconv.FormatBool(t))
	default:
		return fmt.Errorf("unsupported cell value %s", string(data))
	}
	return nil
}

package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gotally/domain/dataset"
)

// Policy names accepted by ByName and the COERCION_POLICY setting
const (
	PolicyZeroFill = "zero_fill"
	PolicyLenient  = "lenient"
)

// Policy converts a cell into the number used for aggregation.
// Implementations never fail: cells they cannot read become a fill value.
type Policy interface {
	Name() string
	Coerce(v dataset.Value) float64
}

// Parser reads a number from text
type Parser func(s string) (float64, bool)

// ZeroFillPolicy keeps numbers, parses text with its Parser, and maps
// everything unparseable (including missing cells) to zero
type ZeroFillPolicy struct {
	name  string
	parse Parser
}

// NewZeroFill returns the default policy: plain decimal parsing, else zero
func NewZeroFill() *ZeroFillPolicy {
	return &ZeroFillPolicy{name: PolicyZeroFill, parse: ParseStrict}
}

// NewLenient returns a zero-fill policy that also reads currency symbols,
// thousands separators, European decimals and parenthesised negatives
func NewLenient() *ZeroFillPolicy {
	return &ZeroFillPolicy{name: PolicyLenient, parse: ParseLenient}
}

// ByName resolves a configured policy name
func ByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyZeroFill:
		return NewZeroFill(), nil
	case PolicyLenient:
		return NewLenient(), nil
	}
	return nil, fmt.Errorf("unknown coercion policy %q", name)
}

// Name returns the policy name
func (p *ZeroFillPolicy) Name() string {
	return p.name
}

// Coerce converts one cell
func (p *ZeroFillPolicy) Coerce(v dataset.Value) float64 {
	switch v.Kind {
	case dataset.KindNumber:
		return v.Num
	case dataset.KindText:
		if f, ok := p.parse(v.Text); ok {
			return f
		}
	}
	return 0
}

// CoerceColumn applies a policy to every cell, producing an all-numeric column
func CoerceColumn(p Policy, values []dataset.Value) []dataset.Value {
	out := make([]dataset.Value, len(values))
	for i, v := range values {
		out[i] = dataset.Number(p.Coerce(v))
	}
	return out
}

// ParseStrict parses a plain decimal or scientific number after trimming whitespace
func ParseStrict(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// ParseLenient attempts to parse as numeric with international formats:
// parentheses for negatives, European decimals, currency symbols
func ParseLenient(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the tail after the last comma is short and all digits
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 3 && isDigits(afterComma) && commaIdx > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		// A lone comma followed by exactly three digits is a thousands separator
		commaIdx := strings.LastIndex(cleanVal, ",")
		if strings.Count(cleanVal, ",") > 1 || (len(cleanVal)-commaIdx-1 == 3 && isDigits(cleanVal[commaIdx+1:])) {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	return ParseStrict(cleanVal)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CellValue types a raw spreadsheet string: empty is missing, a plain number is
// numeric, anything else is text
func CellValue(raw string) dataset.Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return dataset.Missing()
	}
	if f, ok := ParseStrict(trimmed); ok {
		return dataset.Number(f)
	}
	return dataset.Text(trimmed)
}

// Package format renders computed numbers for display.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Int renders an integer with thousands separators, e.g. 1234567 -> "1,234,567"
func Int(v int64) string {
	return printer.Sprintf("%d", v)
}

// Float renders a float with thousands separators and a fixed number of decimals
func Float(v float64, decimals int) string {
	return printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
}

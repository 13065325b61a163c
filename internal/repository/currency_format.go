package repository

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders amount using the currency's decimal places, separators and
// symbol placement, e.g. "$1,234.50" or "1.234,50 €".
func (c *Currency) Format(amount decimal.Decimal) string {
	places := c.DecimalPlaces
	text := amount.Abs().StringFixed(places)

	intPart, fracPart, _ := strings.Cut(text, ".")
	number := groupThousands(intPart, c.ThousandsSeparator)
	if places > 0 {
		number += orDefault(c.DecimalSeparator, ".") + fracPart
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	switch {
	case c.Symbol == "":
		return sign + number
	case c.SymbolPosition == SymbolAfter:
		return sign + number + " " + c.Symbol
	default:
		return sign + c.Symbol + number
	}
}

func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

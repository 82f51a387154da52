// Package format provides string formatting helpers for currency,
// percentage, and ratio values shown on budget schedules.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	formatted := formatPositiveCurrency(math.Abs(amount))
	return sign + formatted
}

// Accounting returns a currency string with negatives in parentheses,
// the convention used on financial statements (e.g., "(1,234.56)").
func Accounting(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "(" + formatted + ")"
	}
	return formatted
}

// Percent renders a percentage value (already scaled to 0-100) with one
// decimal place, e.g. "12.5%".
func Percent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// Ratio renders a ratio with two decimal places; infinite ratios (a zero
// denominator upstream) render as "N/A".
func Ratio(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", value)
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}

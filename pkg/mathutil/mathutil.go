// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/master-budget/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used at presentation boundaries and for logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within currency tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// SafeDivide divides num by den, returning 0 when den is 0.
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Compound applies a per-period rate for the given number of elapsed
// periods, i.e. base * (1+rate)^periods.
func Compound(base, rate float64, periods int) float64 {
	if rate == 0 || periods == 0 {
		return base
	}
	return base * math.Pow(1+rate, float64(periods))
}

// RoundUpToMultiple rounds value up to the nearest positive multiple.
// A multiple of 0 or less leaves the value unchanged.
func RoundUpToMultiple(value, multiple float64) float64 {
	if multiple <= 0 || value <= 0 {
		return value
	}
	return math.Ceil(value/multiple) * multiple
}

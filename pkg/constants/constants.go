// Package constants provides shared constants for the master-budget application.
package constants

// Financial constants
const (
	// QuartersPerYear is the number of fiscal quarters in a budget year
	QuartersPerYear = 4

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// DaysPerYear is used for days-inventory-outstanding calculations
	DaysPerYear = 365

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DefaultOvertimeMultiplier is the premium applied to overtime hours
	// when the configuration does not supply one
	DefaultOvertimeMultiplier = 1.5
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent);
	// the balance-sheet equality check uses it as well
	CurrencyTolerance = 0.01

	// SeriesTolerance is the tolerance for quarterly-series additivity
	// (yearly vs. sum of quarters)
	SeriesTolerance = 1e-6

	// FractionSumTolerance is the tolerance when percentages must sum to 1
	FractionSumTolerance = 0.001

	// LowTurnoverThreshold flags a material as critical when its yearly
	// inventory turnover falls below this value
	LowTurnoverThreshold = 4.0

	// HighDaysInventoryThreshold flags a material as critical when days
	// inventory outstanding exceeds this value
	HighDaysInventoryThreshold = 90.0

	// QuarterSwingWarningRatio triggers a sales-forecast warning when a
	// quarter-over-quarter change exceeds this fraction
	QuarterSwingWarningRatio = 0.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML
	// assumption files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

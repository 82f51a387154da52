package validation

import (
	"fmt"
	"math"

	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/quarterly"
)

// Severity distinguishes blocking errors from advisory warnings.
type Severity int

const (
	// SeverityError marks a finding that must prevent calculation.
	SeverityError Severity = iota
	// SeverityWarning marks an advisory finding; calculation proceeds.
	SeverityWarning
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Finding is one validation message with its severity.
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Errorf builds an error-severity finding.
func Errorf(format string, args ...interface{}) Finding {
	return Finding{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// Warningf builds a warning-severity finding.
func Warningf(format string, args ...interface{}) Finding {
	return Finding{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Result is an ordered list of findings from one validator.
type Result []Finding

// Errors returns only the blocking findings.
func (r Result) Errors() []Finding {
	var out []Finding
	for _, f := range r {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns only the advisory findings.
func (r Result) Warnings() []Finding {
	var out []Finding
	for _, f := range r {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any blocking finding is present.
func (r Result) HasErrors() bool {
	for _, f := range r {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Messages returns every finding message prefixed with its severity,
// preserving order.
func (r Result) Messages() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return out
}

// RequireNonNegative appends an error when val is negative.
func (r *Result) RequireNonNegative(field string, val float64) {
	if val < 0 {
		*r = append(*r, Errorf("%s cannot be negative (got %v)", field, val))
	}
}

// RequirePositive appends an error when val is zero or negative.
func (r *Result) RequirePositive(field string, val float64) {
	if val <= 0 {
		*r = append(*r, Errorf("%s must be greater than zero (got %v)", field, val))
	}
}

// RequireFraction appends an error when val falls outside [0, 1].
func (r *Result) RequireFraction(field string, val float64) {
	if val < 0 || val > 1 {
		*r = append(*r, Errorf("%s must be between 0 and 1 (got %v)", field, val))
	}
}

// RequireFractionSum appends an error when the values do not sum to 1
// within tolerance. Use for paired percentage splits.
func (r *Result) RequireFractionSum(label string, vals ...float64) {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	if math.Abs(sum-1) > constants.FractionSumTolerance {
		*r = append(*r, Errorf("%s must sum to 1 (got %v)", label, sum))
	}
}

// RequireSeriesNonNegative appends an error when any quarter of the series
// is negative.
func (r *Result) RequireSeriesNonNegative(field string, s quarterly.Series) {
	if s.HasNegative() {
		*r = append(*r, Errorf("%s contains a negative quarter", field))
	}
}

// WarnIfZero appends a warning when val is zero.
func (r *Result) WarnIfZero(field string, val float64) {
	if val == 0 {
		*r = append(*r, Warningf("%s is zero - verify this is intentional", field))
	}
}

// Merge appends every finding from other.
func (r *Result) Merge(other Result) {
	*r = append(*r, other...)
}

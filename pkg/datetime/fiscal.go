// Package datetime provides fiscal-calendar utility functions.
package datetime

import (
	"fmt"
	"time"
)

// FiscalStartLayout is the format expected for the fiscal-year start in
// config files, e.g. "2026-01".
const FiscalStartLayout = "2006-01"

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// FiscalYearLabel derives the "FY2026" style label from a fiscal-year
// start date. An empty start falls back to the supplied calendar year.
func FiscalYearLabel(fiscalStart string, fallbackYear int) (string, error) {
	if fiscalStart == "" {
		return fmt.Sprintf("FY%d", fallbackYear), nil
	}
	t, err := time.Parse(FiscalStartLayout, fiscalStart)
	if err != nil {
		return "", fmt.Errorf("invalid fiscal year start %q: %w", fiscalStart, err)
	}
	return fmt.Sprintf("FY%d", t.Year()), nil
}

// QuarterLabels returns the four quarter display labels for a fiscal year
// starting at fiscalStart. When the fiscal year starts in January the
// labels are plain "Q1".."Q4"; otherwise each label carries the months it
// covers, e.g. "Q1 (Jul-Sep)".
func QuarterLabels(fiscalStart string) ([4]string, error) {
	labels := [4]string{"Q1", "Q2", "Q3", "Q4"}
	if fiscalStart == "" {
		return labels, nil
	}
	start, err := time.Parse(FiscalStartLayout, fiscalStart)
	if err != nil {
		return labels, fmt.Errorf("invalid fiscal year start %q: %w", fiscalStart, err)
	}
	if start.Month() == time.January {
		return labels, nil
	}
	for q := 0; q < 4; q++ {
		first := start.AddDate(0, q*3, 0)
		last := start.AddDate(0, q*3+2, 0)
		labels[q] = fmt.Sprintf("Q%d (%s-%s)", q+1, first.Format("Jan"), last.Format("Jan"))
	}
	return labels, nil
}

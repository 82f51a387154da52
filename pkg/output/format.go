// Package output provides utilities for formatting and displaying budget
// schedules.
package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/master-budget/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Style tags how a row should be rendered.
type Style int

const (
	// StyleNormal is a plain line item.
	StyleNormal Style = iota
	// StyleSection is a heading with no values.
	StyleSection
	// StyleSubtotal underlines a running total.
	StyleSubtotal
	// StyleTotal marks a terminal total.
	StyleTotal
	// StyleBlank is a spacer row.
	StyleBlank
)

// Row is one presentation line: a label plus up to five numeric columns.
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values,omitempty"`
	Style  Style     `json:"style,omitempty"`
}

// SeriesRow builds a row from quarter values plus yearly.
func SeriesRow(label string, q1, q2, q3, q4, yearly float64) Row {
	return Row{Label: label, Values: []float64{q1, q2, q3, q4, yearly}}
}

// AmountRow builds a single-value row.
func AmountRow(label string, amount float64) Row {
	return Row{Label: label, Values: []float64{amount}}
}

// AmountPercentRow builds a row with an amount and a companion percentage
// column (already scaled to 0-100).
func AmountPercentRow(label string, amount, percent float64) Row {
	return Row{Label: label, Values: []float64{amount, percent}}
}

// SectionRow builds a heading row.
func SectionRow(label string) Row {
	return Row{Label: label, Style: StyleSection}
}

// BlankRow builds a spacer row.
func BlankRow() Row {
	return Row{Style: StyleBlank}
}

// Styled returns a copy of the row with the given style.
func (r Row) Styled(s Style) Row {
	r.Style = s
	return r
}

// Table is one schedule's presentation: numbered title, column headers,
// and rows.
type Table struct {
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Metadata is the header block attached to every export.
type Metadata struct {
	Company    string
	Product    string
	FiscalYear string
}

// QuarterColumns is the standard five-column header set.
var QuarterColumns = []string{"Q1", "Q2", "Q3", "Q4", "Yearly"}

// PrettyFormat prints human-readable tables with thousands separators.
func PrettyFormat(meta Metadata, tables []Table) {
	p := message.NewPrinter(language.English)
	for _, table := range tables {
		fmt.Printf("--- Schedule %d: %s (%s, %s) ---\n", table.Number, table.Title, meta.Company, meta.FiscalYear)
		width := labelWidth(table.Rows)
		header := fmt.Sprintf("%-*s", width, "Item")
		for _, col := range table.Columns {
			header += fmt.Sprintf(" | %14s", col)
		}
		fmt.Println(header)
		fmt.Println(strings.Repeat("_", len(header)))
		for _, row := range table.Rows {
			switch row.Style {
			case StyleBlank:
				fmt.Println()
			case StyleSection:
				fmt.Println(row.Label)
			default:
				line := p.Sprintf("%-*s", width, row.Label)
				for _, v := range row.Values {
					line += p.Sprintf(" | %14.2f", mathutil.Round(v))
				}
				fmt.Println(line)
			}
		}
		fmt.Println()
	}
}

// CSV renders one table in comma-separated form: a metadata header block,
// then one quoted-label row per line item with numeric fields stripped of
// thousands separators.
func CSV(meta Metadata, table Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", meta.Company)
	fmt.Fprintf(&b, "Schedule %d: %s\n", table.Number, table.Title)
	if meta.Product != "" {
		fmt.Fprintf(&b, "Product: %s\n", meta.Product)
	}
	fmt.Fprintf(&b, "Fiscal Year: %s\n\n", meta.FiscalYear)

	b.WriteString("Item")
	for _, col := range table.Columns {
		fmt.Fprintf(&b, ",%s", col)
	}
	b.WriteString("\n")

	for _, row := range table.Rows {
		if row.Style == StyleBlank {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "%q", row.Label)
		for _, v := range row.Values {
			fmt.Fprintf(&b, ",%.2f", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func labelWidth(rows []Row) int {
	width := len("Item")
	for _, row := range rows {
		if len(row.Label) > width {
			width = len(row.Label)
		}
	}
	return width
}

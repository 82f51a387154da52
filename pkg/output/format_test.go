package output

import (
	"strings"
	"testing"
)

func TestSeriesRow(t *testing.T) {
	row := SeriesRow("Sales Revenue", 550000, 673200, 858330, 758758.91, 2840288.91)
	if row.Label != "Sales Revenue" {
		t.Errorf("label = %q", row.Label)
	}
	if len(row.Values) != 5 {
		t.Fatalf("values = %v", row.Values)
	}
	if row.Values[4] != 2840288.91 {
		t.Errorf("yearly = %v", row.Values[4])
	}
}

func TestStyledCopies(t *testing.T) {
	base := AmountRow("Net Income", 100)
	total := base.Styled(StyleTotal)
	if base.Style != StyleNormal {
		t.Errorf("Styled must not mutate the receiver")
	}
	if total.Style != StyleTotal {
		t.Errorf("Styled copy has style %v", total.Style)
	}
}

func TestCSVHeaderBlock(t *testing.T) {
	meta := Metadata{Company: "ABC Manufacturing", Product: "Widget", FiscalYear: "FY2026"}
	table := Table{
		Number:  1,
		Title:   "Sales Budget",
		Columns: QuarterColumns,
		Rows: []Row{
			SeriesRow("Forecast Units", 11000, 13200, 16500, 14300, 55000),
			BlankRow(),
			SeriesRow("Sales Revenue", 550000, 673200, 858330, 758758.9, 2840288.9),
		},
	}

	csv := CSV(meta, table)
	lines := strings.Split(csv, "\n")

	if lines[0] != "ABC Manufacturing" {
		t.Errorf("company line = %q", lines[0])
	}
	if lines[1] != "Schedule 1: Sales Budget" {
		t.Errorf("schedule line = %q", lines[1])
	}
	if lines[2] != "Product: Widget" {
		t.Errorf("product line = %q", lines[2])
	}
	if lines[3] != "Fiscal Year: FY2026" {
		t.Errorf("fiscal year line = %q", lines[3])
	}
	if lines[4] != "" {
		t.Errorf("expected blank separator, got %q", lines[4])
	}
	if lines[5] != "Item,Q1,Q2,Q3,Q4,Yearly" {
		t.Errorf("header row = %q", lines[5])
	}
	if lines[6] != `"Forecast Units",11000.00,13200.00,16500.00,14300.00,55000.00` {
		t.Errorf("units row = %q", lines[6])
	}
	if lines[7] != "" {
		t.Errorf("blank row should stay blank, got %q", lines[7])
	}
	// No thousands separators in CSV numerics.
	if strings.Contains(csv, "550,000") {
		t.Errorf("CSV output must not contain thousands separators")
	}
}

func TestCSVOmitsEmptyProduct(t *testing.T) {
	meta := Metadata{Company: "ABC Manufacturing", FiscalYear: "FY2026"}
	csv := CSV(meta, Table{Number: 11, Title: "Budgeted Income Statement"})
	if strings.Contains(csv, "Product:") {
		t.Errorf("empty product must be omitted:\n%s", csv)
	}
}

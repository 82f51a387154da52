// Package schedule implements the thirteen master-budget schedules. Each
// schedule is a stateless calculator: Validate partitions findings into
// blocking errors and advisory warnings, Calculate is a pure function of
// its input plus typed upstream outputs, and every output knows how to
// present itself as tabular rows.
package schedule

import (
	"github.com/iwvelando/master-budget/pkg/datetime"
	"github.com/iwvelando/master-budget/pkg/output"
)

// CompanyInfo carries the identifying metadata attached to every exported
// schedule.
type CompanyInfo struct {
	Name            string
	Industry        string
	Product         string
	FiscalYearStart string // e.g. "2026-01"
	FiscalYear      int    // fallback when FiscalYearStart is empty
}

// Metadata converts company info into the export header block.
func (c CompanyInfo) Metadata() (output.Metadata, error) {
	label, err := datetime.FiscalYearLabel(c.FiscalYearStart, c.FiscalYear)
	if err != nil {
		return output.Metadata{}, err
	}
	return output.Metadata{
		Company:    c.Name,
		Product:    c.Product,
		FiscalYear: label,
	}, nil
}

// Schedule numbers, used in presentation and in missing-upstream errors.
const (
	NumberSales         = 1
	NumberProduction    = 2
	NumberMaterials     = 3
	NumberLabor         = 4
	NumberOverhead      = 5
	NumberSellingAdmin  = 6
	NumberReceipts      = 7
	NumberDisbursements = 8
	NumberCash          = 9
	NumberCOGS          = 10
	NumberIncome        = 11
	NumberCashFlow      = 12
	NumberBalance       = 13
)

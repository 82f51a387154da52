package schedule

import (
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// CashDisbursementsInput holds the payment assumptions and discretionary
// outflows for Schedule 8. The material payment split comes from the
// direct material budget, not from here.
type CashDisbursementsInput struct {
	BeginningAccountsPayable float64 // paid in full in Q1

	IncomeTaxPayments     quarterly.Series
	Dividends             quarterly.Series
	CapitalExpenditures   quarterly.Series
	LoanPrincipalPayments quarterly.Series
}

// CashDisbursementsOutput is the computed payments schedule.
type CashDisbursementsOutput struct {
	MaterialPayments     quarterly.Series // lagged purchases plus beginning payable
	LaborPayments        quarterly.Series // paid as incurred
	OverheadPayments     quarterly.Series // cash overhead only
	SellingAdminPayments quarterly.Series // cash expense only
	OperatingTotal       quarterly.Series

	IncomeTaxPayments     quarterly.Series
	Dividends             quarterly.Series
	CapitalExpenditures   quarterly.Series
	LoanPrincipalPayments quarterly.Series
	TotalDisbursements    quarterly.Series

	// EndingAccountsPayable is a balance series: the unpaid share of each
	// quarter's purchases, with Yearly repeating Q4.
	EndingAccountsPayable    quarterly.Series
	BeginningAccountsPayable float64
}

// CashDisbursementsBudget computes Schedule 8.
type CashDisbursementsBudget struct {
	logger *zap.Logger
}

// NewCashDisbursementsBudget creates a cash disbursements calculator.
func NewCashDisbursementsBudget(logger *zap.Logger) *CashDisbursementsBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashDisbursementsBudget{logger: logger}
}

// Validate checks the disbursement assumptions.
func (c *CashDisbursementsBudget) Validate(in CashDisbursementsInput, materials DirectMaterialOutput, labor DirectLaborOutput, overhead ManufacturingOverheadOutput, sga SellingAdminOutput) validation.Result {
	var r validation.Result

	r.RequireNonNegative("beginning accounts payable", in.BeginningAccountsPayable)
	r.RequireSeriesNonNegative("income tax payments", in.IncomeTaxPayments)
	r.RequireSeriesNonNegative("dividends", in.Dividends)
	r.RequireSeriesNonNegative("capital expenditures", in.CapitalExpenditures)
	r.RequireSeriesNonNegative("loan principal payments", in.LoanPrincipalPayments)

	if overhead.CashOverhead.HasNegative() {
		r = append(r, validation.Errorf(
			"cash overhead is negative in at least one quarter - non-cash items exceed total overhead"))
	}
	if sga.CashSGA.HasNegative() {
		r = append(r, validation.Errorf(
			"cash selling and admin expense is negative in at least one quarter"))
	}

	return r
}

// Calculate assembles quarterly cash payments from the upstream expense
// schedules plus the discretionary outflows.
func (c *CashDisbursementsBudget) Calculate(in CashDisbursementsInput, materials DirectMaterialOutput, labor DirectLaborOutput, overhead ManufacturingOverheadOutput, sga SellingAdminOutput) CashDisbursementsOutput {
	purchases := materials.TotalPurchaseCost
	same := materials.PaidSameQuarterPercent
	next := materials.PaidNextQuarterPercent

	// Purchases pay partly in-quarter, partly one quarter later; the
	// beginning payable clears in Q1.
	material := quarterly.New(
		purchases.Q1*same+in.BeginningAccountsPayable,
		purchases.Q2*same+purchases.Q1*next,
		purchases.Q3*same+purchases.Q2*next,
		purchases.Q4*same+purchases.Q3*next,
	)

	out := CashDisbursementsOutput{
		BeginningAccountsPayable: in.BeginningAccountsPayable,
		MaterialPayments:         material,
		LaborPayments:            labor.TotalCost,
		OverheadPayments:         overhead.CashOverhead,
		SellingAdminPayments:     sga.CashSGA,

		IncomeTaxPayments:     in.IncomeTaxPayments,
		Dividends:             in.Dividends,
		CapitalExpenditures:   in.CapitalExpenditures,
		LoanPrincipalPayments: in.LoanPrincipalPayments,
	}
	out.OperatingTotal = quarterly.Sum(
		out.MaterialPayments,
		out.LaborPayments,
		out.OverheadPayments,
		out.SellingAdminPayments,
	)
	out.TotalDisbursements = quarterly.Sum(
		out.OperatingTotal,
		in.IncomeTaxPayments,
		in.Dividends,
		in.CapitalExpenditures,
		in.LoanPrincipalPayments,
	)

	ending := purchases.Scale(1 - same)
	ending.Yearly = ending.Q4
	out.EndingAccountsPayable = ending

	c.logger.Debug("computed cash disbursements schedule",
		zap.String("op", "schedule.CashDisbursementsBudget.Calculate"),
		zap.Float64("yearlyDisbursements", out.TotalDisbursements.Yearly),
		zap.Float64("endingPayable", ending.Q4),
	)

	return out
}

// Table renders the cash disbursements schedule.
func (o CashDisbursementsOutput) Table() output.Table {
	rows := []output.Row{
		seriesRow("Direct Material Payments", o.MaterialPayments),
		seriesRow("Direct Labor Payments", o.LaborPayments),
		seriesRow("Manufacturing Overhead Payments", o.OverheadPayments),
		seriesRow("Selling and Administrative Payments", o.SellingAdminPayments),
		seriesRow("Operating Disbursements", o.OperatingTotal).Styled(output.StyleSubtotal),
		output.BlankRow(),
	}
	for _, line := range []struct {
		label string
		s     quarterly.Series
	}{
		{"Income Tax Payments", o.IncomeTaxPayments},
		{"Dividends", o.Dividends},
		{"Capital Expenditures", o.CapitalExpenditures},
		{"Loan Principal Payments", o.LoanPrincipalPayments},
	} {
		if !line.s.IsZero() {
			rows = append(rows, seriesRow(line.label, line.s))
		}
	}
	rows = append(rows,
		seriesRow("Total Cash Disbursements", o.TotalDisbursements).Styled(output.StyleTotal),
		output.BlankRow(),
		seriesRow("Ending Accounts Payable", o.EndingAccountsPayable),
	)
	return output.Table{
		Number:  NumberDisbursements,
		Title:   "Cash Disbursements Schedule",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

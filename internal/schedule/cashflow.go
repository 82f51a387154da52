package schedule

import (
	"math"

	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/format"
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// CashFlowQuality holds the year-level cash quality metrics. Coverage
// ratios are positive infinity when the covered outflow is zero.
type CashFlowQuality struct {
	FreeCashFlow             float64
	OperatingCashToNetIncome float64
	CapitalIntensity         float64 // capex / revenue
	DividendCoverage         float64
	DebtServiceCoverage      float64
	CashFlowAdequacy         float64 // operating / (capex + dividends + debt service)
}

// CashFlowStatementOutput is the budgeted statement of cash flows,
// presented both directly and indirectly. All amounts are year-level.
type CashFlowStatementOutput struct {
	// Direct method operating section.
	CollectionsFromCustomers float64
	PaymentsForMaterials     float64
	PaymentsForLabor         float64
	PaymentsForOverhead      float64
	PaymentsForSellingAdmin  float64
	PaymentsForTaxes         float64
	InterestPaidNet          float64 // interest paid less interest earned
	NetOperating             float64

	// Investing section.
	CapitalExpenditures  float64
	ShortTermInvestments float64 // net purchases of investment securities
	NetInvesting         float64

	// Financing section.
	ShortTermBorrowings   float64
	ShortTermRepayments   float64
	LoanProceeds          float64
	StockIssuance         float64
	LoanPrincipalPayments float64
	DividendsPaid         float64
	NetFinancing          float64

	NetChangeInCash float64
	BeginningCash   float64
	EndingCash      float64

	// Indirect method reconciliation of the operating section.
	NetIncome            float64
	Depreciation         float64
	BadDebtExpense       float64
	ReceivableWriteOffs  float64 // credit sales written off during the year
	ReceivableChange     float64 // increase shown negative
	InventoryChange      float64
	PayableChange        float64
	TaxAccrualChange     float64 // tax expense less tax paid
	InterestAccrualNet   float64 // accrued interest expense less income, net of cash settled
	IndirectNetOperating float64

	Quality CashFlowQuality
}

// CashFlowStatement computes Schedule 12.
type CashFlowStatement struct {
	logger *zap.Logger
}

// NewCashFlowStatement creates a cash flow statement calculator.
func NewCashFlowStatement(logger *zap.Logger) *CashFlowStatement {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashFlowStatement{logger: logger}
}

// Validate cross-checks the upstream schedules feeding the statement.
func (c *CashFlowStatement) Validate(receipts CashReceiptsOutput, disbursements CashDisbursementsOutput, cash CashBudgetOutput) validation.Result {
	var r validation.Result

	if !mathutil.WithinTolerance(cash.Receipts.Yearly, receipts.TotalReceipts.Yearly, constants.CurrencyTolerance) {
		r = append(r, validation.Errorf(
			"cash budget receipts do not match the cash receipts schedule"))
	}
	if !mathutil.WithinTolerance(cash.Disbursements.Yearly, disbursements.TotalDisbursements.Yearly, constants.CurrencyTolerance) {
		r = append(r, validation.Errorf(
			"cash budget disbursements do not match the cash disbursements schedule"))
	}

	return r
}

// Calculate assembles the statement of cash flows from the cash schedules
// and reconciles the operating section indirectly from net income.
func (c *CashFlowStatement) Calculate(sales SalesBudgetOutput, materials DirectMaterialOutput, sga SellingAdminOutput, overhead ManufacturingOverheadOutput, cogs COGSOutput, income IncomeStatementOutput, receipts CashReceiptsOutput, disbursements CashDisbursementsOutput, cash CashBudgetOutput) CashFlowStatementOutput {
	out := CashFlowStatementOutput{
		CollectionsFromCustomers: receipts.TotalReceipts.Yearly,
		PaymentsForMaterials:     disbursements.MaterialPayments.Yearly,
		PaymentsForLabor:         disbursements.LaborPayments.Yearly,
		PaymentsForOverhead:      disbursements.OverheadPayments.Yearly,
		PaymentsForSellingAdmin:  disbursements.SellingAdminPayments.Yearly,
		PaymentsForTaxes:         disbursements.IncomeTaxPayments.Yearly,
		InterestPaidNet:          cash.InterestPaid.Yearly - cash.InterestEarned.Yearly,

		CapitalExpenditures:  disbursements.CapitalExpenditures.Yearly,
		ShortTermInvestments: cash.Investments.Yearly,

		ShortTermBorrowings:   cash.Borrowings.Yearly,
		ShortTermRepayments:   cash.Repayments.Yearly,
		LoanProceeds:          cash.LoanProceeds.Yearly,
		StockIssuance:         cash.StockProceeds.Yearly,
		LoanPrincipalPayments: disbursements.LoanPrincipalPayments.Yearly,
		DividendsPaid:         disbursements.Dividends.Yearly,

		BeginningCash: cash.BeginningCash.Q1,
		EndingCash:    cash.EndingCash.Q4,
	}

	out.NetOperating = out.CollectionsFromCustomers -
		out.PaymentsForMaterials - out.PaymentsForLabor -
		out.PaymentsForOverhead - out.PaymentsForSellingAdmin -
		out.PaymentsForTaxes - out.InterestPaidNet
	out.NetInvesting = -out.CapitalExpenditures - out.ShortTermInvestments
	out.NetFinancing = out.ShortTermBorrowings - out.ShortTermRepayments +
		out.LoanProceeds + out.StockIssuance -
		out.LoanPrincipalPayments - out.DividendsPaid
	out.NetChangeInCash = out.NetOperating + out.NetInvesting + out.NetFinancing

	c.reconcileIndirect(&out, materials, sga, overhead, cogs, income, receipts, disbursements)
	out.Quality = c.quality(out, income)

	c.logger.Debug("computed cash flow statement",
		zap.String("op", "schedule.CashFlowStatement.Calculate"),
		zap.Float64("netOperating", out.NetOperating),
		zap.Float64("netChangeInCash", out.NetChangeInCash),
	)

	return out
}

// reconcileIndirect rebuilds the operating section from net income and the
// working capital movements.
func (c *CashFlowStatement) reconcileIndirect(out *CashFlowStatementOutput, materials DirectMaterialOutput, sga SellingAdminOutput, overhead ManufacturingOverheadOutput, cogs COGSOutput, income IncomeStatementOutput, receipts CashReceiptsOutput, disbursements CashDisbursementsOutput) {
	out.NetIncome = income.NetIncome
	out.Depreciation = overhead.Depreciation.Yearly + sga.Depreciation.Yearly
	out.BadDebtExpense = sga.BadDebt.Yearly

	// Write-offs come from the collections schedule, not the bad debt
	// accrual: they are the credit sales that actually failed to collect.
	out.ReceivableWriteOffs = receipts.WriteOffs.Yearly

	beginningAR := receipts.BeginningARCollected.Q1
	out.ReceivableChange = receipts.EndingAccountsReceivable.Q4 - beginningAR

	rmChange := materials.RawMaterialInventoryValue.Q4 - materials.BeginningInventoryValue
	wipChange := cogs.EndingWIPValue - cogs.BeginningWIPValue
	fgChange := cogs.EndingFinishedGoodsValue - cogs.BeginningFinishedGoodsValue
	out.InventoryChange = rmChange + wipChange + fgChange

	out.PayableChange = disbursements.EndingAccountsPayable.Q4 - disbursements.BeginningAccountsPayable
	out.TaxAccrualChange = income.TaxExpense - disbursements.IncomeTaxPayments.Yearly

	// Interest accrued on the income statement but never settled in cash
	// stays in operating cash under the indirect method.
	out.InterestAccrualNet = income.InterestExpense - income.InterestIncome - out.InterestPaidNet

	out.IndirectNetOperating = out.NetIncome + out.Depreciation + out.BadDebtExpense -
		out.ReceivableWriteOffs - out.ReceivableChange - out.InventoryChange +
		out.PayableChange + out.TaxAccrualChange + out.InterestAccrualNet
}

func (c *CashFlowStatement) quality(out CashFlowStatementOutput, income IncomeStatementOutput) CashFlowQuality {
	debtService := out.LoanPrincipalPayments + out.ShortTermRepayments
	return CashFlowQuality{
		FreeCashFlow:             out.NetOperating - out.CapitalExpenditures,
		OperatingCashToNetIncome: coverage(out.NetOperating, income.NetIncome),
		CapitalIntensity:         mathutil.SafeDivide(out.CapitalExpenditures, income.Revenue),
		DividendCoverage:         coverage(out.NetOperating, out.DividendsPaid),
		DebtServiceCoverage:      coverage(out.NetOperating, debtService),
		CashFlowAdequacy: coverage(out.NetOperating,
			out.CapitalExpenditures+out.DividendsPaid+debtService),
	}
}

// coverage divides with positive infinity on a zero denominator, so an
// unburdened ratio reads as unlimited coverage rather than zero.
func coverage(num, den float64) float64 {
	if den == 0 {
		return math.Inf(1)
	}
	return num / den
}

// Table renders the cash flow statement with the indirect reconciliation
// appended.
func (o CashFlowStatementOutput) Table() output.Table {
	rows := []output.Row{
		output.SectionRow("Operating Activities"),
		output.AmountRow("Collections from Customers", o.CollectionsFromCustomers),
		output.AmountRow("Payments for Materials", -o.PaymentsForMaterials),
		output.AmountRow("Payments for Labor", -o.PaymentsForLabor),
		output.AmountRow("Payments for Overhead", -o.PaymentsForOverhead),
		output.AmountRow("Payments for Selling and Administrative", -o.PaymentsForSellingAdmin),
		output.AmountRow("Payments for Income Taxes", -o.PaymentsForTaxes),
		output.AmountRow("Interest Paid, Net", -o.InterestPaidNet),
		output.AmountRow("Net Cash from Operating Activities", o.NetOperating).Styled(output.StyleSubtotal),
		output.BlankRow(),
		output.SectionRow("Investing Activities"),
		output.AmountRow("Capital Expenditures", -o.CapitalExpenditures),
		output.AmountRow("Short-Term Investments, Net", -o.ShortTermInvestments),
		output.AmountRow("Net Cash from Investing Activities", o.NetInvesting).Styled(output.StyleSubtotal),
		output.BlankRow(),
		output.SectionRow("Financing Activities"),
		output.AmountRow("Short-Term Borrowings", o.ShortTermBorrowings),
		output.AmountRow("Short-Term Debt Repayments", -o.ShortTermRepayments),
		output.AmountRow("Loan Proceeds", o.LoanProceeds),
		output.AmountRow("Stock Issuance", o.StockIssuance),
		output.AmountRow("Loan Principal Payments", -o.LoanPrincipalPayments),
		output.AmountRow("Dividends Paid", -o.DividendsPaid),
		output.AmountRow("Net Cash from Financing Activities", o.NetFinancing).Styled(output.StyleSubtotal),
		output.BlankRow(),
		output.AmountRow("Net Change in Cash", o.NetChangeInCash).Styled(output.StyleTotal),
		output.AmountRow("Beginning Cash", o.BeginningCash),
		output.AmountRow("Ending Cash", o.EndingCash),
		output.BlankRow(),
		output.SectionRow("Reconciliation from Net Income"),
		output.AmountRow("Net Income", o.NetIncome),
		output.AmountRow("Depreciation", o.Depreciation),
		output.AmountRow("Bad Debt Expense", o.BadDebtExpense),
		output.AmountRow("Receivable Write-Offs", -o.ReceivableWriteOffs),
		output.AmountRow("Change in Receivables", -o.ReceivableChange),
		output.AmountRow("Change in Inventories", -o.InventoryChange),
		output.AmountRow("Change in Payables", o.PayableChange),
		output.AmountRow("Change in Taxes Payable", o.TaxAccrualChange),
		output.AmountRow("Interest Accrued, Net of Cash Settled", o.InterestAccrualNet),
		output.AmountRow("Net Cash from Operating (Indirect)", o.IndirectNetOperating).Styled(output.StyleSubtotal),
	}
	return output.Table{
		Number:  NumberCashFlow,
		Title:   "Budgeted Statement of Cash Flows",
		Columns: []string{"Amount"},
		Rows:    rows,
	}
}

// QualitySummary renders the cash quality metrics as display lines.
func (o CashFlowStatementOutput) QualitySummary() []string {
	q := o.Quality
	return []string{
		"Free Cash Flow: " + format.Currency(q.FreeCashFlow),
		"Operating Cash to Net Income: " + format.Ratio(q.OperatingCashToNetIncome),
		"Capital Intensity: " + format.Percent(q.CapitalIntensity*constants.PercentageMultiplier),
		"Dividend Coverage: " + format.Ratio(q.DividendCoverage),
		"Debt Service Coverage: " + format.Ratio(q.DebtServiceCoverage),
		"Cash Flow Adequacy: " + format.Ratio(q.CashFlowAdequacy),
	}
}

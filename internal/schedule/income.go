package schedule

import (
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// IncomeStatementInput holds the assumptions for Schedule 11.
// InterestExpense covers long-term obligations; short-term borrowing
// interest comes from the cash budget.
type IncomeStatementInput struct {
	TaxRate         float64
	InterestExpense float64
	InterestIncome  float64
}

// IncomeStatementOutput is the budgeted income statement. All amounts are
// year-level.
type IncomeStatementOutput struct {
	Revenue         float64
	CostOfGoodsSold float64
	GrossMargin     float64
	SellingAdmin    float64
	OperatingIncome float64
	InterestExpense float64
	InterestIncome  float64
	PretaxIncome    float64
	TaxExpense      float64
	NetIncome       float64

	GrossMarginPercent     float64
	OperatingMarginPercent float64
	NetMarginPercent       float64
}

// IncomeStatement computes Schedule 11.
type IncomeStatement struct {
	logger *zap.Logger
}

// NewIncomeStatement creates an income statement calculator.
func NewIncomeStatement(logger *zap.Logger) *IncomeStatement {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncomeStatement{logger: logger}
}

// Validate checks the income statement assumptions.
func (i *IncomeStatement) Validate(in IncomeStatementInput, sales SalesBudgetOutput, sga SellingAdminOutput, cogs COGSOutput) validation.Result {
	var r validation.Result

	r.RequireFraction("tax rate", in.TaxRate)
	r.RequireNonNegative("interest expense", in.InterestExpense)
	r.RequireNonNegative("interest income", in.InterestIncome)

	if cogs.CostOfGoodsSold > sales.Revenue.Yearly {
		r = append(r, validation.Warningf(
			"cost of goods sold exceeds revenue - the budget projects a negative gross margin"))
	}

	return r
}

// Calculate builds the income statement. cash may be nil when the cash
// budget has not been computed; with it, short-term borrowing interest and
// investment income fold into the statement.
func (i *IncomeStatement) Calculate(in IncomeStatementInput, sales SalesBudgetOutput, sga SellingAdminOutput, cogs COGSOutput, cash *CashBudgetOutput) IncomeStatementOutput {
	out := IncomeStatementOutput{
		Revenue:         sales.Revenue.Yearly,
		CostOfGoodsSold: cogs.CostOfGoodsSold,
		SellingAdmin:    sga.Total.Yearly,
		InterestExpense: in.InterestExpense,
		InterestIncome:  in.InterestIncome,
	}
	if cash != nil {
		out.InterestExpense += cash.InterestPaid.Yearly
		out.InterestIncome += cash.InterestEarned.Yearly
	}

	out.GrossMargin = out.Revenue - out.CostOfGoodsSold
	out.OperatingIncome = out.GrossMargin - out.SellingAdmin
	out.PretaxIncome = out.OperatingIncome - out.InterestExpense + out.InterestIncome

	// No tax benefit is budgeted for a pretax loss.
	if out.PretaxIncome > 0 {
		out.TaxExpense = out.PretaxIncome * in.TaxRate
	}
	out.NetIncome = out.PretaxIncome - out.TaxExpense

	out.GrossMarginPercent = mathutil.CalculatePercentage(out.GrossMargin, out.Revenue)
	out.OperatingMarginPercent = mathutil.CalculatePercentage(out.OperatingIncome, out.Revenue)
	out.NetMarginPercent = mathutil.CalculatePercentage(out.NetIncome, out.Revenue)

	i.logger.Debug("computed budgeted income statement",
		zap.String("op", "schedule.IncomeStatement.Calculate"),
		zap.Float64("netIncome", out.NetIncome),
	)

	return out
}

// Table renders the income statement with a percent-of-sales column.
func (o IncomeStatementOutput) Table() output.Table {
	pct := func(v float64) float64 { return mathutil.CalculatePercentage(v, o.Revenue) }
	rows := []output.Row{
		output.AmountPercentRow("Revenue", o.Revenue, pct(o.Revenue)),
		output.AmountPercentRow("Cost of Goods Sold", -o.CostOfGoodsSold, -pct(o.CostOfGoodsSold)),
		output.AmountPercentRow("Gross Margin", o.GrossMargin, o.GrossMarginPercent).Styled(output.StyleSubtotal),
		output.AmountPercentRow("Selling and Administrative", -o.SellingAdmin, -pct(o.SellingAdmin)),
		output.AmountPercentRow("Operating Income", o.OperatingIncome, o.OperatingMarginPercent).Styled(output.StyleSubtotal),
	}
	if o.InterestExpense != 0 {
		rows = append(rows, output.AmountPercentRow("Interest Expense", -o.InterestExpense, -pct(o.InterestExpense)))
	}
	if o.InterestIncome != 0 {
		rows = append(rows, output.AmountPercentRow("Interest Income", o.InterestIncome, pct(o.InterestIncome)))
	}
	rows = append(rows,
		output.AmountPercentRow("Pretax Income", o.PretaxIncome, pct(o.PretaxIncome)).Styled(output.StyleSubtotal),
		output.AmountPercentRow("Income Tax Expense", -o.TaxExpense, -pct(o.TaxExpense)),
		output.AmountPercentRow("Net Income", o.NetIncome, o.NetMarginPercent).Styled(output.StyleTotal),
	)
	return output.Table{
		Number:  NumberIncome,
		Title:   "Budgeted Income Statement",
		Columns: []string{"Amount", "% of Sales"},
		Rows:    rows,
	}
}

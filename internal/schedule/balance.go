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

// BalanceSheetInput holds the beginning balances for Schedule 13. Values
// the budget rolls forward itself (cash, receivables, payables,
// inventories) come from the upstream schedules instead.
type BalanceSheetInput struct {
	FixedAssetsGross          float64 // beginning, at cost
	AccumulatedDepreciation   float64 // beginning
	BeginningTaxesPayable     float64
	BeginningLongTermDebt     float64
	NewLongTermBorrowing      float64
	CommonStock               float64
	StockIssuance             float64
	BeginningRetainedEarnings float64
}

// BalanceRatios holds the year-end financial ratios. Return ratios use
// average balances across the year.
type BalanceRatios struct {
	WorkingCapital float64
	CurrentRatio   float64
	QuickRatio     float64
	DebtToEquity   float64
	DebtToAssets   float64
	ReturnOnAssets float64
	ReturnOnEquity float64
	AssetTurnover  float64
}

// BalanceSheetOutput is the budgeted year-end balance sheet.
type BalanceSheetOutput struct {
	Cash                   float64
	AccountsReceivable     float64
	ShortTermInvestments   float64
	RawMaterialsInventory  float64
	WIPInventory           float64
	FinishedGoodsInventory float64
	TotalCurrentAssets     float64

	FixedAssetsGross        float64
	AccumulatedDepreciation float64
	NetFixedAssets          float64
	TotalAssets             float64

	AccountsPayable         float64
	TaxesPayable            float64
	ShortTermDebt           float64
	TotalCurrentLiabilities float64
	LongTermDebt            float64
	TotalLiabilities        float64

	CommonStock      float64
	RetainedEarnings float64
	TotalEquity      float64

	TotalLiabilitiesAndEquity float64
	IsBalanced                bool
	BalanceDifference         float64

	Ratios BalanceRatios
}

// BalanceSheet computes Schedule 13.
type BalanceSheet struct {
	logger *zap.Logger
}

// NewBalanceSheet creates a balance sheet calculator.
func NewBalanceSheet(logger *zap.Logger) *BalanceSheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceSheet{logger: logger}
}

// Validate checks the beginning balances.
func (b *BalanceSheet) Validate(in BalanceSheetInput) validation.Result {
	var r validation.Result

	r.RequireNonNegative("fixed assets gross", in.FixedAssetsGross)
	r.RequireNonNegative("accumulated depreciation", in.AccumulatedDepreciation)
	r.RequireNonNegative("beginning taxes payable", in.BeginningTaxesPayable)
	r.RequireNonNegative("beginning long-term debt", in.BeginningLongTermDebt)
	r.RequireNonNegative("new long-term borrowing", in.NewLongTermBorrowing)
	r.RequireNonNegative("common stock", in.CommonStock)
	r.RequireNonNegative("stock issuance", in.StockIssuance)

	if in.AccumulatedDepreciation > in.FixedAssetsGross {
		r = append(r, validation.Errorf(
			"accumulated depreciation exceeds gross fixed assets"))
	}
	if in.BeginningRetainedEarnings < 0 {
		r = append(r, validation.Warningf(
			"beginning retained earnings are negative - the company carries an accumulated deficit"))
	}

	return r
}

// Calculate assembles the year-end balance sheet from the upstream
// schedules and checks that it articulates.
func (b *BalanceSheet) Calculate(in BalanceSheetInput, materials DirectMaterialOutput, sga SellingAdminOutput, overhead ManufacturingOverheadOutput, cogs COGSOutput, income IncomeStatementOutput, receipts CashReceiptsOutput, disbursements CashDisbursementsOutput, cash CashBudgetOutput) BalanceSheetOutput {
	out := BalanceSheetOutput{
		Cash:                   cash.EndingCash.Q4,
		AccountsReceivable:     receipts.EndingAccountsReceivable.Q4,
		ShortTermInvestments:   cash.InvestedBalance.Q4,
		RawMaterialsInventory:  materials.RawMaterialInventoryValue.Q4,
		WIPInventory:           cogs.EndingWIPValue,
		FinishedGoodsInventory: cogs.EndingFinishedGoodsValue,
	}
	out.TotalCurrentAssets = out.Cash + out.AccountsReceivable + out.ShortTermInvestments +
		out.RawMaterialsInventory + out.WIPInventory + out.FinishedGoodsInventory

	yearDepreciation := overhead.Depreciation.Yearly + sga.Depreciation.Yearly
	out.FixedAssetsGross = in.FixedAssetsGross + disbursements.CapitalExpenditures.Yearly
	out.AccumulatedDepreciation = in.AccumulatedDepreciation + yearDepreciation
	out.NetFixedAssets = out.FixedAssetsGross - out.AccumulatedDepreciation
	out.TotalAssets = out.TotalCurrentAssets + out.NetFixedAssets

	out.AccountsPayable = disbursements.EndingAccountsPayable.Q4
	out.TaxesPayable = mathutil.Max(0,
		in.BeginningTaxesPayable+income.TaxExpense-disbursements.IncomeTaxPayments.Yearly)
	out.ShortTermDebt = cash.OutstandingDebt.Q4
	out.TotalCurrentLiabilities = out.AccountsPayable + out.TaxesPayable + out.ShortTermDebt
	out.LongTermDebt = in.BeginningLongTermDebt + in.NewLongTermBorrowing -
		disbursements.LoanPrincipalPayments.Yearly
	out.TotalLiabilities = out.TotalCurrentLiabilities + out.LongTermDebt

	out.CommonStock = in.CommonStock + in.StockIssuance
	out.RetainedEarnings = in.BeginningRetainedEarnings + income.NetIncome -
		disbursements.Dividends.Yearly
	out.TotalEquity = out.CommonStock + out.RetainedEarnings

	out.TotalLiabilitiesAndEquity = out.TotalLiabilities + out.TotalEquity
	out.BalanceDifference = out.TotalAssets - out.TotalLiabilitiesAndEquity
	out.IsBalanced = math.Abs(out.BalanceDifference) < constants.CurrencyTolerance

	out.Ratios = b.ratios(in, out, income, materials, receipts, cash, cogs)

	b.logger.Debug("computed budgeted balance sheet",
		zap.String("op", "schedule.BalanceSheet.Calculate"),
		zap.Float64("totalAssets", out.TotalAssets),
		zap.Bool("isBalanced", out.IsBalanced),
	)

	return out
}

// ratios derives the year-end ratio set; return and turnover ratios
// average the beginning and ending balances.
func (b *BalanceSheet) ratios(in BalanceSheetInput, out BalanceSheetOutput, income IncomeStatementOutput, materials DirectMaterialOutput, receipts CashReceiptsOutput, cash CashBudgetOutput, cogs COGSOutput) BalanceRatios {
	beginningAssets := cash.BeginningCash.Q1 + receipts.BeginningARCollected.Q1 +
		materials.BeginningInventoryValue + cogs.BeginningWIPValue +
		cogs.BeginningFinishedGoodsValue +
		(in.FixedAssetsGross - in.AccumulatedDepreciation)
	beginningEquity := in.CommonStock + in.BeginningRetainedEarnings

	averageAssets := (beginningAssets + out.TotalAssets) / 2
	averageEquity := (beginningEquity + out.TotalEquity) / 2

	quick := out.Cash + out.ShortTermInvestments + out.AccountsReceivable
	return BalanceRatios{
		WorkingCapital: out.TotalCurrentAssets - out.TotalCurrentLiabilities,
		CurrentRatio:   mathutil.SafeDivide(out.TotalCurrentAssets, out.TotalCurrentLiabilities),
		QuickRatio:     mathutil.SafeDivide(quick, out.TotalCurrentLiabilities),
		DebtToEquity:   mathutil.SafeDivide(out.TotalLiabilities, out.TotalEquity),
		DebtToAssets:   mathutil.SafeDivide(out.TotalLiabilities, out.TotalAssets),
		ReturnOnAssets: mathutil.SafeDivide(income.NetIncome, averageAssets),
		ReturnOnEquity: mathutil.SafeDivide(income.NetIncome, averageEquity),
		AssetTurnover:  mathutil.SafeDivide(income.Revenue, averageAssets),
	}
}

// Table renders the balance sheet.
func (o BalanceSheetOutput) Table() output.Table {
	rows := []output.Row{
		output.SectionRow("Current Assets"),
		output.AmountRow("Cash", o.Cash),
		output.AmountRow("Accounts Receivable", o.AccountsReceivable),
	}
	if o.ShortTermInvestments != 0 {
		rows = append(rows, output.AmountRow("Short-Term Investments", o.ShortTermInvestments))
	}
	rows = append(rows,
		output.AmountRow("Raw Materials Inventory", o.RawMaterialsInventory),
		output.AmountRow("Work in Process Inventory", o.WIPInventory),
		output.AmountRow("Finished Goods Inventory", o.FinishedGoodsInventory),
		output.AmountRow("Total Current Assets", o.TotalCurrentAssets).Styled(output.StyleSubtotal),
		output.BlankRow(),
		output.AmountRow("Fixed Assets, at Cost", o.FixedAssetsGross),
		output.AmountRow("Accumulated Depreciation", -o.AccumulatedDepreciation),
		output.AmountRow("Net Fixed Assets", o.NetFixedAssets).Styled(output.StyleSubtotal),
		output.AmountRow("Total Assets", o.TotalAssets).Styled(output.StyleTotal),
		output.BlankRow(),
		output.SectionRow("Liabilities"),
		output.AmountRow("Accounts Payable", o.AccountsPayable),
		output.AmountRow("Income Taxes Payable", o.TaxesPayable),
	)
	if o.ShortTermDebt != 0 {
		rows = append(rows, output.AmountRow("Short-Term Debt", o.ShortTermDebt))
	}
	rows = append(rows,
		output.AmountRow("Total Current Liabilities", o.TotalCurrentLiabilities).Styled(output.StyleSubtotal),
		output.AmountRow("Long-Term Debt", o.LongTermDebt),
		output.AmountRow("Total Liabilities", o.TotalLiabilities).Styled(output.StyleSubtotal),
		output.BlankRow(),
		output.SectionRow("Equity"),
		output.AmountRow("Common Stock", o.CommonStock),
		output.AmountRow("Retained Earnings", o.RetainedEarnings),
		output.AmountRow("Total Equity", o.TotalEquity).Styled(output.StyleSubtotal),
		output.AmountRow("Total Liabilities and Equity", o.TotalLiabilitiesAndEquity).Styled(output.StyleTotal),
	)
	return output.Table{
		Number:  NumberBalance,
		Title:   "Budgeted Balance Sheet",
		Columns: []string{"Amount"},
		Rows:    rows,
	}
}

// RatioSummary renders the year-end ratio set as display lines.
func (o BalanceSheetOutput) RatioSummary() []string {
	r := o.Ratios
	return []string{
		"Working Capital: " + format.Currency(r.WorkingCapital),
		"Current Ratio: " + format.Ratio(r.CurrentRatio),
		"Quick Ratio: " + format.Ratio(r.QuickRatio),
		"Debt to Equity: " + format.Ratio(r.DebtToEquity),
		"Debt to Assets: " + format.Percent(r.DebtToAssets*constants.PercentageMultiplier),
		"Return on Assets: " + format.Percent(r.ReturnOnAssets*constants.PercentageMultiplier),
		"Return on Equity: " + format.Percent(r.ReturnOnEquity*constants.PercentageMultiplier),
		"Asset Turnover: " + format.Ratio(r.AssetTurnover),
	}
}

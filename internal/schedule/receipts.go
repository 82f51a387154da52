package schedule

import (
	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// CashReceiptsInput holds the collection assumptions for Schedule 7.
type CashReceiptsInput struct {
	CollectedSameQuarterPercent float64
	CollectedNextQuarterPercent float64
	BeginningAccountsReceivable float64 // collected in full in Q1
}

// CashReceiptsOutput is the computed collections schedule.
type CashReceiptsOutput struct {
	CashSales              quarterly.Series // collected immediately
	CollectionsSameQuarter quarterly.Series
	CollectionsNextQuarter quarterly.Series // prior quarter's credit sales
	BeginningARCollected   quarterly.Series // Q1 only
	TotalReceipts          quarterly.Series

	// EndingAccountsReceivable is a balance series: each quarter holds the
	// receivable carried out of that quarter and Yearly repeats Q4.
	EndingAccountsReceivable quarterly.Series
	UncollectiblePercent     float64 // fraction of credit sales never collected

	// WriteOffs is the uncollectible residual of each quarter's credit
	// sales, written off the quarter after the sale when the lagged
	// collection falls short. Q4's residual stays in ending receivables.
	WriteOffs quarterly.Series
}

// CashReceiptsBudget computes Schedule 7.
type CashReceiptsBudget struct {
	logger *zap.Logger
}

// NewCashReceiptsBudget creates a cash receipts calculator.
func NewCashReceiptsBudget(logger *zap.Logger) *CashReceiptsBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashReceiptsBudget{logger: logger}
}

// Validate checks the collection assumptions.
func (c *CashReceiptsBudget) Validate(in CashReceiptsInput, sales SalesBudgetOutput) validation.Result {
	var r validation.Result

	r.RequireFraction("collected same quarter percent", in.CollectedSameQuarterPercent)
	r.RequireFraction("collected next quarter percent", in.CollectedNextQuarterPercent)
	r.RequireNonNegative("beginning accounts receivable", in.BeginningAccountsReceivable)

	sum := in.CollectedSameQuarterPercent + in.CollectedNextQuarterPercent
	if sum > 1+constants.FractionSumTolerance {
		r = append(r, validation.Errorf(
			"collection percentages sum to %v - cannot collect more than 100%% of credit sales", sum))
		return r
	}

	uncollectible := 1 - sum
	if uncollectible > 0.05 {
		r = append(r, validation.Warningf(
			"%.1f%% of credit sales are never collected - verify the collection split",
			uncollectible*constants.PercentageMultiplier))
	}
	if in.CollectedSameQuarterPercent < 0.5 {
		r = append(r, validation.Warningf(
			"less than half of credit sales collect in the quarter of sale - receivables will build"))
	}

	return r
}

// Calculate computes quarterly cash collections from the sales budget.
func (c *CashReceiptsBudget) Calculate(in CashReceiptsInput, sales SalesBudgetOutput) CashReceiptsOutput {
	credit := sales.CreditSales

	out := CashReceiptsOutput{
		CashSales:              sales.CashSales,
		CollectionsSameQuarter: credit.Scale(in.CollectedSameQuarterPercent),
		UncollectiblePercent:   1 - in.CollectedSameQuarterPercent - in.CollectedNextQuarterPercent,
	}

	// Next-quarter collections lag the credit sales by one quarter; the
	// prior year's Q4 tail is the beginning receivable, collected in Q1.
	out.CollectionsNextQuarter = quarterly.New(
		0,
		credit.Q1*in.CollectedNextQuarterPercent,
		credit.Q2*in.CollectedNextQuarterPercent,
		credit.Q3*in.CollectedNextQuarterPercent,
	)
	out.BeginningARCollected = quarterly.New(in.BeginningAccountsReceivable, 0, 0, 0)

	out.TotalReceipts = quarterly.Sum(
		out.CashSales,
		out.CollectionsSameQuarter,
		out.CollectionsNextQuarter,
		out.BeginningARCollected,
	)

	// The receivable carried out of each quarter is the uncollected share
	// of that quarter's credit sales.
	carry := 1 - in.CollectedSameQuarterPercent
	ending := credit.Scale(carry)
	ending.Yearly = ending.Q4
	out.EndingAccountsReceivable = ending

	writeOff := mathutil.Max(0, out.UncollectiblePercent)
	out.WriteOffs = quarterly.New(
		0,
		credit.Q1*writeOff,
		credit.Q2*writeOff,
		credit.Q3*writeOff,
	)

	c.logger.Debug("computed cash receipts schedule",
		zap.String("op", "schedule.CashReceiptsBudget.Calculate"),
		zap.Float64("yearlyReceipts", out.TotalReceipts.Yearly),
		zap.Float64("endingReceivable", ending.Q4),
	)

	return out
}

// Table renders the cash receipts schedule.
func (o CashReceiptsOutput) Table() output.Table {
	rows := []output.Row{}
	if !o.CashSales.IsZero() {
		rows = append(rows, seriesRow("Cash Sales", o.CashSales))
	}
	rows = append(rows,
		seriesRow("Credit Sales Collected Same Quarter", o.CollectionsSameQuarter),
		seriesRow("Credit Sales Collected Next Quarter", o.CollectionsNextQuarter),
	)
	if !o.BeginningARCollected.IsZero() {
		rows = append(rows, seriesRow("Beginning Receivables Collected", o.BeginningARCollected))
	}
	rows = append(rows,
		seriesRow("Total Cash Receipts", o.TotalReceipts).Styled(output.StyleTotal),
		output.BlankRow(),
		seriesRow("Ending Accounts Receivable", o.EndingAccountsReceivable),
	)
	if !o.WriteOffs.IsZero() {
		rows = append(rows, seriesRow("Receivable Write-Offs", o.WriteOffs))
	}
	return output.Table{
		Number:  NumberReceipts,
		Title:   "Cash Receipts Schedule",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

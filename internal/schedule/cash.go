package schedule

import (
	"github.com/iwvelando/master-budget/pkg/financing"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// CashBudgetInput holds the cash position and financing policy for
// Schedule 9. LoanProceeds and StockIssuance are planned financing
// inflows; they raise the cash balance before the borrowing policy runs.
type CashBudgetInput struct {
	BeginningCash          float64
	MinimumCash            float64
	BorrowingAnnualRate    float64
	InvestmentAnnualRate   float64
	InvestSurplus          bool
	SurplusInvestThreshold float64

	LoanProceeds  quarterly.Series // new long-term borrowings received
	StockIssuance quarterly.Series // proceeds from issuing stock
}

// CashBudgetOutput is the computed cash budget with financing activity.
type CashBudgetOutput struct {
	BeginningCash quarterly.Series // balance series; Q1 holds the opening balance
	Receipts      quarterly.Series
	Disbursements quarterly.Series
	NetCashFlow   quarterly.Series // receipts less disbursements, before financing

	LoanProceeds  quarterly.Series
	StockProceeds quarterly.Series

	Borrowings     quarterly.Series
	Repayments     quarterly.Series
	Investments    quarterly.Series // negative quarters are liquidations
	InterestPaid   quarterly.Series
	InterestEarned quarterly.Series

	// Balance series: per-quarter closing positions, Yearly repeats Q4.
	EndingCash      quarterly.Series
	OutstandingDebt quarterly.Series
	InvestedBalance quarterly.Series

	// OperatingCashFlow mirrors NetCashFlow adjusted for interest;
	// FreeCashFlow subtracts capital expenditures.
	OperatingCashFlow quarterly.Series
	FreeCashFlow      quarterly.Series
	MinimumCash       float64
}

// CashBudget computes Schedule 9.
type CashBudget struct {
	logger *zap.Logger
}

// NewCashBudget creates a cash budget calculator.
func NewCashBudget(logger *zap.Logger) *CashBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashBudget{logger: logger}
}

// Validate checks the cash position and financing policy.
func (c *CashBudget) Validate(in CashBudgetInput, receipts CashReceiptsOutput, disbursements CashDisbursementsOutput) validation.Result {
	var r validation.Result

	r.RequireNonNegative("beginning cash", in.BeginningCash)
	r.RequireNonNegative("minimum cash balance", in.MinimumCash)
	r.RequireFraction("borrowing annual rate", in.BorrowingAnnualRate)
	r.RequireFraction("investment annual rate", in.InvestmentAnnualRate)
	r.RequireNonNegative("surplus investment threshold", in.SurplusInvestThreshold)
	r.RequireSeriesNonNegative("loan proceeds", in.LoanProceeds)
	r.RequireSeriesNonNegative("stock issuance", in.StockIssuance)

	if in.BeginningCash < in.MinimumCash {
		r = append(r, validation.Warningf(
			"beginning cash %v starts below the %v minimum - Q1 will borrow immediately",
			in.BeginningCash, in.MinimumCash))
	}
	if in.InvestmentAnnualRate > in.BorrowingAnnualRate && in.BorrowingAnnualRate > 0 {
		r = append(r, validation.Warningf(
			"investment rate exceeds borrowing rate - verify the financing assumptions"))
	}
	if in.InvestSurplus && in.InvestmentAnnualRate == 0 {
		r = append(r, validation.Warningf(
			"surplus investment is enabled with a zero investment rate"))
	}

	return r
}

// Calculate rolls the cash balance forward quarter by quarter, borrowing
// back to the minimum on shortfalls and repaying or investing surpluses.
func (c *CashBudget) Calculate(in CashBudgetInput, receipts CashReceiptsOutput, disbursements CashDisbursementsOutput) CashBudgetOutput {
	planner := financing.NewPlanner(c.logger, financing.Policy{
		MinimumCash:            in.MinimumCash,
		BorrowingAnnualRate:    in.BorrowingAnnualRate,
		InvestmentAnnualRate:   in.InvestmentAnnualRate,
		InvestSurplus:          in.InvestSurplus,
		SurplusInvestThreshold: in.SurplusInvestThreshold,
	})

	out := CashBudgetOutput{
		Receipts:      receipts.TotalReceipts,
		Disbursements: disbursements.TotalDisbursements,
		NetCashFlow:   receipts.TotalReceipts.Sub(disbursements.TotalDisbursements),
		LoanProceeds:  in.LoanProceeds,
		StockProceeds: in.StockIssuance,
		MinimumCash:   in.MinimumCash,
	}

	var beginning, borrowed, repaid, invested, intPaid, intEarned [4]float64
	var ending, debt, investedBal [4]float64

	cash := in.BeginningCash
	for q := 1; q <= 4; q++ {
		beginning[q-1] = cash
		// Financing inflows land before the borrowing policy runs, so
		// planned proceeds reduce short-term borrowing.
		inflows := out.Receipts.Quarter(q) +
			in.LoanProceeds.Quarter(q) + in.StockIssuance.Quarter(q)
		act := planner.Step(cash, inflows, out.Disbursements.Quarter(q))
		borrowed[q-1] = act.Borrowed
		repaid[q-1] = act.Repaid
		invested[q-1] = act.Invested
		intPaid[q-1] = act.InterestPaid
		intEarned[q-1] = act.InterestEarned
		ending[q-1] = act.EndingCash
		debt[q-1] = act.OutstandingDebt
		investedBal[q-1] = act.InvestedBalance
		cash = act.EndingCash
	}

	out.BeginningCash = quarterly.Series{
		Q1: beginning[0], Q2: beginning[1], Q3: beginning[2], Q4: beginning[3],
		Yearly: beginning[0],
	}
	out.Borrowings = quarterly.New(borrowed[0], borrowed[1], borrowed[2], borrowed[3])
	out.Repayments = quarterly.New(repaid[0], repaid[1], repaid[2], repaid[3])
	out.Investments = quarterly.New(invested[0], invested[1], invested[2], invested[3])
	out.InterestPaid = quarterly.New(intPaid[0], intPaid[1], intPaid[2], intPaid[3])
	out.InterestEarned = quarterly.New(intEarned[0], intEarned[1], intEarned[2], intEarned[3])

	out.EndingCash = quarterly.Series{
		Q1: ending[0], Q2: ending[1], Q3: ending[2], Q4: ending[3], Yearly: ending[3],
	}
	out.OutstandingDebt = quarterly.Series{
		Q1: debt[0], Q2: debt[1], Q3: debt[2], Q4: debt[3], Yearly: debt[3],
	}
	out.InvestedBalance = quarterly.Series{
		Q1: investedBal[0], Q2: investedBal[1], Q3: investedBal[2], Q4: investedBal[3],
		Yearly: investedBal[3],
	}

	out.OperatingCashFlow = out.NetCashFlow.
		Add(out.InterestEarned).
		Sub(out.InterestPaid).
		Add(disbursements.CapitalExpenditures). // capex is not operating
		Add(disbursements.Dividends).           // nor are dividends
		Add(disbursements.LoanPrincipalPayments)
	out.FreeCashFlow = out.OperatingCashFlow.Sub(disbursements.CapitalExpenditures)

	c.logger.Debug("computed cash budget",
		zap.String("op", "schedule.CashBudget.Calculate"),
		zap.Float64("endingCash", out.EndingCash.Q4),
		zap.Float64("outstandingDebt", out.OutstandingDebt.Q4),
	)

	return out
}

// Table renders the cash budget.
func (o CashBudgetOutput) Table() output.Table {
	rows := []output.Row{
		seriesRow("Beginning Cash Balance", o.BeginningCash),
		seriesRow("Total Cash Receipts", o.Receipts),
		seriesRow("Total Cash Disbursements", o.Disbursements),
		seriesRow("Net Cash Flow", o.NetCashFlow).Styled(output.StyleSubtotal),
		output.BlankRow(),
	}
	for _, line := range []struct {
		label string
		s     quarterly.Series
	}{
		{"Loan Proceeds", o.LoanProceeds},
		{"Stock Issuance", o.StockProceeds},
		{"Borrowings", o.Borrowings},
		{"Debt Repayments", o.Repayments},
		{"Investments (Net)", o.Investments},
		{"Interest Paid", o.InterestPaid},
		{"Interest Earned", o.InterestEarned},
	} {
		if !line.s.IsZero() {
			rows = append(rows, seriesRow(line.label, line.s))
		}
	}
	rows = append(rows,
		seriesRow("Ending Cash Balance", o.EndingCash).Styled(output.StyleTotal),
	)
	if !o.OutstandingDebt.IsZero() {
		rows = append(rows, seriesRow("Outstanding Short-Term Debt", o.OutstandingDebt))
	}
	if !o.InvestedBalance.IsZero() {
		rows = append(rows, seriesRow("Short-Term Investments", o.InvestedBalance))
	}
	rows = append(rows,
		output.BlankRow(),
		seriesRow("Free Cash Flow", o.FreeCashFlow),
	)
	return output.Table{
		Number:  NumberCash,
		Title:   "Cash Budget",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

// Package financing provides short-term financing utilities for the cash
// budget: borrowing against a minimum-cash floor, surplus repayment and
// investment, and quarterly interest accrual.
package financing

import (
	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"go.uber.org/zap"
)

// Policy describes the caller's cash management parameters.
type Policy struct {
	MinimumCash            float64
	BorrowingAnnualRate    float64
	InvestmentAnnualRate   float64
	InvestSurplus          bool
	SurplusInvestThreshold float64 // surplus above minimum retained as cash before investing
}

// QuarterActivity holds the financing decisions for a single quarter.
type QuarterActivity struct {
	Borrowed        float64
	Repaid          float64
	Invested        float64
	InterestPaid    float64
	InterestEarned  float64
	OutstandingDebt float64
	InvestedBalance float64
	EndingCash      float64
}

// Planner computes per-quarter financing activity while carrying running
// borrowed and invested balances.
type Planner struct {
	logger   *zap.Logger
	policy   Policy
	debt     float64
	invested float64
}

// NewPlanner creates a planner for one budget year.
func NewPlanner(logger *zap.Logger, policy Policy) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{logger: logger, policy: policy}
}

// QuarterlyInterest prorates an annual rate over one quarter of the
// outstanding balance.
func QuarterlyInterest(balance, annualRate float64) float64 {
	return balance * annualRate / constants.QuartersPerYear
}

// Step processes one quarter. beginningCash is the quarter's opening
// balance, receipts and disbursements the cash movements settled that
// quarter, exclusive of the planner's own borrowing and investing.
// Interest on balances carried into the quarter
// is settled first, then a shortfall below the minimum is borrowed exactly
// back to the minimum, then surplus repays debt and optionally invests.
func (p *Planner) Step(beginningCash, receipts, disbursements float64) QuarterActivity {
	act := QuarterActivity{
		InterestPaid:   QuarterlyInterest(p.debt, p.policy.BorrowingAnnualRate),
		InterestEarned: QuarterlyInterest(p.invested, p.policy.InvestmentAnnualRate),
	}

	cash := beginningCash + receipts + act.InterestEarned - disbursements - act.InterestPaid

	if cash < p.policy.MinimumCash {
		shortfall := p.policy.MinimumCash - cash

		// Liquidate investments before borrowing.
		liquidated := mathutil.Min(shortfall, p.invested)
		if liquidated > 0 {
			p.invested -= liquidated
			act.Invested -= liquidated
			cash += liquidated
			shortfall -= liquidated
		}

		if shortfall > 0 {
			act.Borrowed = shortfall
			p.debt += shortfall
			cash = p.policy.MinimumCash
			p.logger.Debug("borrowing to restore minimum cash",
				zap.String("op", "financing.Step"),
				zap.Float64("borrowed", act.Borrowed),
			)
		}
	} else {
		surplus := cash - p.policy.MinimumCash

		act.Repaid = mathutil.Min(surplus, p.debt)
		p.debt -= act.Repaid
		cash -= act.Repaid
		surplus -= act.Repaid

		if p.policy.InvestSurplus && surplus > p.policy.SurplusInvestThreshold {
			invest := surplus - p.policy.SurplusInvestThreshold
			act.Invested += invest
			p.invested += invest
			cash -= invest
		}
	}

	act.OutstandingDebt = p.debt
	act.InvestedBalance = p.invested
	act.EndingCash = cash
	return act
}

// OutstandingDebt returns the running borrowed balance.
func (p *Planner) OutstandingDebt() float64 { return p.debt }

// InvestedBalance returns the running invested balance.
func (p *Planner) InvestedBalance() float64 { return p.invested }

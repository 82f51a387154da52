package financing

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestQuarterlyInterest(t *testing.T) {
	tests := []struct {
		name     string
		balance  float64
		rate     float64
		expected float64
	}{
		{"Zero balance", 0, 0.08, 0},
		{"Zero rate", 10000, 0, 0},
		{"8 percent annual", 10000, 0.08, 200},
		{"3 percent annual", 20000, 0.03, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuarterlyInterest(tt.balance, tt.rate)
			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("QuarterlyInterest(%v, %v) = %v, expected %v", tt.balance, tt.rate, got, tt.expected)
			}
		})
	}
}

func TestStepBorrowsExactlyToMinimum(t *testing.T) {
	p := NewPlanner(zap.NewNop(), Policy{MinimumCash: 15000})

	// Receipts minus disbursements negative enough to breach the minimum.
	act := p.Step(40000, 100000, 140000)
	if act.Borrowed <= 0 {
		t.Fatalf("expected borrowing, got %+v", act)
	}
	if math.Abs(act.EndingCash-15000) > 1e-9 {
		t.Errorf("ending cash = %v, expected exactly 15000", act.EndingCash)
	}
	if math.Abs(act.Borrowed-15000) > 1e-9 {
		t.Errorf("borrowed = %v, expected 15000", act.Borrowed)
	}
	if act.OutstandingDebt != act.Borrowed {
		t.Errorf("outstanding debt = %v, expected %v", act.OutstandingDebt, act.Borrowed)
	}
}

func TestStepRepaysBeforeInvesting(t *testing.T) {
	p := NewPlanner(nil, Policy{
		MinimumCash:   10000,
		InvestSurplus: true,
	})

	// Quarter 1 borrows 5000.
	act1 := p.Step(10000, 0, 5000)
	if math.Abs(act1.Borrowed-5000) > 1e-9 {
		t.Fatalf("q1 borrowed = %v", act1.Borrowed)
	}

	// Quarter 2 surplus repays the debt first, then invests the rest.
	act2 := p.Step(act1.EndingCash, 20000, 5000)
	if math.Abs(act2.Repaid-5000) > 1e-9 {
		t.Errorf("q2 repaid = %v, expected 5000", act2.Repaid)
	}
	if act2.OutstandingDebt != 0 {
		t.Errorf("q2 outstanding debt = %v, expected 0", act2.OutstandingDebt)
	}
	if math.Abs(act2.Invested-10000) > 1e-9 {
		t.Errorf("q2 invested = %v, expected 10000", act2.Invested)
	}
	if math.Abs(act2.EndingCash-10000) > 1e-9 {
		t.Errorf("q2 ending cash = %v, expected the minimum", act2.EndingCash)
	}
}

func TestStepAccruesInterestNextQuarter(t *testing.T) {
	p := NewPlanner(nil, Policy{
		MinimumCash:         15000,
		BorrowingAnnualRate: 0.08,
	})

	act1 := p.Step(15000, 0, 10000)
	if math.Abs(act1.Borrowed-10000) > 1e-9 {
		t.Fatalf("q1 borrowed = %v", act1.Borrowed)
	}
	if act1.InterestPaid != 0 {
		t.Errorf("no interest due in the borrowing quarter, got %v", act1.InterestPaid)
	}

	// 10000 * 0.08 / 4 = 200 due in the following quarter.
	act2 := p.Step(act1.EndingCash, 12000, 0)
	if math.Abs(act2.InterestPaid-200) > 1e-9 {
		t.Errorf("q2 interest paid = %v, expected 200", act2.InterestPaid)
	}
}

func TestStepLiquidatesInvestmentsBeforeBorrowing(t *testing.T) {
	p := NewPlanner(nil, Policy{MinimumCash: 10000, InvestSurplus: true})

	act1 := p.Step(10000, 8000, 0)
	if math.Abs(act1.Invested-8000) > 1e-9 {
		t.Fatalf("q1 invested = %v", act1.Invested)
	}

	act2 := p.Step(act1.EndingCash, 0, 5000)
	if act2.Borrowed != 0 {
		t.Errorf("shortfall covered by investments, expected no borrowing, got %v", act2.Borrowed)
	}
	if math.Abs(act2.InvestedBalance-3000) > 1e-9 {
		t.Errorf("invested balance = %v, expected 3000", act2.InvestedBalance)
	}
	if math.Abs(act2.EndingCash-10000) > 1e-9 {
		t.Errorf("ending cash = %v, expected the minimum", act2.EndingCash)
	}
}

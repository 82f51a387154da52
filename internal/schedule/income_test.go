package schedule

import (
	"math"
	"testing"

	"github.com/iwvelando/master-budget/pkg/quarterly"
	"go.uber.org/zap"
)

func baseCOGSOutput(t *testing.T) COGSOutput {
	t.Helper()
	sales, production, materials, labor, overhead := cogsUpstream(t)
	in := COGSInput{BeginningWIPValue: 30000, EndingWIPValue: 25000, BeginningFinishedGoodsValue: 90000}
	return NewCOGSBudget(nil).Calculate(in, sales, production, materials, labor, overhead)
}

func TestIncomeStatementValidate(t *testing.T) {
	sales := baseSalesOutput(t)
	sga := baseSellingAdminOutput(t)
	cogs := baseCOGSOutput(t)
	tests := []struct {
		name       string
		mutate     func(*IncomeStatementInput)
		wantErrors bool
	}{
		{"Baseline passes", func(in *IncomeStatementInput) {}, false},
		{"Tax rate above one", func(in *IncomeStatementInput) { in.TaxRate = 1.5 }, true},
		{"Negative interest expense", func(in *IncomeStatementInput) { in.InterestExpense = -1 }, true},
	}

	calc := NewIncomeStatement(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := IncomeStatementInput{TaxRate: 0.25}
			tt.mutate(&in)
			r := calc.Validate(in, sales, sga, cogs)
			if r.HasErrors() != tt.wantErrors {
				t.Errorf("Validate errors = %v (findings %v), expected %v", r.HasErrors(), r.Messages(), tt.wantErrors)
			}
		})
	}
}

func TestIncomeStatementCalculate(t *testing.T) {
	sales := baseSalesOutput(t)
	sga := baseSellingAdminOutput(t)
	cogs := baseCOGSOutput(t)
	in := IncomeStatementInput{TaxRate: 0.25, InterestExpense: 12000}

	out := NewIncomeStatement(nil).Calculate(in, sales, sga, cogs, nil)

	if got := out.Revenue; math.Abs(got-sales.Revenue.Yearly) > 0.01 {
		t.Errorf("revenue = %v, expected %v", got, sales.Revenue.Yearly)
	}
	wantGross := sales.Revenue.Yearly - cogs.CostOfGoodsSold
	if got := out.GrossMargin; math.Abs(got-wantGross) > 0.01 {
		t.Errorf("gross margin = %v, expected %v", got, wantGross)
	}
	wantOperating := wantGross - sga.Total.Yearly
	if got := out.OperatingIncome; math.Abs(got-wantOperating) > 0.01 {
		t.Errorf("operating income = %v, expected %v", got, wantOperating)
	}
	wantPretax := wantOperating - 12000
	if got := out.PretaxIncome; math.Abs(got-wantPretax) > 0.01 {
		t.Errorf("pretax income = %v, expected %v", got, wantPretax)
	}
	if wantPretax <= 0 {
		t.Fatal("fixture should be profitable")
	}
	wantTax := wantPretax * 0.25
	if got := out.TaxExpense; math.Abs(got-wantTax) > 0.01 {
		t.Errorf("tax expense = %v, expected %v", got, wantTax)
	}
	if got, want := out.NetIncome, wantPretax-wantTax; math.Abs(got-want) > 0.01 {
		t.Errorf("net income = %v, expected %v", got, want)
	}
	if got, want := out.GrossMarginPercent, wantGross/sales.Revenue.Yearly*100; math.Abs(got-want) > 1e-9 {
		t.Errorf("gross margin percent = %v, expected %v", got, want)
	}
}

func TestIncomeStatementNoTaxOnLoss(t *testing.T) {
	sales := baseSalesOutput(t)
	sga := baseSellingAdminOutput(t)
	cogs := baseCOGSOutput(t)
	// An interest burden large enough to push pretax income negative.
	in := IncomeStatementInput{TaxRate: 0.25, InterestExpense: 10000000}

	out := NewIncomeStatement(nil).Calculate(in, sales, sga, cogs, nil)

	if out.PretaxIncome >= 0 {
		t.Fatalf("pretax income = %v, fixture should force a loss", out.PretaxIncome)
	}
	if out.TaxExpense != 0 {
		t.Errorf("tax expense = %v, expected no tax benefit on a loss", out.TaxExpense)
	}
	if got := out.NetIncome; math.Abs(got-out.PretaxIncome) > 0.01 {
		t.Errorf("net income = %v, expected pretax loss %v", got, out.PretaxIncome)
	}
}

func TestIncomeStatementFoldsCashBudgetInterest(t *testing.T) {
	sales := baseSalesOutput(t)
	sga := baseSellingAdminOutput(t)
	cogs := baseCOGSOutput(t)
	cash := CashBudgetOutput{
		InterestPaid:   quarterly.New(0, 800, 400, 0),
		InterestEarned: quarterly.New(0, 0, 150, 150),
	}
	in := IncomeStatementInput{TaxRate: 0.25, InterestExpense: 5000}

	out := NewIncomeStatement(nil).Calculate(in, sales, sga, cogs, &cash)

	if got := out.InterestExpense; math.Abs(got-6200) > 0.01 {
		t.Errorf("interest expense = %v, expected 5000 plus 1200 short-term", got)
	}
	if got := out.InterestIncome; math.Abs(got-300) > 0.01 {
		t.Errorf("interest income = %v, expected 300", got)
	}
}

func TestIncomeStatementTable(t *testing.T) {
	out := NewIncomeStatement(nil).Calculate(
		IncomeStatementInput{TaxRate: 0.25}, baseSalesOutput(t), baseSellingAdminOutput(t), baseCOGSOutput(t), nil)
	table := out.Table()
	if table.Number != NumberIncome {
		t.Errorf("table number = %d, expected %d", table.Number, NumberIncome)
	}
	if len(table.Columns) != 2 {
		t.Errorf("columns = %v, expected amount and percent", table.Columns)
	}
}

package schedule

import (
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/master-budget/pkg/quarterly"
)

// fullChain computes every schedule feeding the cash flow statement from
// the shared fixtures.
type fullChain struct {
	sales         SalesBudgetOutput
	production    ProductionBudgetOutput
	materials     DirectMaterialOutput
	labor         DirectLaborOutput
	overhead      ManufacturingOverheadOutput
	sga           SellingAdminOutput
	receipts      CashReceiptsOutput
	disbursements CashDisbursementsOutput
	cash          CashBudgetOutput
	cogs          COGSOutput
	income        IncomeStatementOutput
}

func buildFullChain(t *testing.T) fullChain {
	t.Helper()
	var ch fullChain
	ch.sales = baseSalesOutput(t)
	ch.production = baseProductionOutput(t)
	ch.materials = baseMaterialsOutput(t)
	ch.labor = baseLaborOutput(t)
	ch.overhead = baseOverheadOutput(t)
	ch.sga = baseSellingAdminOutput(t)
	ch.receipts = NewCashReceiptsBudget(nil).Calculate(baseReceiptsInput(), ch.sales)

	disbIn := CashDisbursementsInput{
		BeginningAccountsPayable: 80000,
		IncomeTaxPayments:        quarterly.Constant(40000),
		Dividends:                quarterly.New(0, 0, 0, 50000),
		CapitalExpenditures:      quarterly.New(0, 120000, 0, 0),
		LoanPrincipalPayments:    quarterly.Constant(10000),
	}
	ch.disbursements = NewCashDisbursementsBudget(nil).Calculate(
		disbIn, ch.materials, ch.labor, ch.overhead, ch.sga)

	ch.cash = NewCashBudget(nil).Calculate(baseCashInput(), ch.receipts, ch.disbursements)

	cogsIn := COGSInput{BeginningWIPValue: 30000, EndingWIPValue: 25000, BeginningFinishedGoodsValue: 90000}
	ch.cogs = NewCOGSBudget(nil).Calculate(
		cogsIn, ch.sales, ch.production, ch.materials, ch.labor, ch.overhead)

	ch.income = NewIncomeStatement(nil).Calculate(
		IncomeStatementInput{TaxRate: 0.25}, ch.sales, ch.sga, ch.cogs, &ch.cash)
	return ch
}

func calculateCashFlow(t *testing.T, ch fullChain) CashFlowStatementOutput {
	t.Helper()
	return NewCashFlowStatement(nil).Calculate(
		ch.sales, ch.materials, ch.sga, ch.overhead, ch.cogs, ch.income,
		ch.receipts, ch.disbursements, ch.cash)
}

// rebuildChain recomputes the schedules downstream of new receipts,
// cash, and income assumptions. The disbursement fixture is unchanged.
func rebuildChain(t *testing.T, ch *fullChain, recIn CashReceiptsInput, cashIn CashBudgetInput, incIn IncomeStatementInput) {
	t.Helper()
	ch.receipts = NewCashReceiptsBudget(nil).Calculate(recIn, ch.sales)
	ch.cash = NewCashBudget(nil).Calculate(cashIn, ch.receipts, ch.disbursements)
	ch.income = NewIncomeStatement(nil).Calculate(incIn, ch.sales, ch.sga, ch.cogs, &ch.cash)
}

func baseCashInput() CashBudgetInput {
	return CashBudgetInput{
		BeginningCash:       90000,
		MinimumCash:         40000,
		BorrowingAnnualRate: 0.08,
	}
}

func TestCashFlowValidate(t *testing.T) {
	ch := buildFullChain(t)
	calc := NewCashFlowStatement(nil)

	if r := calc.Validate(ch.receipts, ch.disbursements, ch.cash); r.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Messages())
	}

	broken := ch.cash
	broken.Receipts = broken.Receipts.Scale(0.9)
	if r := calc.Validate(ch.receipts, ch.disbursements, broken); !r.HasErrors() {
		t.Error("expected an error when the cash budget receipts diverge")
	}
}

func TestCashFlowNetChangeMatchesCashBudget(t *testing.T) {
	ch := buildFullChain(t)
	out := calculateCashFlow(t, ch)

	wantChange := ch.cash.EndingCash.Q4 - ch.cash.BeginningCash.Q1
	if got := out.NetChangeInCash; math.Abs(got-wantChange) > 0.01 {
		t.Errorf("net change in cash = %v, expected the cash budget movement %v", got, wantChange)
	}
	if got := out.EndingCash; math.Abs(got-ch.cash.EndingCash.Q4) > 0.01 {
		t.Errorf("ending cash = %v, expected %v", got, ch.cash.EndingCash.Q4)
	}
}

func TestCashFlowDirectMatchesIndirect(t *testing.T) {
	ch := buildFullChain(t)
	out := calculateCashFlow(t, ch)

	if got, want := out.IndirectNetOperating, out.NetOperating; math.Abs(got-want) > 0.01 {
		t.Errorf("indirect operating cash = %v, direct method = %v", got, want)
	}
}

func TestCashFlowIndirectWithUncollectedCredit(t *testing.T) {
	ch := buildFullChain(t)
	recIn := baseReceiptsInput()
	recIn.CollectedNextQuarterPercent = 0.25
	rebuildChain(t, &ch, recIn, baseCashInput(), IncomeStatementInput{TaxRate: 0.25})

	out := calculateCashFlow(t, ch)

	if got, want := out.ReceivableWriteOffs, ch.receipts.WriteOffs.Yearly; math.Abs(got-want) > 0.01 {
		t.Errorf("receivable write-offs = %v, expected the collections schedule's %v", got, want)
	}
	if out.ReceivableWriteOffs <= 0 {
		t.Fatal("expected write-offs when 5% of credit sales never collects")
	}
	if got, want := out.IndirectNetOperating, out.NetOperating; math.Abs(got-want) > 0.01 {
		t.Errorf("indirect operating cash = %v, direct method = %v", got, want)
	}
}

func TestCashFlowIndirectWithAccruedInterest(t *testing.T) {
	ch := buildFullChain(t)
	rebuildChain(t, &ch, baseReceiptsInput(), baseCashInput(),
		IncomeStatementInput{TaxRate: 0.25, InterestExpense: 12000, InterestIncome: 3000})

	out := calculateCashFlow(t, ch)

	// The assumed interest accrues on the income statement without a cash
	// settlement, so the indirect method adds the net back.
	if got, want := out.InterestAccrualNet, 9000.0; math.Abs(got-want) > 0.01 {
		t.Errorf("net interest accrual = %v, expected %v", got, want)
	}
	if got, want := out.IndirectNetOperating, out.NetOperating; math.Abs(got-want) > 0.01 {
		t.Errorf("indirect operating cash = %v, direct method = %v", got, want)
	}
}

func TestCashFlowFinancingProceeds(t *testing.T) {
	ch := buildFullChain(t)
	cashIn := baseCashInput()
	cashIn.LoanProceeds = quarterly.New(75000, 0, 0, 0)
	cashIn.StockIssuance = quarterly.New(50000, 0, 0, 0)
	rebuildChain(t, &ch, baseReceiptsInput(), cashIn, IncomeStatementInput{TaxRate: 0.25})

	out := calculateCashFlow(t, ch)

	if got := out.LoanProceeds; math.Abs(got-75000) > 0.01 {
		t.Errorf("loan proceeds = %v, expected 75000", got)
	}
	if got := out.StockIssuance; math.Abs(got-50000) > 0.01 {
		t.Errorf("stock issuance = %v, expected 50000", got)
	}
	wantFinancing := out.ShortTermBorrowings - out.ShortTermRepayments +
		125000 - out.LoanPrincipalPayments - out.DividendsPaid
	if got := out.NetFinancing; math.Abs(got-wantFinancing) > 0.01 {
		t.Errorf("net financing = %v, expected %v", got, wantFinancing)
	}
	// The statement still ties to the cash budget with proceeds flowing in.
	wantChange := ch.cash.EndingCash.Q4 - ch.cash.BeginningCash.Q1
	if got := out.NetChangeInCash; math.Abs(got-wantChange) > 0.01 {
		t.Errorf("net change in cash = %v, expected %v", got, wantChange)
	}
	if got, want := out.IndirectNetOperating, out.NetOperating; math.Abs(got-want) > 0.01 {
		t.Errorf("indirect operating cash = %v, direct method = %v", got, want)
	}
}

func TestCashFlowSections(t *testing.T) {
	ch := buildFullChain(t)
	out := calculateCashFlow(t, ch)

	wantFinancing := out.ShortTermBorrowings - out.ShortTermRepayments +
		out.LoanProceeds + out.StockIssuance -
		out.LoanPrincipalPayments - out.DividendsPaid
	if got := out.NetFinancing; math.Abs(got-wantFinancing) > 0.01 {
		t.Errorf("net financing = %v, expected %v", got, wantFinancing)
	}
	if got := out.CapitalExpenditures; math.Abs(got-120000) > 0.01 {
		t.Errorf("capital expenditures = %v, expected 120000", got)
	}
	if got := out.NetInvesting; math.Abs(got+120000+out.ShortTermInvestments) > 0.01 {
		t.Errorf("net investing = %v, expected %v", got, -120000-out.ShortTermInvestments)
	}
	if got := out.DividendsPaid; math.Abs(got-50000) > 0.01 {
		t.Errorf("dividends paid = %v, expected 50000", got)
	}
}

func TestCashFlowQualityMetrics(t *testing.T) {
	ch := buildFullChain(t)
	out := calculateCashFlow(t, ch)

	if got, want := out.Quality.FreeCashFlow, out.NetOperating-out.CapitalExpenditures; math.Abs(got-want) > 0.01 {
		t.Errorf("free cash flow = %v, expected %v", got, want)
	}
	if got, want := out.Quality.CapitalIntensity, 120000/ch.income.Revenue; math.Abs(got-want) > 1e-9 {
		t.Errorf("capital intensity = %v, expected %v", got, want)
	}
	if got, want := out.Quality.DividendCoverage, out.NetOperating/50000; math.Abs(got-want) > 1e-9 {
		t.Errorf("dividend coverage = %v, expected %v", got, want)
	}
}

func TestCashFlowCoverageUnboundedWithoutOutflow(t *testing.T) {
	ch := buildFullChain(t)
	ch.disbursements = NewCashDisbursementsBudget(nil).Calculate(
		CashDisbursementsInput{BeginningAccountsPayable: 80000},
		ch.materials, ch.labor, ch.overhead, ch.sga)
	ch.cash = NewCashBudget(nil).Calculate(baseCashInput(), ch.receipts, ch.disbursements)
	out := calculateCashFlow(t, ch)

	if !math.IsInf(out.Quality.DividendCoverage, 1) {
		t.Errorf("dividend coverage = %v, expected +Inf with no dividends", out.Quality.DividendCoverage)
	}
	if !math.IsInf(out.Quality.CashFlowAdequacy, 1) {
		t.Errorf("cash flow adequacy = %v, expected +Inf with no funding outflows", out.Quality.CashFlowAdequacy)
	}
}

func TestCashFlowTable(t *testing.T) {
	ch := buildFullChain(t)
	table := calculateCashFlow(t, ch).Table()
	if table.Number != NumberCashFlow {
		t.Errorf("table number = %d, expected %d", table.Number, NumberCashFlow)
	}
}

func TestCashFlowQualitySummary(t *testing.T) {
	ch := buildFullChain(t)
	lines := calculateCashFlow(t, ch).QualitySummary()
	if len(lines) != 6 {
		t.Fatalf("summary lines = %d, expected 6", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Free Cash Flow: ") {
		t.Errorf("first line = %q, expected free cash flow", lines[0])
	}
}

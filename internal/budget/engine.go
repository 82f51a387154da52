// Package budget orchestrates the thirteen schedules in dependency order,
// collecting per-schedule findings and skipping dependents of schedules
// that fail validation.
package budget

import (
	"fmt"
	"strings"

	"github.com/iwvelando/master-budget/internal/config"
	"github.com/iwvelando/master-budget/internal/schedule"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// Schedule names, matching the configuration section names. The CLI and
// server accept these for single-schedule selection.
const (
	NameSales         = "sales"
	NameProduction    = "production"
	NameMaterials     = "materials"
	NameLabor         = "labor"
	NameOverhead      = "overhead"
	NameSellingAdmin  = "sellingAdmin"
	NameReceipts      = "cashReceipts"
	NameDisbursements = "cashDisbursements"
	NameCash          = "cashBudget"
	NameCOGS          = "costOfGoodsSold"
	NameIncome        = "incomeStatement"
	NameCashFlow      = "cashFlow"
	NameBalance       = "balanceSheet"
)

// ScheduleNames lists all schedules in dependency order.
var ScheduleNames = []string{
	NameSales,
	NameProduction,
	NameMaterials,
	NameLabor,
	NameOverhead,
	NameSellingAdmin,
	NameReceipts,
	NameDisbursements,
	NameCash,
	NameCOGS,
	NameIncome,
	NameCashFlow,
	NameBalance,
}

// MissingUpstreamError marks a schedule that was skipped because one or
// more of the schedules it builds on did not complete.
type MissingUpstreamError struct {
	Schedule string
	Requires []string
}

func (e *MissingUpstreamError) Error() string {
	return fmt.Sprintf("schedule %s skipped: upstream %s did not complete",
		e.Schedule, strings.Join(e.Requires, ", "))
}

// Results holds every computed schedule plus the findings and failures
// gathered along the way. Outputs are only meaningful for schedules that
// Completed reports as done.
type Results struct {
	Company       schedule.CompanyInfo
	Sales         schedule.SalesBudgetOutput
	Production    schedule.ProductionBudgetOutput
	Materials     schedule.DirectMaterialOutput
	Labor         schedule.DirectLaborOutput
	Overhead      schedule.ManufacturingOverheadOutput
	SellingAdmin  schedule.SellingAdminOutput
	Receipts      schedule.CashReceiptsOutput
	Disbursements schedule.CashDisbursementsOutput
	Cash          schedule.CashBudgetOutput
	COGS          schedule.COGSOutput
	Income        schedule.IncomeStatementOutput
	CashFlow      schedule.CashFlowStatementOutput
	Balance       schedule.BalanceSheetOutput

	Findings map[string]validation.Result

	failures map[string]error
	done     map[string]bool
}

// Completed reports whether the named schedule ran to completion.
func (r *Results) Completed(name string) bool {
	return r.done[name]
}

// Failure returns the error that stopped the named schedule, or nil.
func (r *Results) Failure(name string) error {
	return r.failures[name]
}

// HasErrors reports whether any schedule failed or produced a blocking
// finding.
func (r *Results) HasErrors() bool {
	if len(r.failures) > 0 {
		return true
	}
	for _, f := range r.Findings {
		if f.HasErrors() {
			return true
		}
	}
	return false
}

// Table returns the presentation table for the named schedule. The second
// return is false when the name is unknown or the schedule did not
// complete.
func (r *Results) Table(name string) (output.Table, bool) {
	if !r.done[name] {
		return output.Table{}, false
	}
	switch name {
	case NameSales:
		return r.Sales.Table(), true
	case NameProduction:
		return r.Production.Table(), true
	case NameMaterials:
		return r.Materials.Table(), true
	case NameLabor:
		return r.Labor.Table(), true
	case NameOverhead:
		return r.Overhead.Table(), true
	case NameSellingAdmin:
		return r.SellingAdmin.Table(), true
	case NameReceipts:
		return r.Receipts.Table(), true
	case NameDisbursements:
		return r.Disbursements.Table(), true
	case NameCash:
		return r.Cash.Table(), true
	case NameCOGS:
		return r.COGS.Table(), true
	case NameIncome:
		return r.Income.Table(), true
	case NameCashFlow:
		return r.CashFlow.Table(), true
	case NameBalance:
		return r.Balance.Table(), true
	}
	return output.Table{}, false
}

// Tables returns the presentation tables of every completed schedule in
// dependency order.
func (r *Results) Tables() []output.Table {
	tables := make([]output.Table, 0, len(ScheduleNames))
	for _, name := range ScheduleNames {
		if t, ok := r.Table(name); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// Engine runs the full budget pipeline.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a budget engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// record stores the findings for a schedule and reports whether the
// schedule may proceed to calculation.
func (r *Results) record(name string, findings validation.Result) bool {
	r.Findings[name] = findings
	if findings.HasErrors() {
		r.failures[name] = fmt.Errorf("schedule %s failed validation", name)
		return false
	}
	return true
}

// ready reports whether every named upstream completed; when one did not,
// the schedule is recorded as skipped.
func (r *Results) ready(name string, upstream ...string) bool {
	var missing []string
	for _, u := range upstream {
		if !r.done[u] {
			missing = append(missing, u)
		}
	}
	if len(missing) > 0 {
		r.failures[name] = &MissingUpstreamError{Schedule: name, Requires: missing}
		return false
	}
	return true
}

// Run computes all thirteen schedules from the loaded configuration.
// Schedules whose validation reports errors are stopped, and everything
// downstream of them is marked with a MissingUpstreamError.
func (e *Engine) Run(cfg *config.Configuration) *Results {
	r := &Results{
		Company:  cfg.CompanyInfo(),
		Findings: make(map[string]validation.Result),
		failures: make(map[string]error),
		done:     make(map[string]bool),
	}

	run := func(name string, upstream []string, step func() validation.Result) {
		if !r.ready(name, upstream...) {
			e.logger.Debug("schedule skipped",
				zap.String("op", "budget.Engine.Run"),
				zap.String("schedule", name),
				zap.Error(r.failures[name]))
			return
		}
		findings := step()
		if !r.record(name, findings) {
			e.logger.Debug("schedule failed validation",
				zap.String("op", "budget.Engine.Run"),
				zap.String("schedule", name),
				zap.Int("errors", len(findings.Errors())))
			return
		}
		r.done[name] = true
	}

	run(NameSales, nil, func() validation.Result {
		calc := schedule.NewSalesBudget(e.logger)
		in := cfg.SalesInput()
		f := calc.Validate(in)
		if !f.HasErrors() {
			r.Sales = calc.Calculate(in)
		}
		return f
	})

	run(NameProduction, []string{NameSales}, func() validation.Result {
		calc := schedule.NewProductionBudget(e.logger)
		in := cfg.ProductionInput()
		f := calc.Validate(in, r.Sales)
		if f.HasErrors() {
			return f
		}
		r.Production = calc.Calculate(in, r.Sales)
		return append(f, r.Production.Advisories...)
	})

	run(NameMaterials, []string{NameProduction}, func() validation.Result {
		calc := schedule.NewDirectMaterialBudget(e.logger)
		in := cfg.MaterialsInput()
		f := calc.Validate(in, r.Production)
		if !f.HasErrors() {
			r.Materials = calc.Calculate(in, r.Production)
		}
		return f
	})

	run(NameLabor, []string{NameProduction}, func() validation.Result {
		calc := schedule.NewDirectLaborBudget(e.logger)
		in := cfg.LaborInput()
		f := calc.Validate(in, r.Production)
		if !f.HasErrors() {
			r.Labor = calc.Calculate(in, r.Production)
		}
		return f
	})

	run(NameOverhead, []string{NameProduction}, func() validation.Result {
		calc := schedule.NewManufacturingOverheadBudget(e.logger)
		in := cfg.OverheadInput()

		// Labor hours are only needed when the overhead assumptions
		// reference them; a nil labor output surfaces as a validation
		// error in that case.
		var labor *schedule.DirectLaborOutput
		if r.done[NameLabor] {
			labor = &r.Labor
		}
		f := calc.Validate(in, r.Production, labor)
		if !f.HasErrors() {
			r.Overhead = calc.Calculate(in, r.Production, labor)
		}
		return f
	})

	run(NameSellingAdmin, []string{NameSales}, func() validation.Result {
		calc := schedule.NewSellingAdminBudget(e.logger)
		in := cfg.SellingAdminInput()
		f := calc.Validate(in, r.Sales)
		if !f.HasErrors() {
			r.SellingAdmin = calc.Calculate(in, r.Sales)
		}
		return f
	})

	run(NameReceipts, []string{NameSales}, func() validation.Result {
		calc := schedule.NewCashReceiptsBudget(e.logger)
		in := cfg.ReceiptsInput()
		f := calc.Validate(in, r.Sales)
		if !f.HasErrors() {
			r.Receipts = calc.Calculate(in, r.Sales)
		}
		return f
	})

	run(NameDisbursements, []string{NameMaterials, NameLabor, NameOverhead, NameSellingAdmin}, func() validation.Result {
		calc := schedule.NewCashDisbursementsBudget(e.logger)
		in := cfg.DisbursementsInput()
		f := calc.Validate(in, r.Materials, r.Labor, r.Overhead, r.SellingAdmin)
		if !f.HasErrors() {
			r.Disbursements = calc.Calculate(in, r.Materials, r.Labor, r.Overhead, r.SellingAdmin)
		}
		return f
	})

	run(NameCash, []string{NameReceipts, NameDisbursements}, func() validation.Result {
		calc := schedule.NewCashBudget(e.logger)
		in := cfg.CashInput()
		f := calc.Validate(in, r.Receipts, r.Disbursements)
		if !f.HasErrors() {
			r.Cash = calc.Calculate(in, r.Receipts, r.Disbursements)
		}
		return f
	})

	run(NameCOGS, []string{NameSales, NameProduction, NameMaterials, NameLabor, NameOverhead}, func() validation.Result {
		calc := schedule.NewCOGSBudget(e.logger)
		in := cfg.COGSInput()
		f := calc.Validate(in, r.Sales, r.Production, r.Materials, r.Labor, r.Overhead)
		if !f.HasErrors() {
			r.COGS = calc.Calculate(in, r.Sales, r.Production, r.Materials, r.Labor, r.Overhead)
		}
		return f
	})

	run(NameIncome, []string{NameSales, NameSellingAdmin, NameCOGS}, func() validation.Result {
		calc := schedule.NewIncomeStatement(e.logger)
		in := cfg.IncomeInput()

		// The statement folds short-term financing interest in when the
		// cash budget completed, and still computes without it otherwise.
		var cash *schedule.CashBudgetOutput
		if r.done[NameCash] {
			cash = &r.Cash
		}
		f := calc.Validate(in, r.Sales, r.SellingAdmin, r.COGS)
		if !f.HasErrors() {
			r.Income = calc.Calculate(in, r.Sales, r.SellingAdmin, r.COGS, cash)
		}
		return f
	})

	run(NameCashFlow, []string{NameSales, NameMaterials, NameSellingAdmin, NameOverhead, NameCOGS, NameIncome, NameCash}, func() validation.Result {
		calc := schedule.NewCashFlowStatement(e.logger)
		f := calc.Validate(r.Receipts, r.Disbursements, r.Cash)
		if !f.HasErrors() {
			r.CashFlow = calc.Calculate(r.Sales, r.Materials, r.SellingAdmin, r.Overhead,
				r.COGS, r.Income, r.Receipts, r.Disbursements, r.Cash)
		}
		return f
	})

	run(NameBalance, []string{NameMaterials, NameSellingAdmin, NameOverhead, NameCOGS, NameIncome, NameCash}, func() validation.Result {
		calc := schedule.NewBalanceSheet(e.logger)
		in := cfg.BalanceInput()
		f := calc.Validate(in)
		if !f.HasErrors() {
			r.Balance = calc.Calculate(in, r.Materials, r.SellingAdmin, r.Overhead,
				r.COGS, r.Income, r.Receipts, r.Disbursements, r.Cash)
		}
		return f
	})

	e.logger.Debug("pipeline complete",
		zap.String("op", "budget.Engine.Run"),
		zap.Int("completed", len(r.done)),
		zap.Int("failed", len(r.failures)))

	return r
}

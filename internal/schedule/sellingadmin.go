package schedule

import (
	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// SGAMode selects how Schedule 6 is costed.
type SGAMode string

const (
	// SGAModeSimple costs selling and administrative expense as flat
	// percentages of revenue plus a fixed amount.
	SGAModeSimple SGAMode = "simple"
	// SGAModeDetailed itemizes the expense lines.
	SGAModeDetailed SGAMode = "detailed"
)

// SellingAdminInput holds the assumptions for Schedule 6.
type SellingAdminInput struct {
	Mode SGAMode

	// Simple mode
	SellingPercentOfRevenue float64
	AdminPercentOfRevenue   float64
	FixedPerQuarter         float64

	// Detailed mode
	CommissionRate          float64 // fraction of revenue; exclusive with per-unit
	CommissionPerUnit       float64
	DistributionPerUnit     float64
	CustomerServicePerUnit  float64
	WarrantyPerUnit         float64
	MarketingPerQuarter     float64
	AdminSalariesPerQuarter float64
	OccupancyPerQuarter     float64
	TechnologyPerQuarter    float64
	BadDebtRate             float64 // fraction of credit sales, non-cash
	DepreciationPerQuarter  float64 // non-cash
}

// SellingAdminOutput is the computed selling and administrative budget.
type SellingAdminOutput struct {
	Variable quarterly.Series
	Fixed    quarterly.Series
	BadDebt  quarterly.Series
	Total    quarterly.Series
	NonCash  quarterly.Series // bad debt plus depreciation
	CashSGA  quarterly.Series

	Commissions  quarterly.Series
	Depreciation quarterly.Series

	PercentOfSales quarterly.Series // rate series, 0-100
	PerUnitSold    quarterly.Series // rate series
	Mode           SGAMode
}

// SellingAdminBudget computes Schedule 6.
type SellingAdminBudget struct {
	logger *zap.Logger
}

// NewSellingAdminBudget creates a selling and administrative budget
// calculator.
func NewSellingAdminBudget(logger *zap.Logger) *SellingAdminBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SellingAdminBudget{logger: logger}
}

// Validate checks the selling and administrative assumptions.
func (s *SellingAdminBudget) Validate(in SellingAdminInput, sales SalesBudgetOutput) validation.Result {
	var r validation.Result

	switch in.Mode {
	case SGAModeSimple:
		r.RequireFraction("selling percent of revenue", in.SellingPercentOfRevenue)
		r.RequireFraction("admin percent of revenue", in.AdminPercentOfRevenue)
		r.RequireNonNegative("fixed selling and admin per quarter", in.FixedPerQuarter)
		if in.SellingPercentOfRevenue+in.AdminPercentOfRevenue > 0.5 {
			r = append(r, validation.Warningf(
				"selling plus admin rates exceed 50%% of revenue - verify"))
		}
	case SGAModeDetailed:
		if in.CommissionRate > 0 && in.CommissionPerUnit > 0 {
			r = append(r, validation.Errorf(
				"commission rate and commission per unit are mutually exclusive"))
		}
		r.RequireFraction("commission rate", in.CommissionRate)
		r.RequireNonNegative("commission per unit", in.CommissionPerUnit)
		r.RequireNonNegative("distribution per unit", in.DistributionPerUnit)
		r.RequireNonNegative("customer service per unit", in.CustomerServicePerUnit)
		r.RequireNonNegative("warranty per unit", in.WarrantyPerUnit)
		r.RequireNonNegative("marketing per quarter", in.MarketingPerQuarter)
		r.RequireNonNegative("admin salaries per quarter", in.AdminSalariesPerQuarter)
		r.RequireNonNegative("occupancy per quarter", in.OccupancyPerQuarter)
		r.RequireNonNegative("technology per quarter", in.TechnologyPerQuarter)
		r.RequireFraction("bad debt rate", in.BadDebtRate)
		r.RequireNonNegative("selling and admin depreciation", in.DepreciationPerQuarter)
		if in.BadDebtRate > 0.05 {
			r = append(r, validation.Warningf(
				"bad debt rate of %.1f%% is unusually high",
				in.BadDebtRate*constants.PercentageMultiplier))
		}
	default:
		r = append(r, validation.Errorf(
			"unknown selling and admin mode %q (want simple or detailed)", string(in.Mode)))
	}

	return r
}

// Calculate computes the selling and administrative budget from the sales
// budget.
func (s *SellingAdminBudget) Calculate(in SellingAdminInput, sales SalesBudgetOutput) SellingAdminOutput {
	out := SellingAdminOutput{Mode: in.Mode}

	if in.Mode == SGAModeDetailed {
		if in.CommissionRate > 0 {
			out.Commissions = sales.Revenue.Scale(in.CommissionRate)
		} else {
			out.Commissions = sales.Units.Scale(in.CommissionPerUnit)
		}
		perUnit := in.DistributionPerUnit + in.CustomerServicePerUnit + in.WarrantyPerUnit
		out.Variable = out.Commissions.Add(sales.Units.Scale(perUnit))
		out.Fixed = quarterly.Constant(in.MarketingPerQuarter +
			in.AdminSalariesPerQuarter + in.OccupancyPerQuarter + in.TechnologyPerQuarter)
		out.BadDebt = sales.CreditSales.Scale(in.BadDebtRate)
		out.Depreciation = quarterly.Constant(in.DepreciationPerQuarter)
	} else {
		out.Variable = sales.Revenue.Scale(in.SellingPercentOfRevenue + in.AdminPercentOfRevenue)
		out.Fixed = quarterly.Constant(in.FixedPerQuarter)
	}

	out.Total = quarterly.Sum(out.Variable, out.Fixed, out.BadDebt, out.Depreciation)
	out.NonCash = out.BadDebt.Add(out.Depreciation)
	out.CashSGA = out.Total.Sub(out.NonCash)

	out.PercentOfSales = out.Total.Map(func(q int, v float64) float64 {
		return mathutil.CalculatePercentage(v, sales.Revenue.Quarter(q))
	})
	out.PercentOfSales.Yearly = mathutil.CalculatePercentage(out.Total.Yearly, sales.Revenue.Yearly)

	out.PerUnitSold = out.Total.Map(func(q int, v float64) float64 {
		return mathutil.SafeDivide(v, sales.Units.Quarter(q))
	})
	out.PerUnitSold.Yearly = mathutil.SafeDivide(out.Total.Yearly, sales.Units.Yearly)

	s.logger.Debug("computed selling and administrative budget",
		zap.String("op", "schedule.SellingAdminBudget.Calculate"),
		zap.String("mode", string(in.Mode)),
		zap.Float64("yearlyExpense", out.Total.Yearly),
	)

	return out
}

// Table renders the selling and administrative budget.
func (o SellingAdminOutput) Table() output.Table {
	var rows []output.Row
	if o.Mode == SGAModeDetailed && !o.Commissions.IsZero() {
		rows = append(rows, seriesRow("Sales Commissions", o.Commissions))
	}
	rows = append(rows,
		seriesRow("Variable Expenses", o.Variable),
		seriesRow("Fixed Expenses", o.Fixed),
	)
	if !o.BadDebt.IsZero() {
		rows = append(rows, seriesRow("Bad Debt Expense", o.BadDebt))
	}
	if !o.Depreciation.IsZero() {
		rows = append(rows, seriesRow("Depreciation", o.Depreciation))
	}
	rows = append(rows,
		seriesRow("Total Selling and Administrative", o.Total).Styled(output.StyleTotal),
		seriesRow("Cash Selling and Administrative", o.CashSGA),
		output.BlankRow(),
		seriesRow("Percent of Sales", o.PercentOfSales),
		seriesRow("Expense per Unit Sold", o.PerUnitSold),
	)
	return output.Table{
		Number:  NumberSellingAdmin,
		Title:   "Selling and Administrative Expense Budget",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

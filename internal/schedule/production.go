package schedule

import (
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// ProductionBudgetInput holds the assumptions for Schedule 2.
type ProductionBudgetInput struct {
	BeginningInventoryUnits float64
	EndingInventoryRatio    float64 // fraction of next quarter's sales
	JIT                     bool
	CapacityPerQuarter      float64 // 0 means unconstrained
	MinimumBatchSize        float64 // 0 means no batch rounding
	OptimalBatchSize        float64 // preferred over minimum when set
	CarryingCostPerUnit     float64
	ObsolescenceRiskPercent float64 // fraction of ending inventory value at risk
}

// ProductionBudgetOutput is the computed production budget. UnitsToProduce
// preserves the production identity (sales + ending - beginning);
// BatchAdjustedUnits and the cost lines are additive side calculations.
type ProductionBudgetOutput struct {
	SalesUnits             quarterly.Series
	DesiredEndingInventory quarterly.Series
	BeginningInventory     quarterly.Series
	UnitsToProduce         quarterly.Series
	BatchAdjustedUnits     quarterly.Series
	CapacityUtilization    quarterly.Series // percent; zero when unconstrained
	CarryingCost           quarterly.Series
	ObsolescenceCost       quarterly.Series
	JIT                    bool
	Advisories             validation.Result // computed while calculating
}

// ProductionBudget computes Schedule 2.
type ProductionBudget struct {
	logger *zap.Logger
}

// NewProductionBudget creates a production budget calculator.
func NewProductionBudget(logger *zap.Logger) *ProductionBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionBudget{logger: logger}
}

// Validate checks the production assumptions against the sales budget.
func (p *ProductionBudget) Validate(in ProductionBudgetInput, sales SalesBudgetOutput) validation.Result {
	var r validation.Result

	r.RequireNonNegative("beginning inventory units", in.BeginningInventoryUnits)
	r.RequireFraction("ending inventory ratio", in.EndingInventoryRatio)
	r.RequireNonNegative("capacity per quarter", in.CapacityPerQuarter)
	r.RequireNonNegative("minimum batch size", in.MinimumBatchSize)
	r.RequireNonNegative("optimal batch size", in.OptimalBatchSize)
	r.RequireNonNegative("carrying cost per unit", in.CarryingCostPerUnit)
	r.RequireFraction("obsolescence risk percent", in.ObsolescenceRiskPercent)

	if in.JIT && in.EndingInventoryRatio > 0 {
		r = append(r, validation.Warningf(
			"JIT mode ignores the ending inventory ratio of %v", in.EndingInventoryRatio))
	}
	if in.JIT && in.BeginningInventoryUnits > 0 {
		r = append(r, validation.Warningf(
			"JIT mode with %v units of beginning inventory - the buffer drains in Q1",
			in.BeginningInventoryUnits))
	}
	if sales.NextYearQ1Units == 0 && !in.JIT && in.EndingInventoryRatio > 0 {
		r = append(r, validation.Warningf(
			"no next-year Q1 forecast - Q4 ending inventory falls back to current Q1 sales"))
	}
	if in.CapacityPerQuarter > 0 {
		for q, units := range sales.Units.Quarters() {
			if units > in.CapacityPerQuarter {
				r = append(r, validation.Warningf(
					"Q%d sales of %v exceed quarterly capacity of %v", q+1, units, in.CapacityPerQuarter))
			}
		}
	}

	return r
}

// Calculate computes the production budget from the sales budget. It
// assumes Validate reported no blocking errors.
func (p *ProductionBudget) Calculate(in ProductionBudgetInput, sales SalesBudgetOutput) ProductionBudgetOutput {
	var advisories validation.Result

	lookahead := [4]float64{
		sales.Units.Q2,
		sales.Units.Q3,
		sales.Units.Q4,
		sales.NextYearQ1Units,
	}
	if lookahead[3] == 0 {
		lookahead[3] = sales.Units.Q1
	}

	var ending quarterly.Series
	if !in.JIT {
		ending = quarterly.New(
			in.EndingInventoryRatio*lookahead[0],
			in.EndingInventoryRatio*lookahead[1],
			in.EndingInventoryRatio*lookahead[2],
			in.EndingInventoryRatio*lookahead[3],
		)
	}

	beginning := quarterly.New(in.BeginningInventoryUnits, ending.Q1, ending.Q2, ending.Q3)
	production := sales.Units.Add(ending).Sub(beginning)

	if production.HasNegative() {
		advisories = append(advisories, validation.Warningf(
			"beginning inventory exceeds demand in at least one quarter - negative production scheduled"))
	}

	var utilization quarterly.Series
	if in.CapacityPerQuarter > 0 {
		clipped := production.Map(func(q int, v float64) float64 {
			if v > in.CapacityPerQuarter {
				advisories = append(advisories, validation.Warningf(
					"Q%d production of %.0f clipped to capacity of %.0f - demand will go unmet",
					q, v, in.CapacityPerQuarter))
				return in.CapacityPerQuarter
			}
			return v
		})
		utilization = clipped.Map(func(q int, v float64) float64 {
			return mathutil.CalculatePercentage(v, in.CapacityPerQuarter)
		})
		utilization.Yearly = mathutil.CalculatePercentage(
			clipped.Yearly, in.CapacityPerQuarter*4)
		production = clipped
	}

	batch := in.OptimalBatchSize
	if batch == 0 {
		batch = in.MinimumBatchSize
	}
	batchAdjusted := production
	if batch > 0 {
		batchAdjusted = production.Map(func(q int, v float64) float64 {
			return mathutil.RoundUpToMultiple(v, batch)
		})
	}

	carrying := ending.Scale(in.CarryingCostPerUnit)
	obsolescence := carrying.Scale(in.ObsolescenceRiskPercent)

	p.logger.Debug("computed production budget",
		zap.String("op", "schedule.ProductionBudget.Calculate"),
		zap.Float64("yearlyUnits", production.Yearly),
	)

	return ProductionBudgetOutput{
		SalesUnits:             sales.Units,
		DesiredEndingInventory: ending,
		BeginningInventory:     beginning,
		UnitsToProduce:         production,
		BatchAdjustedUnits:     batchAdjusted,
		CapacityUtilization:    utilization,
		CarryingCost:           carrying,
		ObsolescenceCost:       obsolescence,
		JIT:                    in.JIT,
		Advisories:             advisories,
	}
}

// Table renders the production budget for presentation and export.
func (o ProductionBudgetOutput) Table() output.Table {
	rows := []output.Row{
		seriesRow("Sales Units", o.SalesUnits),
		seriesRow("Add: Desired Ending Inventory", o.DesiredEndingInventory),
		seriesRow("Less: Beginning Inventory", o.BeginningInventory),
		seriesRow("Units to Produce", o.UnitsToProduce).Styled(output.StyleSubtotal),
	}
	if o.BatchAdjustedUnits != o.UnitsToProduce {
		rows = append(rows, seriesRow("Batch-Adjusted Production", o.BatchAdjustedUnits))
	}
	if !o.CapacityUtilization.IsZero() {
		rows = append(rows, seriesRow("Capacity Utilization (%)", o.CapacityUtilization))
	}
	if !o.CarryingCost.IsZero() {
		rows = append(rows,
			output.BlankRow(),
			seriesRow("Inventory Carrying Cost", o.CarryingCost),
			seriesRow("Obsolescence Risk Cost", o.ObsolescenceCost),
		)
	}
	return output.Table{
		Number:  NumberProduction,
		Title:   "Production Budget",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

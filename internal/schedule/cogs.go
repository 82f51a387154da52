package schedule

import (
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// COGSInput holds the inventory valuations for Schedule 10. Work in
// process and finished goods are year-level balances.
type COGSInput struct {
	BeginningWIPValue           float64
	EndingWIPValue              float64
	BeginningFinishedGoodsValue float64
}

// COGSOutput is the computed cost of goods sold statement. Manufacturing
// costs are quarterly; the inventory adjustments and the statement itself
// are year-level.
type COGSOutput struct {
	DirectMaterialsUsed     quarterly.Series // materials consumed, not purchased
	DirectLabor             quarterly.Series
	ManufacturingOverhead   quarterly.Series
	TotalManufacturingCosts quarterly.Series

	BeginningWIPValue       float64
	EndingWIPValue          float64
	CostOfGoodsManufactured float64

	BeginningFinishedGoodsValue float64
	EndingFinishedGoodsUnits    float64
	EndingFinishedGoodsValue    float64
	CostOfGoodsSold             float64

	UnitProductionCost float64 // cost of goods manufactured / units produced
	COGSPerUnitSold    float64
}

// COGSBudget computes Schedule 10.
type COGSBudget struct {
	logger *zap.Logger
}

// NewCOGSBudget creates a cost of goods sold calculator.
func NewCOGSBudget(logger *zap.Logger) *COGSBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &COGSBudget{logger: logger}
}

// Validate checks the inventory valuations.
func (c *COGSBudget) Validate(in COGSInput, sales SalesBudgetOutput, production ProductionBudgetOutput, materials DirectMaterialOutput, labor DirectLaborOutput, overhead ManufacturingOverheadOutput) validation.Result {
	var r validation.Result

	r.RequireNonNegative("beginning work in process value", in.BeginningWIPValue)
	r.RequireNonNegative("ending work in process value", in.EndingWIPValue)
	r.RequireNonNegative("beginning finished goods value", in.BeginningFinishedGoodsValue)

	if production.UnitsToProduce.Yearly <= 0 {
		r = append(r, validation.Errorf(
			"cannot derive a unit production cost with no units produced"))
	}

	return r
}

// Calculate builds the cost of goods sold statement from the manufacturing
// cost schedules and the inventory valuations.
func (c *COGSBudget) Calculate(in COGSInput, sales SalesBudgetOutput, production ProductionBudgetOutput, materials DirectMaterialOutput, labor DirectLaborOutput, overhead ManufacturingOverheadOutput) COGSOutput {
	out := COGSOutput{
		DirectMaterialsUsed:   materials.TotalUsageCost,
		DirectLabor:           labor.TotalCost,
		ManufacturingOverhead: overhead.Total,

		BeginningWIPValue:           in.BeginningWIPValue,
		EndingWIPValue:              in.EndingWIPValue,
		BeginningFinishedGoodsValue: in.BeginningFinishedGoodsValue,
	}
	out.TotalManufacturingCosts = quarterly.Sum(
		out.DirectMaterialsUsed, out.DirectLabor, out.ManufacturingOverhead)

	out.CostOfGoodsManufactured = in.BeginningWIPValue +
		out.TotalManufacturingCosts.Yearly - in.EndingWIPValue

	out.UnitProductionCost = mathutil.SafeDivide(
		out.CostOfGoodsManufactured, production.UnitsToProduce.Yearly)

	// Ending finished goods carry out at this year's unit cost.
	out.EndingFinishedGoodsUnits = production.DesiredEndingInventory.Q4
	out.EndingFinishedGoodsValue = out.EndingFinishedGoodsUnits * out.UnitProductionCost

	out.CostOfGoodsSold = in.BeginningFinishedGoodsValue +
		out.CostOfGoodsManufactured - out.EndingFinishedGoodsValue

	out.COGSPerUnitSold = mathutil.SafeDivide(out.CostOfGoodsSold, sales.Units.Yearly)

	c.logger.Debug("computed cost of goods sold",
		zap.String("op", "schedule.COGSBudget.Calculate"),
		zap.Float64("costOfGoodsManufactured", out.CostOfGoodsManufactured),
		zap.Float64("costOfGoodsSold", out.CostOfGoodsSold),
	)

	return out
}

// Table renders the cost of goods sold statement. Manufacturing costs
// show quarterly; the inventory adjustments are single-amount rows.
func (o COGSOutput) Table() output.Table {
	rows := []output.Row{
		seriesRow("Direct Materials Used", o.DirectMaterialsUsed),
		seriesRow("Direct Labor", o.DirectLabor),
		seriesRow("Manufacturing Overhead", o.ManufacturingOverhead),
		seriesRow("Total Manufacturing Costs", o.TotalManufacturingCosts).Styled(output.StyleSubtotal),
		output.BlankRow(),
		output.AmountRow("Beginning Work in Process", o.BeginningWIPValue),
		output.AmountRow("Ending Work in Process", -o.EndingWIPValue),
		output.AmountRow("Cost of Goods Manufactured", o.CostOfGoodsManufactured).Styled(output.StyleSubtotal),
		output.BlankRow(),
		output.AmountRow("Beginning Finished Goods", o.BeginningFinishedGoodsValue),
		output.AmountRow("Ending Finished Goods", -o.EndingFinishedGoodsValue),
		output.AmountRow("Cost of Goods Sold", o.CostOfGoodsSold).Styled(output.StyleTotal),
		output.BlankRow(),
		output.AmountRow("Unit Production Cost", o.UnitProductionCost),
		output.AmountRow("Cost of Goods Sold per Unit", o.COGSPerUnitSold),
	}
	return output.Table{
		Number:  NumberCOGS,
		Title:   "Cost of Goods Sold Budget",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

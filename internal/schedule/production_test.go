package schedule

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func baseProductionInput() ProductionBudgetInput {
	return ProductionBudgetInput{
		BeginningInventoryUnits: 2000,
		EndingInventoryRatio:    0.15,
	}
}

func baseSalesOutput(t *testing.T) SalesBudgetOutput {
	t.Helper()
	return NewSalesBudget(nil).Calculate(baseSalesInput())
}

func TestProductionBudgetValidate(t *testing.T) {
	sales := baseSalesOutput(t)
	tests := []struct {
		name       string
		mutate     func(*ProductionBudgetInput)
		wantErrors bool
	}{
		{"Baseline passes", func(in *ProductionBudgetInput) {}, false},
		{"Negative beginning inventory", func(in *ProductionBudgetInput) { in.BeginningInventoryUnits = -1 }, true},
		{"Ratio above one", func(in *ProductionBudgetInput) { in.EndingInventoryRatio = 1.5 }, true},
		{"Negative capacity", func(in *ProductionBudgetInput) { in.CapacityPerQuarter = -100 }, true},
		{"JIT with ratio warns only", func(in *ProductionBudgetInput) { in.JIT = true }, false},
	}

	calc := NewProductionBudget(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseProductionInput()
			tt.mutate(&in)
			r := calc.Validate(in, sales)
			if r.HasErrors() != tt.wantErrors {
				t.Errorf("Validate errors = %v (findings %v), expected %v", r.HasErrors(), r.Messages(), tt.wantErrors)
			}
		})
	}
}

func TestProductionBudgetBaseline(t *testing.T) {
	out := NewProductionBudget(nil).Calculate(baseProductionInput(), baseSalesOutput(t))

	// Q1 = 11000 + 0.15*13200 - 2000 = 10980.
	if math.Abs(out.UnitsToProduce.Q1-10980) > 1e-9 {
		t.Errorf("Q1 production = %v, expected 10980", out.UnitsToProduce.Q1)
	}

	// Q4 ending inventory uses the next-year Q1 lookahead (12100).
	if math.Abs(out.DesiredEndingInventory.Q4-0.15*12100) > 1e-9 {
		t.Errorf("Q4 ending inventory = %v, expected %v", out.DesiredEndingInventory.Q4, 0.15*12100)
	}

	// Beginning inventory rolls forward from each quarter's ending.
	if out.BeginningInventory.Q2 != out.DesiredEndingInventory.Q1 {
		t.Errorf("Q2 beginning %v != Q1 ending %v", out.BeginningInventory.Q2, out.DesiredEndingInventory.Q1)
	}
}

func TestProductionIdentity(t *testing.T) {
	out := NewProductionBudget(nil).Calculate(baseProductionInput(), baseSalesOutput(t))

	for q := 1; q <= 4; q++ {
		produced := out.UnitsToProduce.Quarter(q)
		ending := out.DesiredEndingInventory.Quarter(q)
		beginning := out.BeginningInventory.Quarter(q)
		sales := out.SalesUnits.Quarter(q)
		if math.Abs(produced-ending+beginning-sales) > 1e-9 {
			t.Errorf("Q%d identity violated: produced %v ending %v beginning %v sales %v",
				q, produced, ending, beginning, sales)
		}
	}
}

func TestProductionQ4FallbackWithoutLookahead(t *testing.T) {
	sales := baseSalesOutput(t)
	sales.NextYearQ1Units = 0

	out := NewProductionBudget(nil).Calculate(baseProductionInput(), sales)
	if math.Abs(out.DesiredEndingInventory.Q4-0.15*sales.Units.Q1) > 1e-9 {
		t.Errorf("Q4 ending = %v, expected fallback to current Q1 sales %v",
			out.DesiredEndingInventory.Q4, 0.15*sales.Units.Q1)
	}
}

func TestProductionJITZeroesInventory(t *testing.T) {
	in := baseProductionInput()
	in.JIT = true
	in.BeginningInventoryUnits = 0

	out := NewProductionBudget(nil).Calculate(in, baseSalesOutput(t))
	if !out.DesiredEndingInventory.IsZero() {
		t.Errorf("JIT ending inventory = %+v, expected zeroes", out.DesiredEndingInventory)
	}
	if out.UnitsToProduce != out.SalesUnits {
		t.Errorf("JIT production %+v should equal sales %+v", out.UnitsToProduce, out.SalesUnits)
	}
}

func TestProductionCapacityClipWarns(t *testing.T) {
	in := baseProductionInput()
	in.CapacityPerQuarter = 12000

	out := NewProductionBudget(nil).Calculate(in, baseSalesOutput(t))
	for q := 1; q <= 4; q++ {
		if out.UnitsToProduce.Quarter(q) > 12000 {
			t.Errorf("Q%d production %v above capacity", q, out.UnitsToProduce.Quarter(q))
		}
	}
	if len(out.Advisories.Warnings()) == 0 {
		t.Errorf("clipping must surface an advisory, got none")
	}
	if out.CapacityUtilization.Q1 <= 0 {
		t.Errorf("capacity utilization missing: %+v", out.CapacityUtilization)
	}
}

func TestProductionBatchRounding(t *testing.T) {
	in := baseProductionInput()
	in.OptimalBatchSize = 500

	out := NewProductionBudget(nil).Calculate(in, baseSalesOutput(t))
	// Raw production keeps the identity; the batch series rounds up.
	if math.Abs(out.UnitsToProduce.Q1-10980) > 1e-9 {
		t.Errorf("raw Q1 production changed: %v", out.UnitsToProduce.Q1)
	}
	if math.Abs(out.BatchAdjustedUnits.Q1-11000) > 1e-9 {
		t.Errorf("batch-adjusted Q1 = %v, expected 11000", out.BatchAdjustedUnits.Q1)
	}
	for q := 1; q <= 4; q++ {
		if out.BatchAdjustedUnits.Quarter(q) < out.UnitsToProduce.Quarter(q) {
			t.Errorf("Q%d batch adjustment rounded down", q)
		}
	}
}

func TestProductionCarryingAndObsolescenceCosts(t *testing.T) {
	in := baseProductionInput()
	in.CarryingCostPerUnit = 2
	in.ObsolescenceRiskPercent = 0.1

	out := NewProductionBudget(nil).Calculate(in, baseSalesOutput(t))
	wantCarrying := out.DesiredEndingInventory.Q1 * 2
	if math.Abs(out.CarryingCost.Q1-wantCarrying) > 1e-9 {
		t.Errorf("Q1 carrying cost = %v, expected %v", out.CarryingCost.Q1, wantCarrying)
	}
	if math.Abs(out.ObsolescenceCost.Q1-wantCarrying*0.1) > 1e-9 {
		t.Errorf("Q1 obsolescence cost = %v, expected %v", out.ObsolescenceCost.Q1, wantCarrying*0.1)
	}
}

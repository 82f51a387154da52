package schedule

import (
	"math"

	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// OverheadMode selects how Schedule 5 is costed.
type OverheadMode string

const (
	// OverheadModeSimple costs overhead from flat variable rates plus
	// fixed amounts.
	OverheadModeSimple OverheadMode = "simple"
	// OverheadModeDetailed costs overhead from an itemized category list.
	OverheadModeDetailed OverheadMode = "detailed"
	// OverheadModeABC costs overhead from activity pools.
	OverheadModeABC OverheadMode = "abc"
)

// CostBehavior classifies a detailed overhead category.
type CostBehavior string

const (
	// BehaviorFixed is a flat amount per quarter.
	BehaviorFixed CostBehavior = "fixed"
	// BehaviorVariable is a rate applied to a cost driver.
	BehaviorVariable CostBehavior = "variable"
)

// CostDriver names the volume a variable category scales with.
type CostDriver string

const (
	// DriverUnits scales with units produced.
	DriverUnits CostDriver = "units"
	// DriverLaborHours scales with direct labor hours.
	DriverLaborHours CostDriver = "labor-hours"
	// DriverMachineHours scales with machine hours.
	DriverMachineHours CostDriver = "machine-hours"
)

// AllocationBase names the denominator of the predetermined overhead rate.
type AllocationBase string

const (
	// AllocateByUnits divides yearly overhead by yearly units produced.
	AllocateByUnits AllocationBase = "units"
	// AllocateByLaborHours divides yearly overhead by yearly labor hours.
	AllocateByLaborHours AllocationBase = "labor-hours"
	// AllocateByMachineHours divides yearly overhead by yearly machine
	// hours, derived from machine hours per unit.
	AllocateByMachineHours AllocationBase = "machine-hours"
)

// OverheadCostCategory is one line of a detailed overhead budget. Fixed
// categories take Amount as a flat per-quarter cost; variable categories
// take it as a rate per unit of the cost driver.
type OverheadCostCategory struct {
	Name       string
	Behavior   CostBehavior
	Amount     float64
	CostDriver CostDriver
	IsNonCash  bool
}

// ActivityBasedCosting holds the pool assumptions for ABC mode, grouped
// by the cost hierarchy level each activity belongs to.
type ActivityBasedCosting struct {
	// Unit level
	IndirectMaterialPerUnit float64
	QualityCostPerUnit      float64
	MachineHoursPerUnit     float64
	MachineHourRate         float64

	// Batch level
	UnitsPerProductionRun float64 // 0 disables run-count derivation
	CostPerProductionRun  float64
	SetupCostPerRun       float64

	// Product level
	InspectionsPerQuarter      float64
	CostPerInspection          float64
	QualityControlSalariesPerQ float64

	// Facility level. Utilities are classified fixed unless flagged
	// variable, even though they are priced per unit.
	FacilityCostPerQuarter float64
	UtilitiesPerUnit       float64
	UtilitiesAreVariable   bool
	DepreciationPerQuarter float64
}

// ManufacturingOverheadInput holds the assumptions for Schedule 5.
type ManufacturingOverheadInput struct {
	Mode OverheadMode

	// Simple mode
	VariableRatePerUnit      float64
	VariableRatePerLaborHour float64
	FixedPerQuarter          float64
	DepreciationPerQuarter   float64

	// Detailed mode
	Categories          []OverheadCostCategory
	MachineHoursPerUnit float64

	// ABC mode
	ABC *ActivityBasedCosting

	AllocationBase AllocationBase // empty defaults to units
}

// OverheadLineItem is one computed cost line with its classification.
type OverheadLineItem struct {
	Name     string
	Behavior CostBehavior
	Cost     quarterly.Series
	NonCash  bool
}

// ActivityPool is one computed ABC cost pool.
type ActivityPool struct {
	Level string
	Cost  quarterly.Series
}

// ManufacturingOverheadOutput is the computed overhead budget.
type ManufacturingOverheadOutput struct {
	Variable     quarterly.Series
	Fixed        quarterly.Series
	Depreciation quarterly.Series
	Total        quarterly.Series
	CashOverhead quarterly.Series // total less non-cash items

	PredeterminedRate float64          // yearly overhead / yearly allocation base
	OverheadPerUnit   quarterly.Series // rate series; yearly uses yearly units

	LineItems []OverheadLineItem // detailed mode
	Pools     []ActivityPool     // abc mode
	Mode      OverheadMode
}

// ManufacturingOverheadBudget computes Schedule 5.
type ManufacturingOverheadBudget struct {
	logger *zap.Logger
}

// NewManufacturingOverheadBudget creates an overhead budget calculator.
func NewManufacturingOverheadBudget(logger *zap.Logger) *ManufacturingOverheadBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManufacturingOverheadBudget{logger: logger}
}

// Validate checks the overhead assumptions. labor may be nil when no
// category or rate references labor hours.
func (m *ManufacturingOverheadBudget) Validate(in ManufacturingOverheadInput, production ProductionBudgetOutput, labor *DirectLaborOutput) validation.Result {
	var r validation.Result

	switch in.Mode {
	case OverheadModeSimple:
		r.RequireNonNegative("variable overhead rate per unit", in.VariableRatePerUnit)
		r.RequireNonNegative("variable overhead rate per labor hour", in.VariableRatePerLaborHour)
		r.RequireNonNegative("fixed overhead per quarter", in.FixedPerQuarter)
		r.RequireNonNegative("overhead depreciation per quarter", in.DepreciationPerQuarter)
		if in.VariableRatePerLaborHour > 0 && labor == nil {
			r = append(r, validation.Errorf(
				"overhead rate per labor hour requires the direct labor budget"))
		}
	case OverheadModeDetailed:
		if len(in.Categories) == 0 {
			r = append(r, validation.Errorf("detailed overhead requires at least one cost category"))
		}
		for _, c := range in.Categories {
			if c.Name == "" {
				r = append(r, validation.Errorf("every overhead category needs a name"))
				continue
			}
			r.RequireNonNegative(c.Name+" amount", c.Amount)
			switch c.Behavior {
			case BehaviorFixed:
			case BehaviorVariable:
				switch c.CostDriver {
				case DriverUnits:
				case DriverLaborHours:
					if labor == nil {
						r = append(r, validation.Errorf(
							"%s is driven by labor hours but no direct labor budget is available", c.Name))
					}
				case DriverMachineHours:
					if in.MachineHoursPerUnit <= 0 {
						r = append(r, validation.Errorf(
							"%s is driven by machine hours but machine hours per unit is not set", c.Name))
					}
				default:
					r = append(r, validation.Errorf(
						"%s has unknown cost driver %q (want units, labor-hours, or machine-hours)",
						c.Name, string(c.CostDriver)))
				}
			default:
				r = append(r, validation.Errorf(
					"%s has unknown behavior %q (want fixed or variable)", c.Name, string(c.Behavior)))
			}
		}
	case OverheadModeABC:
		if in.ABC == nil {
			r = append(r, validation.Errorf("abc overhead requires the activity-based costing block"))
			break
		}
		a := in.ABC
		r.RequireNonNegative("indirect material per unit", a.IndirectMaterialPerUnit)
		r.RequireNonNegative("quality cost per unit", a.QualityCostPerUnit)
		r.RequireNonNegative("machine hours per unit", a.MachineHoursPerUnit)
		r.RequireNonNegative("machine hour rate", a.MachineHourRate)
		r.RequireNonNegative("units per production run", a.UnitsPerProductionRun)
		r.RequireNonNegative("cost per production run", a.CostPerProductionRun)
		r.RequireNonNegative("setup cost per run", a.SetupCostPerRun)
		r.RequireNonNegative("inspections per quarter", a.InspectionsPerQuarter)
		r.RequireNonNegative("cost per inspection", a.CostPerInspection)
		r.RequireNonNegative("quality control salaries", a.QualityControlSalariesPerQ)
		r.RequireNonNegative("facility cost per quarter", a.FacilityCostPerQuarter)
		r.RequireNonNegative("utilities per unit", a.UtilitiesPerUnit)
		r.RequireNonNegative("abc depreciation per quarter", a.DepreciationPerQuarter)
		if (a.CostPerProductionRun > 0 || a.SetupCostPerRun > 0) && a.UnitsPerProductionRun <= 0 {
			r = append(r, validation.Errorf(
				"per-run costs require units per production run to derive run counts"))
		}
	default:
		r = append(r, validation.Errorf(
			"unknown overhead mode %q (want simple, detailed, or abc)", string(in.Mode)))
	}

	switch in.AllocationBase {
	case "", AllocateByUnits:
	case AllocateByLaborHours:
		if labor == nil {
			r = append(r, validation.Errorf(
				"labor-hours allocation base requires the direct labor budget"))
		}
	case AllocateByMachineHours:
		if in.machineHoursPerUnit() <= 0 {
			r = append(r, validation.Errorf(
				"machine-hours allocation base requires machine hours per unit"))
		}
	default:
		r = append(r, validation.Errorf(
			"unknown allocation base %q (want units, labor-hours, or machine-hours)", string(in.AllocationBase)))
	}

	return r
}

// Calculate computes the overhead budget. labor may be nil when nothing
// references labor hours; Validate enforces that.
func (m *ManufacturingOverheadBudget) Calculate(in ManufacturingOverheadInput, production ProductionBudgetOutput, labor *DirectLaborOutput) ManufacturingOverheadOutput {
	var laborHours quarterly.Series
	if labor != nil {
		laborHours = labor.TotalHours
	}
	units := production.UnitsToProduce

	out := ManufacturingOverheadOutput{Mode: in.Mode}
	switch in.Mode {
	case OverheadModeDetailed:
		m.calculateDetailed(in, units, laborHours, &out)
	case OverheadModeABC:
		m.calculateABC(*in.ABC, units, &out)
	default:
		m.calculateSimple(in, units, laborHours, &out)
	}

	out.Total = quarterly.Sum(out.Variable, out.Fixed, out.Depreciation)
	out.CashOverhead = out.Total.Sub(out.nonCash())

	base := units.Yearly
	switch in.AllocationBase {
	case AllocateByLaborHours:
		base = laborHours.Yearly
	case AllocateByMachineHours:
		base = units.Yearly * in.machineHoursPerUnit()
	}
	out.PredeterminedRate = mathutil.SafeDivide(out.Total.Yearly, base)

	out.OverheadPerUnit = out.Total.Map(func(q int, v float64) float64 {
		return mathutil.SafeDivide(v, units.Quarter(q))
	})
	out.OverheadPerUnit.Yearly = mathutil.SafeDivide(out.Total.Yearly, units.Yearly)

	m.logger.Debug("computed manufacturing overhead budget",
		zap.String("op", "schedule.ManufacturingOverheadBudget.Calculate"),
		zap.String("mode", string(in.Mode)),
		zap.Float64("yearlyOverhead", out.Total.Yearly),
	)

	return out
}

func (m *ManufacturingOverheadBudget) calculateSimple(in ManufacturingOverheadInput, units, laborHours quarterly.Series, out *ManufacturingOverheadOutput) {
	out.Variable = units.Scale(in.VariableRatePerUnit).
		Add(laborHours.Scale(in.VariableRatePerLaborHour))
	out.Fixed = quarterly.Constant(in.FixedPerQuarter)
	out.Depreciation = quarterly.Constant(in.DepreciationPerQuarter)
}

func (m *ManufacturingOverheadBudget) calculateDetailed(in ManufacturingOverheadInput, units, laborHours quarterly.Series, out *ManufacturingOverheadOutput) {
	machineHours := units.Scale(in.MachineHoursPerUnit)
	for _, c := range in.Categories {
		var cost quarterly.Series
		if c.Behavior == BehaviorFixed {
			cost = quarterly.Constant(c.Amount)
		} else {
			driver := units
			switch c.CostDriver {
			case DriverLaborHours:
				driver = laborHours
			case DriverMachineHours:
				driver = machineHours
			}
			cost = driver.Scale(c.Amount)
		}

		out.LineItems = append(out.LineItems, OverheadLineItem{
			Name:     c.Name,
			Behavior: c.Behavior,
			Cost:     cost,
			NonCash:  c.IsNonCash,
		})
		switch {
		case c.IsNonCash:
			out.Depreciation = out.Depreciation.Add(cost)
		case c.Behavior == BehaviorFixed:
			out.Fixed = out.Fixed.Add(cost)
		default:
			out.Variable = out.Variable.Add(cost)
		}
	}
}

func (m *ManufacturingOverheadBudget) calculateABC(a ActivityBasedCosting, units quarterly.Series, out *ManufacturingOverheadOutput) {
	unitLevel := units.Scale(a.IndirectMaterialPerUnit).
		Add(units.Scale(a.QualityCostPerUnit)).
		Add(units.Scale(a.MachineHoursPerUnit * a.MachineHourRate))

	var batchLevel quarterly.Series
	if a.UnitsPerProductionRun > 0 {
		runs := units.Map(func(q int, v float64) float64 {
			return math.Ceil(v / a.UnitsPerProductionRun)
		})
		batchLevel = runs.Scale(a.CostPerProductionRun + a.SetupCostPerRun)
	}

	productLevel := quarterly.Constant(a.InspectionsPerQuarter*a.CostPerInspection +
		a.QualityControlSalariesPerQ)

	facility := quarterly.Constant(a.FacilityCostPerQuarter).
		Add(units.Scale(a.UtilitiesPerUnit))

	out.Pools = []ActivityPool{
		{Level: "Unit", Cost: unitLevel},
		{Level: "Batch", Cost: batchLevel},
		{Level: "Product", Cost: productLevel},
		{Level: "Facility", Cost: facility},
	}

	out.Variable = unitLevel.Add(batchLevel)
	out.Fixed = productLevel.Add(quarterly.Constant(a.FacilityCostPerQuarter))
	utilities := units.Scale(a.UtilitiesPerUnit)
	if a.UtilitiesAreVariable {
		out.Variable = out.Variable.Add(utilities)
	} else {
		out.Fixed = out.Fixed.Add(utilities)
	}
	out.Depreciation = quarterly.Constant(a.DepreciationPerQuarter)
}

// machineHoursPerUnit resolves the machine-hours driver; ABC mode may
// carry it inside the activity block instead of the top-level field.
func (in ManufacturingOverheadInput) machineHoursPerUnit() float64 {
	if in.MachineHoursPerUnit > 0 {
		return in.MachineHoursPerUnit
	}
	if in.Mode == OverheadModeABC && in.ABC != nil {
		return in.ABC.MachineHoursPerUnit
	}
	return 0
}

// nonCash sums the lines excluded from cash overhead; outside detailed
// mode that is just depreciation.
func (o ManufacturingOverheadOutput) nonCash() quarterly.Series {
	if o.Mode != OverheadModeDetailed {
		return o.Depreciation
	}
	var total quarterly.Series
	for _, li := range o.LineItems {
		if li.NonCash {
			total = total.Add(li.Cost)
		}
	}
	return total
}

// Table renders the overhead budget for presentation and export.
func (o ManufacturingOverheadOutput) Table() output.Table {
	var rows []output.Row
	switch o.Mode {
	case OverheadModeDetailed:
		for _, li := range o.LineItems {
			rows = append(rows, seriesRow(li.Name, li.Cost))
		}
		rows = append(rows, output.BlankRow())
	case OverheadModeABC:
		for _, p := range o.Pools {
			if p.Cost.IsZero() {
				continue
			}
			rows = append(rows, seriesRow(p.Level+"-Level Activities", p.Cost))
		}
		rows = append(rows, output.BlankRow())
	}
	rows = append(rows,
		seriesRow("Variable Overhead", o.Variable),
		seriesRow("Fixed Overhead", o.Fixed),
		seriesRow("Depreciation", o.Depreciation),
		seriesRow("Total Manufacturing Overhead", o.Total).Styled(output.StyleTotal),
		seriesRow("Cash Overhead", o.CashOverhead),
		output.BlankRow(),
		seriesRow("Overhead per Unit", o.OverheadPerUnit),
	)
	return output.Table{
		Number:  NumberOverhead,
		Title:   "Manufacturing Overhead Budget",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

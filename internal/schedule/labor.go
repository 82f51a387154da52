package schedule

import (
	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// LaborCategory describes one class of direct labor.
type LaborCategory struct {
	Name         string
	HoursPerUnit float64
	WageRate     float64
}

// DirectLaborInput holds the assumptions for Schedule 4. Exactly one of
// the simple fields (HoursPerUnit/WageRate) or Categories must be
// supplied; the two shapes are mutually exclusive.
type DirectLaborInput struct {
	HoursPerUnit float64
	WageRate     float64
	Categories   []LaborCategory

	OvertimeThresholdHours  float64 // per quarter; 0 disables overtime costing
	OvertimeMultiplier      float64 // 0 uses the default premium
	FringeBenefitRate       float64
	EfficiencyRate          float64 // 0 treated as 1.0
	WageInflationPerQuarter float64
	AverageHoursPerEmployee float64 // per quarter, for FTE analytics
	AnnualTurnoverRate      float64
	TrainingCostPerEmployee float64
}

// LaborCategorySchedule is the per-category computation. WageRate is a
// rate series whose Yearly is the hours-weighted average wage.
type LaborCategorySchedule struct {
	Name          string
	HoursRequired quarterly.Series
	RegularHours  quarterly.Series
	OvertimeHours quarterly.Series
	WageRate      quarterly.Series
	RegularCost   quarterly.Series
	OvertimeCost  quarterly.Series
	TotalCost     quarterly.Series // fringe-loaded
}

// DirectLaborOutput is the computed direct labor budget.
type DirectLaborOutput struct {
	Categories       []LaborCategorySchedule
	TotalHours       quarterly.Series
	TotalRegularCost quarterly.Series
	TotalOvertime    quarterly.Series
	FringeBenefits   quarterly.Series
	TotalCost        quarterly.Series // wages + overtime + fringe

	LaborCostPerUnit quarterly.Series // rate series; yearly uses yearly units
	AverageLaborRate float64          // yearly cost / yearly hours
	FTERequired      quarterly.Series // rate series; yearly averages the quarters
	TurnoverCost     quarterly.Series
	EfficiencyRate   float64
	MultiCategory    bool
}

// DirectLaborBudget computes Schedule 4.
type DirectLaborBudget struct {
	logger *zap.Logger
}

// NewDirectLaborBudget creates a direct labor budget calculator.
func NewDirectLaborBudget(logger *zap.Logger) *DirectLaborBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectLaborBudget{logger: logger}
}

// Validate checks the labor assumptions.
func (d *DirectLaborBudget) Validate(in DirectLaborInput, production ProductionBudgetOutput) validation.Result {
	var r validation.Result

	simple := in.HoursPerUnit != 0 || in.WageRate != 0
	multi := len(in.Categories) > 0
	switch {
	case simple && multi:
		r = append(r, validation.Errorf(
			"simple labor fields and labor categories are mutually exclusive - supply one shape"))
	case !simple && !multi:
		r = append(r, validation.Errorf(
			"labor requires either hours-per-unit and wage rate or a list of categories"))
	case simple:
		r.RequirePositive("hours per unit", in.HoursPerUnit)
		r.RequirePositive("wage rate", in.WageRate)
	default:
		for _, c := range in.Categories {
			if c.Name == "" {
				r = append(r, validation.Errorf("every labor category needs a name"))
				continue
			}
			r.RequirePositive(c.Name+" hours per unit", c.HoursPerUnit)
			r.RequirePositive(c.Name+" wage rate", c.WageRate)
		}
	}

	r.RequireNonNegative("overtime threshold hours", in.OvertimeThresholdHours)
	r.RequireNonNegative("overtime multiplier", in.OvertimeMultiplier)
	if in.OvertimeMultiplier != 0 && in.OvertimeMultiplier < 1 {
		r = append(r, validation.Errorf(
			"overtime multiplier below 1 would cost overtime cheaper than regular time"))
	}
	r.RequireFraction("fringe benefit rate", in.FringeBenefitRate)
	if in.EfficiencyRate != 0 {
		r.RequireFraction("efficiency rate", in.EfficiencyRate)
		if in.EfficiencyRate < 0.5 {
			r = append(r, validation.Warningf(
				"efficiency rate of %.0f%% nearly doubles required hours - verify",
				in.EfficiencyRate*constants.PercentageMultiplier))
		}
	}
	r.RequireFraction("wage inflation per quarter", in.WageInflationPerQuarter)
	r.RequireNonNegative("average hours per employee", in.AverageHoursPerEmployee)
	r.RequireFraction("annual turnover rate", in.AnnualTurnoverRate)
	r.RequireNonNegative("training cost per employee", in.TrainingCostPerEmployee)

	if in.OvertimeThresholdHours == 0 && (simple || multi) {
		r = append(r, validation.Warningf(
			"no overtime threshold - all hours are costed at the regular rate"))
	}

	return r
}

// Calculate computes the direct labor budget from the production budget.
// It assumes Validate reported no blocking errors.
func (d *DirectLaborBudget) Calculate(in DirectLaborInput, production ProductionBudgetOutput) DirectLaborOutput {
	efficiency := in.EfficiencyRate
	if efficiency == 0 {
		efficiency = 1
	}
	multiplier := in.OvertimeMultiplier
	if multiplier == 0 {
		multiplier = constants.DefaultOvertimeMultiplier
	}

	categories := in.Categories
	multi := len(categories) > 0
	if !multi {
		categories = []LaborCategory{{Name: "Direct Labor", HoursPerUnit: in.HoursPerUnit, WageRate: in.WageRate}}
	}

	out := DirectLaborOutput{
		EfficiencyRate: efficiency,
		MultiCategory:  multi,
	}

	for _, c := range categories {
		cs := d.calculateCategory(c, in, production.UnitsToProduce, efficiency, multiplier)
		out.Categories = append(out.Categories, cs)
		out.TotalHours = out.TotalHours.Add(cs.HoursRequired)
		out.TotalRegularCost = out.TotalRegularCost.Add(cs.RegularCost)
		out.TotalOvertime = out.TotalOvertime.Add(cs.OvertimeCost)
	}

	wages := out.TotalRegularCost.Add(out.TotalOvertime)
	out.FringeBenefits = wages.Scale(in.FringeBenefitRate)
	out.TotalCost = wages.Add(out.FringeBenefits)

	out.LaborCostPerUnit = out.TotalCost.Map(func(q int, v float64) float64 {
		return mathutil.SafeDivide(v, production.UnitsToProduce.Quarter(q))
	})
	out.LaborCostPerUnit.Yearly = mathutil.SafeDivide(out.TotalCost.Yearly, production.UnitsToProduce.Yearly)

	out.AverageLaborRate = mathutil.SafeDivide(out.TotalCost.Yearly, out.TotalHours.Yearly)

	if in.AverageHoursPerEmployee > 0 {
		out.FTERequired = out.TotalHours.Scale(1 / in.AverageHoursPerEmployee)
		out.FTERequired.Yearly = out.TotalHours.Yearly /
			(in.AverageHoursPerEmployee * constants.QuartersPerYear)
		if in.AnnualTurnoverRate > 0 && in.TrainingCostPerEmployee > 0 {
			out.TurnoverCost = out.FTERequired.Map(func(q int, fte float64) float64 {
				return fte * (in.AnnualTurnoverRate / constants.QuartersPerYear) * in.TrainingCostPerEmployee
			})
		}
	}

	d.logger.Debug("computed direct labor budget",
		zap.String("op", "schedule.DirectLaborBudget.Calculate"),
		zap.Bool("multiCategory", multi),
		zap.Float64("yearlyCost", out.TotalCost.Yearly),
	)

	return out
}

func (d *DirectLaborBudget) calculateCategory(c LaborCategory, in DirectLaborInput, production quarterly.Series, efficiency, multiplier float64) LaborCategorySchedule {
	// Lower efficiency inflates required hours before the overtime split.
	hours := production.Scale(c.HoursPerUnit / efficiency)

	regular := hours
	overtime := quarterly.Series{}
	if in.OvertimeThresholdHours > 0 {
		regular = hours.Map(func(q int, v float64) float64 {
			return mathutil.Min(v, in.OvertimeThresholdHours)
		})
		overtime = hours.Sub(regular)
	}

	wage := quarterly.Series{}.Map(func(q int, _ float64) float64 {
		return mathutil.Compound(c.WageRate, in.WageInflationPerQuarter, q-1)
	})

	regularCost := regular.Mul(wage)
	overtimeCost := overtime.Mul(wage).Scale(multiplier)
	total := regularCost.Add(overtimeCost).Scale(1 + in.FringeBenefitRate)

	return LaborCategorySchedule{
		Name:          c.Name,
		HoursRequired: hours,
		RegularHours:  regular,
		OvertimeHours: overtime,
		WageRate:      quarterly.WeightedAverage(wage, hours),
		RegularCost:   regularCost,
		OvertimeCost:  overtimeCost,
		TotalCost:     total,
	}
}

// Table renders the direct labor budget for presentation and export.
func (o DirectLaborOutput) Table() output.Table {
	var rows []output.Row
	if o.MultiCategory {
		for _, c := range o.Categories {
			rows = append(rows,
				output.SectionRow(c.Name),
				seriesRow("Hours Required", c.HoursRequired),
				seriesRow("Regular Hours", c.RegularHours),
				seriesRow("Overtime Hours", c.OvertimeHours),
				seriesRow("Wage Rate", c.WageRate),
				seriesRow("Category Cost (with Fringe)", c.TotalCost).Styled(output.StyleSubtotal),
				output.BlankRow(),
			)
		}
	}
	rows = append(rows,
		seriesRow("Total Labor Hours", o.TotalHours),
		seriesRow("Regular Wages", o.TotalRegularCost),
		seriesRow("Overtime Wages", o.TotalOvertime),
		seriesRow("Fringe Benefits", o.FringeBenefits),
		seriesRow("Total Direct Labor Cost", o.TotalCost).Styled(output.StyleTotal),
		output.BlankRow(),
		seriesRow("Labor Cost per Unit", o.LaborCostPerUnit),
	)
	if !o.FTERequired.IsZero() {
		rows = append(rows, seriesRow("FTE Required", o.FTERequired))
	}
	if !o.TurnoverCost.IsZero() {
		rows = append(rows, seriesRow("Turnover and Training Cost", o.TurnoverCost))
	}
	return output.Table{
		Number:  NumberLabor,
		Title:   "Direct Labor Budget",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

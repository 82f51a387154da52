package schedule

import (
	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// Material describes one raw material consumed by production.
type Material struct {
	Name                    string
	UnitOfMeasure           string
	QuantityPerUnit         float64 // material units per unit of output
	UnitCost                float64
	BeginningInventoryUnits float64
	EndingInventoryRatio    float64 // fraction of next quarter's need
	ScrapPercent            float64
	BulkDiscountThreshold   float64 // purchase units per quarter
	BulkDiscountRate        float64
	InflationRatePerQuarter float64
	SupplierLeadTimeWeeks   float64
	JIT                     bool
}

// DirectMaterialInput holds the assumptions for Schedule 3. The payment
// split is validated here and consumed by the cash disbursements schedule.
type DirectMaterialInput struct {
	Materials                 []Material
	PaidSameQuarterPercent    *float64
	PaidNextQuarterPercent    *float64
	NextYearQ1ProductionUnits float64 // 0 falls back to current Q1 production
}

// MaterialSchedule is the per-material computation. UnitCost is a rate
// series whose Yearly is the purchase-weighted average cost.
type MaterialSchedule struct {
	Name                     string
	UnitOfMeasure            string
	UnitsNeeded              quarterly.Series
	DesiredEndingInventory   quarterly.Series
	BeginningInventory       quarterly.Series
	PurchaseUnits            quarterly.Series
	UnitCost                 quarterly.Series
	PurchaseCost             quarterly.Series
	UsageCost                quarterly.Series
	ScrapCost                quarterly.Series
	BulkDiscountSavings      quarterly.Series
	InventoryTurnover        float64
	DaysInventoryOutstanding float64
	Critical                 bool
}

// DirectMaterialOutput aggregates all materials plus combined totals.
// RawMaterialInventoryValue rolls the dollar value of raw-material stock
// forward (beginning + purchases - usage) so the balance sheet can report
// an ending figure that articulates with the cash and COGS schedules.
type DirectMaterialOutput struct {
	Materials                 []MaterialSchedule
	TotalPurchaseCost         quarterly.Series
	TotalUsageCost            quarterly.Series
	TotalScrapCost            quarterly.Series
	TotalBulkDiscountSavings  quarterly.Series
	RawMaterialInventoryValue quarterly.Series // ending value per quarter
	BeginningInventoryValue   float64
	CriticalMaterials         []string
	PaidSameQuarterPercent    float64
	PaidNextQuarterPercent    float64
}

// DirectMaterialBudget computes Schedule 3.
type DirectMaterialBudget struct {
	logger *zap.Logger
}

// NewDirectMaterialBudget creates a direct material budget calculator.
func NewDirectMaterialBudget(logger *zap.Logger) *DirectMaterialBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectMaterialBudget{logger: logger}
}

// Validate checks the material assumptions.
func (d *DirectMaterialBudget) Validate(in DirectMaterialInput, production ProductionBudgetOutput) validation.Result {
	var r validation.Result

	if len(in.Materials) == 0 {
		r = append(r, validation.Errorf("at least one material is required"))
	}

	for _, m := range in.Materials {
		if m.Name == "" {
			r = append(r, validation.Errorf("every material needs a name"))
			continue
		}
		r.RequirePositive(m.Name+" quantity per unit", m.QuantityPerUnit)
		r.RequirePositive(m.Name+" unit cost", m.UnitCost)
		r.RequireNonNegative(m.Name+" beginning inventory", m.BeginningInventoryUnits)
		r.RequireFraction(m.Name+" ending inventory ratio", m.EndingInventoryRatio)
		r.RequireFraction(m.Name+" scrap percent", m.ScrapPercent)
		r.RequireNonNegative(m.Name+" bulk discount threshold", m.BulkDiscountThreshold)
		r.RequireFraction(m.Name+" bulk discount rate", m.BulkDiscountRate)
		r.RequireFraction(m.Name+" inflation rate", m.InflationRatePerQuarter)
		r.RequireNonNegative(m.Name+" supplier lead time", m.SupplierLeadTimeWeeks)

		if m.ScrapPercent > 0.2 {
			r = append(r, validation.Warningf(
				"%s scrap rate of %.0f%% is unusually high",
				m.Name, m.ScrapPercent*constants.PercentageMultiplier))
		}
		if m.SupplierLeadTimeWeeks > 12 {
			r = append(r, validation.Warningf(
				"%s lead time of %.0f weeks spans most of a quarter - stockout risk",
				m.Name, m.SupplierLeadTimeWeeks))
		}
		if m.JIT && m.BeginningInventoryUnits > 0 {
			r = append(r, validation.Warningf(
				"%s is JIT with beginning inventory - the buffer drains in Q1", m.Name))
		}
	}

	if in.PaidSameQuarterPercent != nil || in.PaidNextQuarterPercent != nil {
		if in.PaidSameQuarterPercent == nil || in.PaidNextQuarterPercent == nil {
			r = append(r, validation.Errorf("material payment percentages must be supplied together"))
		} else {
			r.RequireFraction("paid same quarter percent", *in.PaidSameQuarterPercent)
			r.RequireFraction("paid next quarter percent", *in.PaidNextQuarterPercent)
			r.RequireFractionSum("material payment percentages",
				*in.PaidSameQuarterPercent, *in.PaidNextQuarterPercent)
		}
	}

	if production.UnitsToProduce.HasNegative() {
		r = append(r, validation.Warningf(
			"production has a negative quarter - material requirements will follow it"))
	}

	return r
}

// Calculate computes the direct material budget from the production
// budget. It assumes Validate reported no blocking errors.
func (d *DirectMaterialBudget) Calculate(in DirectMaterialInput, production ProductionBudgetOutput) DirectMaterialOutput {
	out := DirectMaterialOutput{
		PaidSameQuarterPercent: 0.5,
		PaidNextQuarterPercent: 0.5,
	}
	if in.PaidSameQuarterPercent != nil && in.PaidNextQuarterPercent != nil {
		out.PaidSameQuarterPercent = *in.PaidSameQuarterPercent
		out.PaidNextQuarterPercent = *in.PaidNextQuarterPercent
	}

	nextQ1Production := in.NextYearQ1ProductionUnits
	if nextQ1Production == 0 {
		nextQ1Production = production.UnitsToProduce.Q1
	}
	lookahead := [4]float64{
		production.UnitsToProduce.Q2,
		production.UnitsToProduce.Q3,
		production.UnitsToProduce.Q4,
		nextQ1Production,
	}

	for _, m := range in.Materials {
		ms := d.calculateMaterial(m, production.UnitsToProduce, lookahead)
		out.Materials = append(out.Materials, ms)
		out.TotalPurchaseCost = out.TotalPurchaseCost.Add(ms.PurchaseCost)
		out.TotalUsageCost = out.TotalUsageCost.Add(ms.UsageCost)
		out.TotalScrapCost = out.TotalScrapCost.Add(ms.ScrapCost)
		out.TotalBulkDiscountSavings = out.TotalBulkDiscountSavings.Add(ms.BulkDiscountSavings)
		out.BeginningInventoryValue += m.BeginningInventoryUnits * m.UnitCost
		if ms.Critical {
			out.CriticalMaterials = append(out.CriticalMaterials, m.Name)
		}
	}

	// Dollar roll-forward of raw-material stock.
	value := out.BeginningInventoryValue
	out.RawMaterialInventoryValue = quarterly.Series{}
	for q := 1; q <= constants.QuartersPerYear; q++ {
		value += out.TotalPurchaseCost.Quarter(q) - out.TotalUsageCost.Quarter(q)
		switch q {
		case 1:
			out.RawMaterialInventoryValue.Q1 = value
		case 2:
			out.RawMaterialInventoryValue.Q2 = value
		case 3:
			out.RawMaterialInventoryValue.Q3 = value
		case 4:
			out.RawMaterialInventoryValue.Q4 = value
		}
	}
	out.RawMaterialInventoryValue.Yearly = value // ending balance, not a flow

	d.logger.Debug("computed direct material budget",
		zap.String("op", "schedule.DirectMaterialBudget.Calculate"),
		zap.Int("materials", len(out.Materials)),
		zap.Float64("yearlyPurchases", out.TotalPurchaseCost.Yearly),
	)

	return out
}

func (d *DirectMaterialBudget) calculateMaterial(m Material, production quarterly.Series, lookahead [4]float64) MaterialSchedule {
	waste := 1 + m.ScrapPercent
	perUnit := m.QuantityPerUnit * waste

	needed := production.Scale(perUnit)

	var ending quarterly.Series
	if !m.JIT {
		ending = quarterly.New(
			m.EndingInventoryRatio*lookahead[0]*perUnit,
			m.EndingInventoryRatio*lookahead[1]*perUnit,
			m.EndingInventoryRatio*lookahead[2]*perUnit,
			m.EndingInventoryRatio*lookahead[3]*perUnit,
		)
	}
	beginning := quarterly.New(m.BeginningInventoryUnits, ending.Q1, ending.Q2, ending.Q3)
	purchases := needed.Add(ending).Sub(beginning)

	rawCost := quarterly.Series{}.Map(func(q int, _ float64) float64 {
		return mathutil.Compound(m.UnitCost, m.InflationRatePerQuarter, q-1)
	})

	grossCost := purchases.Mul(rawCost)
	savings := quarterly.Series{}
	if m.BulkDiscountThreshold > 0 && m.BulkDiscountRate > 0 {
		savings = grossCost.Map(func(q int, v float64) float64 {
			if purchases.Quarter(q) >= m.BulkDiscountThreshold {
				return v * m.BulkDiscountRate
			}
			return 0
		})
	}
	cost := grossCost.Sub(savings)
	unitCost := quarterly.WeightedAverage(rawCost, purchases)

	usage := needed.Mul(rawCost)

	scrap := production.Scale(m.QuantityPerUnit * m.ScrapPercent * m.UnitCost)

	avgInventory := (beginning.Q1 + ending.Q4) / 2
	turnover := mathutil.SafeDivide(needed.Yearly, avgInventory)
	dio := mathutil.SafeDivide(constants.DaysPerYear, turnover)
	critical := avgInventory > 0 &&
		(turnover < constants.LowTurnoverThreshold || dio > constants.HighDaysInventoryThreshold)

	return MaterialSchedule{
		Name:                     m.Name,
		UnitOfMeasure:            m.UnitOfMeasure,
		UnitsNeeded:              needed,
		DesiredEndingInventory:   ending,
		BeginningInventory:       beginning,
		PurchaseUnits:            purchases,
		UnitCost:                 unitCost,
		PurchaseCost:             cost,
		UsageCost:                usage,
		ScrapCost:                scrap,
		BulkDiscountSavings:      savings,
		InventoryTurnover:        turnover,
		DaysInventoryOutstanding: dio,
		Critical:                 critical,
	}
}

// Table renders the direct material budget for presentation and export.
func (o DirectMaterialOutput) Table() output.Table {
	var rows []output.Row
	for _, m := range o.Materials {
		label := m.Name
		if m.UnitOfMeasure != "" {
			label += " (" + m.UnitOfMeasure + ")"
		}
		rows = append(rows,
			output.SectionRow(label),
			seriesRow("Units Needed for Production", m.UnitsNeeded),
			seriesRow("Add: Desired Ending Inventory", m.DesiredEndingInventory),
			seriesRow("Less: Beginning Inventory", m.BeginningInventory),
			seriesRow("Units to Purchase", m.PurchaseUnits),
			seriesRow("Cost per Unit", m.UnitCost),
			seriesRow("Purchase Cost", m.PurchaseCost).Styled(output.StyleSubtotal),
		)
		if !m.BulkDiscountSavings.IsZero() {
			rows = append(rows, seriesRow("Bulk Discount Savings", m.BulkDiscountSavings))
		}
		rows = append(rows, output.BlankRow())
	}
	rows = append(rows,
		seriesRow("Total Purchase Cost", o.TotalPurchaseCost).Styled(output.StyleTotal),
		seriesRow("Total Materials Used (Cost)", o.TotalUsageCost),
	)
	if !o.TotalScrapCost.IsZero() {
		rows = append(rows, seriesRow("Scrap and Waste Cost", o.TotalScrapCost))
	}
	rows = append(rows, seriesRow("Ending Raw Material Value", o.RawMaterialInventoryValue))
	return output.Table{
		Number:  NumberMaterials,
		Title:   "Direct Material Budget",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

package schedule

import (
	"math"

	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/mathutil"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
)

// SalesBudgetInput holds the assumptions for Schedule 1.
type SalesBudgetInput struct {
	ForecastUnits          quarterly.Series
	PriorYearUnits         *quarterly.Series
	SellingPrice           float64
	InflationAdjusted      bool
	QuarterlyInflationRate float64
	CashSalesPercent       *float64
	CreditSalesPercent     *float64
	NextYearQ1Units        float64 // 0 means not provided
}

// SalesBudgetOutput is the computed sales budget. SellingPrice is a rate
// series whose Yearly is the unit-weighted average price;
// SeasonalDistribution holds the percent of yearly units per quarter with
// Yearly fixed at 100 when any units are forecast.
type SalesBudgetOutput struct {
	Units                quarterly.Series
	SellingPrice         quarterly.Series
	Revenue              quarterly.Series
	CashSales            quarterly.Series
	CreditSales          quarterly.Series
	SeasonalDistribution quarterly.Series
	WeightedAveragePrice float64
	NextYearQ1Units      float64
	HasCashCreditSplit   bool
}

// SalesBudget computes Schedule 1.
type SalesBudget struct {
	logger *zap.Logger
}

// NewSalesBudget creates a sales budget calculator.
func NewSalesBudget(logger *zap.Logger) *SalesBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesBudget{logger: logger}
}

// Validate checks the sales assumptions.
func (s *SalesBudget) Validate(in SalesBudgetInput) validation.Result {
	var r validation.Result

	r.RequireSeriesNonNegative("forecast units", in.ForecastUnits)
	r.RequirePositive("selling price", in.SellingPrice)
	r.RequireNonNegative("next year Q1 units", in.NextYearQ1Units)

	if in.InflationAdjusted {
		r.RequireFraction("quarterly inflation rate", in.QuarterlyInflationRate)
		if in.QuarterlyInflationRate > 0.1 {
			r = append(r, validation.Warningf(
				"quarterly inflation rate of %.1f%% is unusually high",
				in.QuarterlyInflationRate*constants.PercentageMultiplier))
		}
	}

	if in.CashSalesPercent != nil || in.CreditSalesPercent != nil {
		if in.CashSalesPercent == nil || in.CreditSalesPercent == nil {
			r = append(r, validation.Errorf("cash and credit sales percentages must be supplied together"))
		} else {
			r.RequireFraction("cash sales percent", *in.CashSalesPercent)
			r.RequireFraction("credit sales percent", *in.CreditSalesPercent)
			r.RequireFractionSum("cash and credit sales percentages", *in.CashSalesPercent, *in.CreditSalesPercent)
		}
	}

	if in.PriorYearUnits == nil {
		r = append(r, validation.Warningf("no prior-year unit data - year-over-year comparison unavailable"))
	}

	quarters := in.ForecastUnits.Quarters()
	for q := 1; q < len(quarters); q++ {
		prev := quarters[q-1]
		if prev <= 0 {
			continue
		}
		swing := math.Abs(quarters[q]-prev) / prev
		if swing > constants.QuarterSwingWarningRatio {
			r = append(r, validation.Warningf(
				"forecast units change %.0f%% from Q%d to Q%d - verify seasonality",
				swing*constants.PercentageMultiplier, q, q+1))
		}
	}

	if in.ForecastUnits.Yearly == 0 {
		r = append(r, validation.Warningf("yearly forecast is zero units"))
	}

	return r
}

// Calculate computes the sales budget. It assumes Validate reported no
// blocking errors.
func (s *SalesBudget) Calculate(in SalesBudgetInput) SalesBudgetOutput {
	price := quarterly.Series{
		Q1: in.SellingPrice,
		Q2: in.SellingPrice,
		Q3: in.SellingPrice,
		Q4: in.SellingPrice,
	}
	if in.InflationAdjusted {
		price = price.Map(func(q int, v float64) float64 {
			return mathutil.Compound(v, in.QuarterlyInflationRate, q-1)
		})
	}

	revenue := in.ForecastUnits.Mul(price)
	price = quarterly.WeightedAverage(price, in.ForecastUnits)

	seasonal := in.ForecastUnits.Map(func(q int, v float64) float64 {
		return mathutil.CalculatePercentage(v, in.ForecastUnits.Yearly)
	})
	if in.ForecastUnits.Yearly > 0 {
		seasonal.Yearly = constants.PercentageMultiplier
	} else {
		seasonal.Yearly = 0
	}

	// Without an explicit split all revenue is treated as credit sales,
	// which is what the receivables schedule collects against.
	cashSales := quarterly.Series{}
	creditSales := revenue
	split := in.CashSalesPercent != nil && in.CreditSalesPercent != nil
	if split {
		cashSales = revenue.Scale(*in.CashSalesPercent)
		creditSales = revenue.Scale(*in.CreditSalesPercent)
	}

	s.logger.Debug("computed sales budget",
		zap.String("op", "schedule.SalesBudget.Calculate"),
		zap.Float64("yearlyRevenue", revenue.Yearly),
	)

	return SalesBudgetOutput{
		Units:                in.ForecastUnits,
		SellingPrice:         price,
		Revenue:              revenue,
		CashSales:            cashSales,
		CreditSales:          creditSales,
		SeasonalDistribution: seasonal,
		WeightedAveragePrice: price.Yearly,
		NextYearQ1Units:      in.NextYearQ1Units,
		HasCashCreditSplit:   split,
	}
}

// Table renders the sales budget for presentation and export.
func (o SalesBudgetOutput) Table() output.Table {
	rows := []output.Row{
		seriesRow("Forecast Units", o.Units),
		seriesRow("Selling Price per Unit", o.SellingPrice),
		seriesRow("Sales Revenue", o.Revenue).Styled(output.StyleSubtotal),
	}
	if o.HasCashCreditSplit {
		rows = append(rows,
			output.BlankRow(),
			seriesRow("Cash Sales", o.CashSales),
			seriesRow("Credit Sales", o.CreditSales),
		)
	}
	rows = append(rows,
		output.BlankRow(),
		seriesRow("Seasonal Distribution (%)", o.SeasonalDistribution),
	)
	return output.Table{
		Number:  NumberSales,
		Title:   "Sales Budget",
		Columns: output.QuarterColumns,
		Rows:    rows,
	}
}

func seriesRow(label string, s quarterly.Series) output.Row {
	return output.SeriesRow(label, s.Q1, s.Q2, s.Q3, s.Q4, s.Yearly)
}

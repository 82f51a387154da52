package config

import (
	"github.com/iwvelando/master-budget/internal/schedule"
	"github.com/iwvelando/master-budget/pkg/quarterly"
)

// CompanyInfo returns the company identification used in export headers.
func (c *Configuration) CompanyInfo() schedule.CompanyInfo {
	return schedule.CompanyInfo{
		Name:            c.Company.Name,
		Industry:        c.Company.Industry,
		Product:         c.Company.Product,
		FiscalYearStart: c.Company.FiscalYearStart,
		FiscalYear:      c.Company.FiscalYear,
	}
}

// SalesInput converts the sales section into Schedule 1 assumptions.
func (c *Configuration) SalesInput() schedule.SalesBudgetInput {
	in := schedule.SalesBudgetInput{
		ForecastUnits:          c.Sales.ForecastUnits.Quarterly(),
		SellingPrice:           c.Sales.SellingPrice,
		InflationAdjusted:      c.Sales.InflationAdjusted,
		QuarterlyInflationRate: c.Sales.QuarterlyInflationRate,
		CashSalesPercent:       c.Sales.CashSalesPercent,
		CreditSalesPercent:     c.Sales.CreditSalesPercent,
		NextYearQ1Units:        c.Sales.NextYearQ1Units,
	}
	if c.Sales.PriorYearUnits != nil {
		prior := c.Sales.PriorYearUnits.Quarterly()
		in.PriorYearUnits = &prior
	}
	return in
}

// ProductionInput converts the production section into Schedule 2 assumptions.
func (c *Configuration) ProductionInput() schedule.ProductionBudgetInput {
	return schedule.ProductionBudgetInput{
		BeginningInventoryUnits: c.Production.BeginningInventoryUnits,
		EndingInventoryRatio:    c.Production.EndingInventoryRatio,
		JIT:                     c.Production.JIT,
		CapacityPerQuarter:      c.Production.CapacityPerQuarter,
		MinimumBatchSize:        c.Production.MinimumBatchSize,
		OptimalBatchSize:        c.Production.OptimalBatchSize,
		CarryingCostPerUnit:     c.Production.CarryingCostPerUnit,
		ObsolescenceRiskPercent: c.Production.ObsolescenceRiskPercent,
	}
}

// MaterialsInput converts the materials section into Schedule 3 assumptions.
func (c *Configuration) MaterialsInput() schedule.DirectMaterialInput {
	items := make([]schedule.Material, 0, len(c.Materials.Items))
	for _, m := range c.Materials.Items {
		items = append(items, schedule.Material{
			Name:                    m.Name,
			UnitOfMeasure:           m.UnitOfMeasure,
			QuantityPerUnit:         m.QuantityPerUnit,
			UnitCost:                m.UnitCost,
			BeginningInventoryUnits: m.BeginningInventoryUnits,
			EndingInventoryRatio:    m.EndingInventoryRatio,
			ScrapPercent:            m.ScrapPercent,
			BulkDiscountThreshold:   m.BulkDiscountThreshold,
			BulkDiscountRate:        m.BulkDiscountRate,
			InflationRatePerQuarter: m.InflationRatePerQuarter,
			SupplierLeadTimeWeeks:   m.SupplierLeadTimeWeeks,
			JIT:                     m.JIT,
		})
	}
	return schedule.DirectMaterialInput{
		Materials:                 items,
		PaidSameQuarterPercent:    c.Materials.PaidSameQuarterPercent,
		PaidNextQuarterPercent:    c.Materials.PaidNextQuarterPercent,
		NextYearQ1ProductionUnits: c.Materials.NextYearQ1ProductionUnits,
	}
}

// LaborInput converts the labor section into Schedule 4 assumptions.
func (c *Configuration) LaborInput() schedule.DirectLaborInput {
	var categories []schedule.LaborCategory
	for _, cat := range c.Labor.Categories {
		categories = append(categories, schedule.LaborCategory{
			Name:         cat.Name,
			HoursPerUnit: cat.HoursPerUnit,
			WageRate:     cat.WageRate,
		})
	}
	return schedule.DirectLaborInput{
		HoursPerUnit:            c.Labor.HoursPerUnit,
		WageRate:                c.Labor.WageRate,
		Categories:              categories,
		OvertimeThresholdHours:  c.Labor.OvertimeThresholdHours,
		OvertimeMultiplier:      c.Labor.OvertimeMultiplier,
		FringeBenefitRate:       c.Labor.FringeBenefitRate,
		EfficiencyRate:          c.Labor.EfficiencyRate,
		WageInflationPerQuarter: c.Labor.WageInflationPerQuarter,
		AverageHoursPerEmployee: c.Labor.AverageHoursPerEmployee,
		AnnualTurnoverRate:      c.Labor.AnnualTurnoverRate,
		TrainingCostPerEmployee: c.Labor.TrainingCostPerEmployee,
	}
}

// OverheadInput converts the overhead section into Schedule 5 assumptions.
func (c *Configuration) OverheadInput() schedule.ManufacturingOverheadInput {
	var categories []schedule.OverheadCostCategory
	for _, cat := range c.Overhead.Categories {
		categories = append(categories, schedule.OverheadCostCategory{
			Name:       cat.Name,
			Behavior:   schedule.CostBehavior(cat.Behavior),
			Amount:     cat.Amount,
			CostDriver: schedule.CostDriver(cat.CostDriver),
			IsNonCash:  cat.IsNonCash,
		})
	}
	in := schedule.ManufacturingOverheadInput{
		Mode:                     schedule.OverheadMode(c.Overhead.Mode),
		VariableRatePerUnit:      c.Overhead.VariableRatePerUnit,
		VariableRatePerLaborHour: c.Overhead.VariableRatePerLaborHour,
		FixedPerQuarter:          c.Overhead.FixedPerQuarter,
		DepreciationPerQuarter:   c.Overhead.DepreciationPerQuarter,
		Categories:               categories,
		MachineHoursPerUnit:      c.Overhead.MachineHoursPerUnit,
		AllocationBase:           schedule.AllocationBase(c.Overhead.AllocationBase),
	}
	if abc := c.Overhead.ABC; abc != nil {
		in.ABC = &schedule.ActivityBasedCosting{
			IndirectMaterialPerUnit:    abc.IndirectMaterialPerUnit,
			QualityCostPerUnit:         abc.QualityCostPerUnit,
			MachineHoursPerUnit:        abc.MachineHoursPerUnit,
			MachineHourRate:            abc.MachineHourRate,
			UnitsPerProductionRun:      abc.UnitsPerProductionRun,
			CostPerProductionRun:       abc.CostPerProductionRun,
			SetupCostPerRun:            abc.SetupCostPerRun,
			InspectionsPerQuarter:      abc.InspectionsPerQuarter,
			CostPerInspection:          abc.CostPerInspection,
			QualityControlSalariesPerQ: abc.QualityControlSalariesPerQ,
			FacilityCostPerQuarter:     abc.FacilityCostPerQuarter,
			UtilitiesPerUnit:           abc.UtilitiesPerUnit,
			UtilitiesAreVariable:       abc.UtilitiesAreVariable,
			DepreciationPerQuarter:     abc.DepreciationPerQuarter,
		}
	}
	return in
}

// SellingAdminInput converts the selling and administrative section into
// Schedule 6 assumptions.
func (c *Configuration) SellingAdminInput() schedule.SellingAdminInput {
	return schedule.SellingAdminInput{
		Mode:                    schedule.SGAMode(c.SellingAdmin.Mode),
		SellingPercentOfRevenue: c.SellingAdmin.SellingPercentOfRevenue,
		AdminPercentOfRevenue:   c.SellingAdmin.AdminPercentOfRevenue,
		FixedPerQuarter:         c.SellingAdmin.FixedPerQuarter,
		CommissionRate:          c.SellingAdmin.CommissionRate,
		CommissionPerUnit:       c.SellingAdmin.CommissionPerUnit,
		DistributionPerUnit:     c.SellingAdmin.DistributionPerUnit,
		CustomerServicePerUnit:  c.SellingAdmin.CustomerServicePerUnit,
		WarrantyPerUnit:         c.SellingAdmin.WarrantyPerUnit,
		MarketingPerQuarter:     c.SellingAdmin.MarketingPerQuarter,
		AdminSalariesPerQuarter: c.SellingAdmin.AdminSalariesPerQuarter,
		OccupancyPerQuarter:     c.SellingAdmin.OccupancyPerQuarter,
		TechnologyPerQuarter:    c.SellingAdmin.TechnologyPerQuarter,
		BadDebtRate:             c.SellingAdmin.BadDebtRate,
		DepreciationPerQuarter:  c.SellingAdmin.DepreciationPerQuarter,
	}
}

// ReceiptsInput converts the cash receipts section into Schedule 7
// assumptions.
func (c *Configuration) ReceiptsInput() schedule.CashReceiptsInput {
	return schedule.CashReceiptsInput{
		CollectedSameQuarterPercent: c.CashReceipts.CollectedSameQuarterPercent,
		CollectedNextQuarterPercent: c.CashReceipts.CollectedNextQuarterPercent,
		BeginningAccountsReceivable: c.CashReceipts.BeginningAccountsReceivable,
	}
}

// DisbursementsInput converts the cash disbursements section into Schedule 8
// assumptions.
func (c *Configuration) DisbursementsInput() schedule.CashDisbursementsInput {
	return schedule.CashDisbursementsInput{
		BeginningAccountsPayable: c.CashDisbursements.BeginningAccountsPayable,
		IncomeTaxPayments:        c.CashDisbursements.IncomeTaxPayments.Quarterly(),
		Dividends:                c.CashDisbursements.Dividends.Quarterly(),
		CapitalExpenditures:      c.CashDisbursements.CapitalExpenditures.Quarterly(),
		LoanPrincipalPayments:    c.CashDisbursements.LoanPrincipalPayments.Quarterly(),
	}
}

// CashInput converts the cash budget section into Schedule 9 assumptions.
// The balance sheet section's planned borrowing and stock issuance are
// booked as Q1 financing inflows so the statements articulate.
func (c *Configuration) CashInput() schedule.CashBudgetInput {
	return schedule.CashBudgetInput{
		BeginningCash:          c.CashBudget.BeginningCash,
		MinimumCash:            c.CashBudget.MinimumCash,
		BorrowingAnnualRate:    c.CashBudget.BorrowingAnnualRate,
		InvestmentAnnualRate:   c.CashBudget.InvestmentAnnualRate,
		InvestSurplus:          c.CashBudget.InvestSurplus,
		SurplusInvestThreshold: c.CashBudget.SurplusInvestThreshold,
		LoanProceeds:           quarterly.New(c.BalanceSheet.NewLongTermBorrowing, 0, 0, 0),
		StockIssuance:          quarterly.New(c.BalanceSheet.StockIssuance, 0, 0, 0),
	}
}

// COGSInput converts the cost of goods sold section into Schedule 10
// assumptions.
func (c *Configuration) COGSInput() schedule.COGSInput {
	return schedule.COGSInput{
		BeginningWIPValue:           c.CostOfGoodsSold.BeginningWIPValue,
		EndingWIPValue:              c.CostOfGoodsSold.EndingWIPValue,
		BeginningFinishedGoodsValue: c.CostOfGoodsSold.BeginningFinishedGoodsValue,
	}
}

// IncomeInput converts the income statement section into Schedule 11
// assumptions.
func (c *Configuration) IncomeInput() schedule.IncomeStatementInput {
	return schedule.IncomeStatementInput{
		TaxRate:         c.IncomeStatement.TaxRate,
		InterestExpense: c.IncomeStatement.InterestExpense,
		InterestIncome:  c.IncomeStatement.InterestIncome,
	}
}

// BalanceInput converts the balance sheet section into Schedule 13 beginning
// balances.
func (c *Configuration) BalanceInput() schedule.BalanceSheetInput {
	return schedule.BalanceSheetInput{
		FixedAssetsGross:          c.BalanceSheet.FixedAssetsGross,
		AccumulatedDepreciation:   c.BalanceSheet.AccumulatedDepreciation,
		BeginningTaxesPayable:     c.BalanceSheet.BeginningTaxesPayable,
		BeginningLongTermDebt:     c.BalanceSheet.BeginningLongTermDebt,
		NewLongTermBorrowing:      c.BalanceSheet.NewLongTermBorrowing,
		CommonStock:               c.BalanceSheet.CommonStock,
		StockIssuance:             c.BalanceSheet.StockIssuance,
		BeginningRetainedEarnings: c.BalanceSheet.BeginningRetainedEarnings,
	}
}

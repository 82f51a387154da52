package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `company:
  name: ABC Manufacturing
  industry: Consumer Goods
  product: Widget
  fiscalYearStart: "2026-01"
sales:
  forecastUnits:
    q1: 11000
    q2: 13200
    q3: 16500
    q4: 14300
  sellingPrice: 50
  inflationAdjusted: true
  quarterlyInflationRate: 0.02
  cashSalesPercent: 0.3
  creditSalesPercent: 0.7
  nextYearQ1Units: 12100
production:
  beginningInventoryUnits: 2000
  endingInventoryRatio: 0.15
materials:
  items:
    - name: Aluminum
      unitOfMeasure: kg
      quantityPerUnit: 3
      unitCost: 2.5
      beginningInventoryUnits: 5000
      endingInventoryRatio: 0.1
  paidSameQuarterPercent: 0.5
  paidNextQuarterPercent: 0.5
  nextYearQ1ProductionUnits: 11815
labor:
  hoursPerUnit: 0.5
  wageRate: 20
  overtimeThresholdHours: 6000
overhead:
  mode: simple
  variableRatePerUnit: 3
  fixedPerQuarter: 60000
  depreciationPerQuarter: 15000
sellingAdmin:
  mode: simple
  sellingPercentOfRevenue: 0.05
  adminPercentOfRevenue: 0.03
  fixedPerQuarter: 25000
cashReceipts:
  collectedSameQuarterPercent: 0.7
  collectedNextQuarterPercent: 0.3
  beginningAccountsReceivable: 120000
cashDisbursements:
  beginningAccountsPayable: 80000
  incomeTaxPayments:
    q1: 40000
    q2: 40000
    q3: 40000
    q4: 40000
  capitalExpenditures:
    q2: 120000
cashBudget:
  beginningCash: 90000
  minimumCash: 40000
  borrowingAnnualRate: 0.08
costOfGoodsSold:
  beginningWIPValue: 30000
  endingWIPValue: 25000
  beginningFinishedGoodsValue: 90000
incomeStatement:
  taxRate: 0.25
balanceSheet:
  fixedAssetsGross: 800000
  accumulatedDepreciation: 200000
  beginningTaxesPayable: 20000
  beginningLongTermDebt: 150000
  commonStock: 500000
  beginningRetainedEarnings: 197500
logging:
  level: debug
output:
  format: csv
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	cfg, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Company.Name != "ABC Manufacturing" {
		t.Errorf("company name = %q, want %q", cfg.Company.Name, "ABC Manufacturing")
	}
	if cfg.Sales.ForecastUnits.Q3 != 16500 {
		t.Errorf("sales Q3 units = %v, want 16500", cfg.Sales.ForecastUnits.Q3)
	}
	if cfg.Sales.CashSalesPercent == nil || *cfg.Sales.CashSalesPercent != 0.3 {
		t.Errorf("cash sales percent = %v, want 0.3", cfg.Sales.CashSalesPercent)
	}
	if cfg.Production.EndingInventoryRatio != 0.15 {
		t.Errorf("ending inventory ratio = %v, want 0.15", cfg.Production.EndingInventoryRatio)
	}
	if len(cfg.Materials.Items) != 1 || cfg.Materials.Items[0].Name != "Aluminum" {
		t.Fatalf("materials = %+v, want one Aluminum item", cfg.Materials.Items)
	}
	if cfg.Overhead.Mode != "simple" {
		t.Errorf("overhead mode = %q, want simple", cfg.Overhead.Mode)
	}
	if cfg.CashDisbursements.CapitalExpenditures.Q2 != 120000 {
		t.Errorf("Q2 capex = %v, want 120000", cfg.CashDisbursements.CapitalExpenditures.Q2)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("output format = %q, want csv", cfg.Output.Format)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfiguration() on a missing file should error")
	}
}

func TestLoadConfigurationMalformed(t *testing.T) {
	if _, err := LoadConfiguration(writeConfig(t, "sales: [not a map")); err == nil {
		t.Error("LoadConfiguration() on malformed YAML should error")
	}
}

func TestSeriesQuarterly(t *testing.T) {
	s := Series{Q1: 1, Q2: 2, Q3: 3, Q4: 4}
	q := s.Quarterly()
	if q.Yearly != 10 {
		t.Errorf("yearly = %v, want 10", q.Yearly)
	}
}

func TestConversionRoundTrip(t *testing.T) {
	cfg, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	sales := cfg.SalesInput()
	if sales.ForecastUnits.Yearly != 55000 {
		t.Errorf("forecast yearly = %v, want 55000", sales.ForecastUnits.Yearly)
	}
	if !sales.InflationAdjusted || sales.QuarterlyInflationRate != 0.02 {
		t.Errorf("inflation settings = %v/%v, want true/0.02",
			sales.InflationAdjusted, sales.QuarterlyInflationRate)
	}
	if sales.PriorYearUnits != nil {
		t.Errorf("prior year units = %+v, want nil when omitted", sales.PriorYearUnits)
	}

	materials := cfg.MaterialsInput()
	if len(materials.Materials) != 1 {
		t.Fatalf("materials count = %d, want 1", len(materials.Materials))
	}
	if materials.Materials[0].QuantityPerUnit != 3 {
		t.Errorf("quantity per unit = %v, want 3", materials.Materials[0].QuantityPerUnit)
	}
	if materials.PaidNextQuarterPercent == nil || *materials.PaidNextQuarterPercent != 0.5 {
		t.Errorf("paid next quarter = %v, want 0.5", materials.PaidNextQuarterPercent)
	}

	labor := cfg.LaborInput()
	if labor.HoursPerUnit != 0.5 || labor.WageRate != 20 {
		t.Errorf("labor = %v hrs @ %v, want 0.5 @ 20", labor.HoursPerUnit, labor.WageRate)
	}

	overhead := cfg.OverheadInput()
	if overhead.ABC != nil {
		t.Errorf("overhead ABC = %+v, want nil in simple mode", overhead.ABC)
	}

	disb := cfg.DisbursementsInput()
	if disb.IncomeTaxPayments.Yearly != 160000 {
		t.Errorf("tax payments yearly = %v, want 160000", disb.IncomeTaxPayments.Yearly)
	}
	if disb.CapitalExpenditures.Q2 != 120000 {
		t.Errorf("Q2 capex = %v, want 120000", disb.CapitalExpenditures.Q2)
	}

	balance := cfg.BalanceInput()
	wantNet := 800000.0 - 200000.0
	if got := balance.FixedAssetsGross - balance.AccumulatedDepreciation; math.Abs(got-wantNet) > 1e-9 {
		t.Errorf("net fixed assets = %v, want %v", got, wantNet)
	}
}

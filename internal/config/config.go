// Package config defines the YAML configuration for the master budget and
// its conversion into the typed schedule inputs.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/master-budget/pkg/quarterly"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for master-budget. Each section
// maps onto one schedule's assumptions.
type Configuration struct {
	Company           CompanyConfig
	Sales             SalesConfig
	Production        ProductionConfig
	Materials         MaterialsConfig
	Labor             LaborConfig
	Overhead          OverheadConfig
	SellingAdmin      SellingAdminConfig  `mapstructure:"sellingAdmin"`
	CashReceipts      CashReceiptsConfig  `mapstructure:"cashReceipts"`
	CashDisbursements DisbursementsConfig `mapstructure:"cashDisbursements"`
	CashBudget        CashBudgetConfig    `mapstructure:"cashBudget"`
	CostOfGoodsSold   COGSConfig          `mapstructure:"costOfGoodsSold"`
	IncomeStatement   IncomeConfig        `mapstructure:"incomeStatement"`
	BalanceSheet      BalanceConfig       `mapstructure:"balanceSheet"`
	Logging           LoggingConfig       `yaml:"logging,omitempty"`
	Output            OutputConfig        `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// CompanyConfig identifies the company and fiscal year.
type CompanyConfig struct {
	Name            string
	Industry        string
	Product         string
	FiscalYearStart string `mapstructure:"fiscalYearStart"` // e.g. "2026-01"
	FiscalYear      int    `mapstructure:"fiscalYear"`
}

// Series is the YAML shape of a four-quarter value list.
type Series struct {
	Q1 float64
	Q2 float64
	Q3 float64
	Q4 float64
}

// Quarterly converts the config shape into an additive series.
func (s Series) Quarterly() quarterly.Series {
	return quarterly.New(s.Q1, s.Q2, s.Q3, s.Q4)
}

// SalesConfig holds the Schedule 1 assumptions.
type SalesConfig struct {
	ForecastUnits          Series   `mapstructure:"forecastUnits"`
	PriorYearUnits         *Series  `mapstructure:"priorYearUnits"`
	SellingPrice           float64  `mapstructure:"sellingPrice"`
	InflationAdjusted      bool     `mapstructure:"inflationAdjusted"`
	QuarterlyInflationRate float64  `mapstructure:"quarterlyInflationRate"`
	CashSalesPercent       *float64 `mapstructure:"cashSalesPercent"`
	CreditSalesPercent     *float64 `mapstructure:"creditSalesPercent"`
	NextYearQ1Units        float64  `mapstructure:"nextYearQ1Units"`
}

// ProductionConfig holds the Schedule 2 assumptions.
type ProductionConfig struct {
	BeginningInventoryUnits float64 `mapstructure:"beginningInventoryUnits"`
	EndingInventoryRatio    float64 `mapstructure:"endingInventoryRatio"`
	JIT                     bool    `mapstructure:"jit"`
	CapacityPerQuarter      float64 `mapstructure:"capacityPerQuarter"`
	MinimumBatchSize        float64 `mapstructure:"minimumBatchSize"`
	OptimalBatchSize        float64 `mapstructure:"optimalBatchSize"`
	CarryingCostPerUnit     float64 `mapstructure:"carryingCostPerUnit"`
	ObsolescenceRiskPercent float64 `mapstructure:"obsolescenceRiskPercent"`
}

// MaterialConfig describes one raw material.
type MaterialConfig struct {
	Name                    string
	UnitOfMeasure           string  `mapstructure:"unitOfMeasure"`
	QuantityPerUnit         float64 `mapstructure:"quantityPerUnit"`
	UnitCost                float64 `mapstructure:"unitCost"`
	BeginningInventoryUnits float64 `mapstructure:"beginningInventoryUnits"`
	EndingInventoryRatio    float64 `mapstructure:"endingInventoryRatio"`
	ScrapPercent            float64 `mapstructure:"scrapPercent"`
	BulkDiscountThreshold   float64 `mapstructure:"bulkDiscountThreshold"`
	BulkDiscountRate        float64 `mapstructure:"bulkDiscountRate"`
	InflationRatePerQuarter float64 `mapstructure:"inflationRatePerQuarter"`
	SupplierLeadTimeWeeks   float64 `mapstructure:"supplierLeadTimeWeeks"`
	JIT                     bool    `mapstructure:"jit"`
}

// MaterialsConfig holds the Schedule 3 assumptions.
type MaterialsConfig struct {
	Items                     []MaterialConfig
	PaidSameQuarterPercent    *float64 `mapstructure:"paidSameQuarterPercent"`
	PaidNextQuarterPercent    *float64 `mapstructure:"paidNextQuarterPercent"`
	NextYearQ1ProductionUnits float64  `mapstructure:"nextYearQ1ProductionUnits"`
}

// LaborCategoryConfig describes one class of direct labor.
type LaborCategoryConfig struct {
	Name         string
	HoursPerUnit float64 `mapstructure:"hoursPerUnit"`
	WageRate     float64 `mapstructure:"wageRate"`
}

// LaborConfig holds the Schedule 4 assumptions.
type LaborConfig struct {
	HoursPerUnit            float64               `mapstructure:"hoursPerUnit"`
	WageRate                float64               `mapstructure:"wageRate"`
	Categories              []LaborCategoryConfig `mapstructure:"categories"`
	OvertimeThresholdHours  float64               `mapstructure:"overtimeThresholdHours"`
	OvertimeMultiplier      float64               `mapstructure:"overtimeMultiplier"`
	FringeBenefitRate       float64               `mapstructure:"fringeBenefitRate"`
	EfficiencyRate          float64               `mapstructure:"efficiencyRate"`
	WageInflationPerQuarter float64               `mapstructure:"wageInflationPerQuarter"`
	AverageHoursPerEmployee float64               `mapstructure:"averageHoursPerEmployee"`
	AnnualTurnoverRate      float64               `mapstructure:"annualTurnoverRate"`
	TrainingCostPerEmployee float64               `mapstructure:"trainingCostPerEmployee"`
}

// OverheadCategoryConfig is one line of a detailed overhead budget.
type OverheadCategoryConfig struct {
	Name       string
	Behavior   string
	Amount     float64
	CostDriver string `mapstructure:"costDriver"`
	IsNonCash  bool   `mapstructure:"isNonCash"`
}

// ABCConfig holds the activity-based costing pools.
type ABCConfig struct {
	IndirectMaterialPerUnit    float64 `mapstructure:"indirectMaterialPerUnit"`
	QualityCostPerUnit         float64 `mapstructure:"qualityCostPerUnit"`
	MachineHoursPerUnit        float64 `mapstructure:"machineHoursPerUnit"`
	MachineHourRate            float64 `mapstructure:"machineHourRate"`
	UnitsPerProductionRun      float64 `mapstructure:"unitsPerProductionRun"`
	CostPerProductionRun       float64 `mapstructure:"costPerProductionRun"`
	SetupCostPerRun            float64 `mapstructure:"setupCostPerRun"`
	InspectionsPerQuarter      float64 `mapstructure:"inspectionsPerQuarter"`
	CostPerInspection          float64 `mapstructure:"costPerInspection"`
	QualityControlSalariesPerQ float64 `mapstructure:"qualityControlSalariesPerQ"`
	FacilityCostPerQuarter     float64 `mapstructure:"facilityCostPerQuarter"`
	UtilitiesPerUnit           float64 `mapstructure:"utilitiesPerUnit"`
	UtilitiesAreVariable       bool    `mapstructure:"utilitiesAreVariable"`
	DepreciationPerQuarter     float64 `mapstructure:"depreciationPerQuarter"`
}

// OverheadConfig holds the Schedule 5 assumptions.
type OverheadConfig struct {
	Mode                     string
	VariableRatePerUnit      float64                  `mapstructure:"variableRatePerUnit"`
	VariableRatePerLaborHour float64                  `mapstructure:"variableRatePerLaborHour"`
	FixedPerQuarter          float64                  `mapstructure:"fixedPerQuarter"`
	DepreciationPerQuarter   float64                  `mapstructure:"depreciationPerQuarter"`
	Categories               []OverheadCategoryConfig `mapstructure:"categories"`
	MachineHoursPerUnit      float64                  `mapstructure:"machineHoursPerUnit"`
	ABC                      *ABCConfig               `mapstructure:"abc"`
	AllocationBase           string                   `mapstructure:"allocationBase"`
}

// SellingAdminConfig holds the Schedule 6 assumptions.
type SellingAdminConfig struct {
	Mode                    string
	SellingPercentOfRevenue float64 `mapstructure:"sellingPercentOfRevenue"`
	AdminPercentOfRevenue   float64 `mapstructure:"adminPercentOfRevenue"`
	FixedPerQuarter         float64 `mapstructure:"fixedPerQuarter"`
	CommissionRate          float64 `mapstructure:"commissionRate"`
	CommissionPerUnit       float64 `mapstructure:"commissionPerUnit"`
	DistributionPerUnit     float64 `mapstructure:"distributionPerUnit"`
	CustomerServicePerUnit  float64 `mapstructure:"customerServicePerUnit"`
	WarrantyPerUnit         float64 `mapstructure:"warrantyPerUnit"`
	MarketingPerQuarter     float64 `mapstructure:"marketingPerQuarter"`
	AdminSalariesPerQuarter float64 `mapstructure:"adminSalariesPerQuarter"`
	OccupancyPerQuarter     float64 `mapstructure:"occupancyPerQuarter"`
	TechnologyPerQuarter    float64 `mapstructure:"technologyPerQuarter"`
	BadDebtRate             float64 `mapstructure:"badDebtRate"`
	DepreciationPerQuarter  float64 `mapstructure:"depreciationPerQuarter"`
}

// CashReceiptsConfig holds the Schedule 7 assumptions.
type CashReceiptsConfig struct {
	CollectedSameQuarterPercent float64 `mapstructure:"collectedSameQuarterPercent"`
	CollectedNextQuarterPercent float64 `mapstructure:"collectedNextQuarterPercent"`
	BeginningAccountsReceivable float64 `mapstructure:"beginningAccountsReceivable"`
}

// DisbursementsConfig holds the Schedule 8 assumptions.
type DisbursementsConfig struct {
	BeginningAccountsPayable float64 `mapstructure:"beginningAccountsPayable"`
	IncomeTaxPayments        Series  `mapstructure:"incomeTaxPayments"`
	Dividends                Series  `mapstructure:"dividends"`
	CapitalExpenditures      Series  `mapstructure:"capitalExpenditures"`
	LoanPrincipalPayments    Series  `mapstructure:"loanPrincipalPayments"`
}

// CashBudgetConfig holds the Schedule 9 assumptions.
type CashBudgetConfig struct {
	BeginningCash          float64 `mapstructure:"beginningCash"`
	MinimumCash            float64 `mapstructure:"minimumCash"`
	BorrowingAnnualRate    float64 `mapstructure:"borrowingAnnualRate"`
	InvestmentAnnualRate   float64 `mapstructure:"investmentAnnualRate"`
	InvestSurplus          bool    `mapstructure:"investSurplus"`
	SurplusInvestThreshold float64 `mapstructure:"surplusInvestThreshold"`
}

// COGSConfig holds the Schedule 10 assumptions.
type COGSConfig struct {
	BeginningWIPValue           float64 `mapstructure:"beginningWIPValue"`
	EndingWIPValue              float64 `mapstructure:"endingWIPValue"`
	BeginningFinishedGoodsValue float64 `mapstructure:"beginningFinishedGoodsValue"`
}

// IncomeConfig holds the Schedule 11 assumptions.
type IncomeConfig struct {
	TaxRate         float64 `mapstructure:"taxRate"`
	InterestExpense float64 `mapstructure:"interestExpense"`
	InterestIncome  float64 `mapstructure:"interestIncome"`
}

// BalanceConfig holds the Schedule 13 beginning balances.
type BalanceConfig struct {
	FixedAssetsGross          float64 `mapstructure:"fixedAssetsGross"`
	AccumulatedDepreciation   float64 `mapstructure:"accumulatedDepreciation"`
	BeginningTaxesPayable     float64 `mapstructure:"beginningTaxesPayable"`
	BeginningLongTermDebt     float64 `mapstructure:"beginningLongTermDebt"`
	NewLongTermBorrowing      float64 `mapstructure:"newLongTermBorrowing"`
	CommonStock               float64 `mapstructure:"commonStock"`
	StockIssuance             float64 `mapstructure:"stockIssuance"`
	BeginningRetainedEarnings float64 `mapstructure:"beginningRetainedEarnings"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory document, as uploaded to the server.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %v", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

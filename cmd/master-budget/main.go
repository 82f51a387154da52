package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/iwvelando/master-budget/internal/budget"
	"github.com/iwvelando/master-budget/internal/config"
	"github.com/iwvelando/master-budget/internal/server"
	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/output"
	"github.com/iwvelando/master-budget/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	scheduleName := flag.String("schedule", "", "print a single schedule by name (e.g. sales, cashBudget)")
	serve := flag.Bool("serve", false, "serve the web UI and budget API instead of printing schedules")
	serverConfig := flag.String("server-config", "", "path to server configuration file")
	flag.Parse()

	if *serve {
		runServer(*serverConfig, *logLevel)
		return
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Run the thirteen schedules.
	results := budget.NewEngine(logger).Run(conf)

	// Surface findings: warnings are advisory, errors stopped a schedule.
	for _, name := range budget.ScheduleNames {
		for _, warning := range results.Findings[name].Warnings() {
			logger.Warn("Configuration warning: "+warning.Message,
				zap.String("op", "main"),
				zap.String("schedule", name),
			)
		}
		for _, failure := range results.Findings[name].Errors() {
			logger.Error(failure.Message,
				zap.String("op", "main"),
				zap.String("schedule", name),
			)
		}
	}

	meta, err := results.Company.Metadata()
	if err != nil {
		logger.Fatal("failed to derive fiscal year",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	tables := results.Tables()
	if *scheduleName != "" {
		table, ok := results.Table(*scheduleName)
		if !ok {
			logger.Fatal("unknown or incomplete schedule",
				zap.String("op", "main"),
				zap.String("schedule", *scheduleName),
			)
		}
		tables = []output.Table{table}
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(meta, tables)
		if *scheduleName == "" {
			if results.Completed(budget.NameCashFlow) {
				fmt.Println("Cash Flow Quality")
				for _, line := range results.CashFlow.QualitySummary() {
					fmt.Println("  " + line)
				}
			}
			if results.Completed(budget.NameBalance) {
				fmt.Println("Financial Ratios")
				for _, line := range results.Balance.RatioSummary() {
					fmt.Println("  " + line)
				}
			}
		}
	case constants.OutputFormatCSV:
		for _, table := range tables {
			fmt.Println(output.CSV(meta, table))
		}
	}

	if results.HasErrors() {
		os.Exit(1)
	}
}

func runServer(configPath string, logLevelOverride string) {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg.Logging, logLevelOverride)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	handler := server.NewHandler(logger, cfg.UploadSizeBytes(), version)

	logger.Info("serving budget API",
		zap.String("op", "main"),
		zap.String("address", cfg.Address),
	)
	if err := http.ListenAndServe(cfg.Address, handler); err != nil {
		logger.Fatal("server stopped",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/master-budget/internal/budget"
	"github.com/iwvelando/master-budget/internal/config"
	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the web UI and budget API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Budget API endpoint (file upload)
	mux.HandleFunc("/api/budget", h.handleBudget)

	// Budget API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/budget", h.handleBudgetEditor)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type budgetResponse struct {
	Company    string                 `json:"company"`
	FiscalYear string                 `json:"fiscalYear"`
	Schedules  []scheduleResult       `json:"schedules"`
	CSV        string                 `json:"csv,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type scheduleResult struct {
	Name      string           `json:"name"`
	Number    int              `json:"number,omitempty"`
	Title     string           `json:"title,omitempty"`
	Completed bool             `json:"completed"`
	Skipped   string           `json:"skipped,omitempty"`
	Columns   []string         `json:"columns,omitempty"`
	Rows      []output.Row     `json:"rows,omitempty"`
	Findings  []findingPayload `json:"findings,omitempty"`
}

type findingPayload struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func (h *handler) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleBudget"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err))
		return
	}

	h.runBudget(w, buf.Bytes(), start, "server.handleBudget")
}

func (h *handler) handleBudgetEditor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleBudgetEditor")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", "server.handleBudgetEditor")
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleBudgetEditor")
		return
	}

	h.runBudget(w, configBytes, start, "server.handleBudgetEditor")
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) runBudget(w http.ResponseWriter, configBytes []byte, start time.Time, op string) {
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	results := budget.NewEngine(h.logger).Run(cfg)

	meta, err := results.Company.Metadata()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid fiscal year: %v", err), op)
		return
	}

	elapsed := time.Since(start)

	response := budgetResponse{
		Company:    meta.Company,
		FiscalYear: meta.FiscalYear,
		Schedules:  buildSchedules(results),
		CSV:        buildCSV(meta, results),
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("budget computed",
		zap.String("op", op),
		zap.Int("schedules", len(response.Schedules)),
		zap.Bool("errors", results.HasErrors()),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func buildSchedules(results *budget.Results) []scheduleResult {
	schedules := make([]scheduleResult, 0, len(budget.ScheduleNames))
	for _, name := range budget.ScheduleNames {
		sr := scheduleResult{
			Name:      name,
			Completed: results.Completed(name),
		}
		for _, f := range results.Findings[name] {
			sr.Findings = append(sr.Findings, findingPayload{
				Severity: f.Severity.String(),
				Message:  f.Message,
			})
		}
		if table, ok := results.Table(name); ok {
			sr.Number = table.Number
			sr.Title = table.Title
			sr.Columns = table.Columns
			sr.Rows = table.Rows
		} else if err := results.Failure(name); err != nil {
			sr.Skipped = err.Error()
		}
		schedules = append(schedules, sr)
	}
	return schedules
}

func buildCSV(meta output.Metadata, results *budget.Results) string {
	var b strings.Builder
	for _, table := range results.Tables() {
		b.WriteString(output.CSV(meta, table))
		b.WriteString("\n")
	}
	return b.String()
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleBudget")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("budget request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

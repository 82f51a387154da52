package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/master-budget/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func testConfigBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}
	return data
}

func postBudgetUpload(t *testing.T, handler http.Handler, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "test_config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/budget", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleBudgetSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	rr := postBudgetUpload(t, handler, testConfigBytes(t))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp budgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Company != "ABC Manufacturing" {
		t.Errorf("company = %q, want ABC Manufacturing", resp.Company)
	}
	if resp.FiscalYear != "FY2026" {
		t.Errorf("fiscal year = %q, want FY2026", resp.FiscalYear)
	}
	if len(resp.Schedules) != 13 {
		t.Fatalf("schedules = %d, want 13", len(resp.Schedules))
	}
	for _, sched := range resp.Schedules {
		if !sched.Completed {
			t.Errorf("schedule %s did not complete: %s", sched.Name, sched.Skipped)
		}
		if len(sched.Rows) == 0 {
			t.Errorf("schedule %s has no rows", sched.Name)
		}
	}
	if !strings.Contains(resp.CSV, "Schedule 13: Budgeted Balance Sheet") {
		t.Error("expected balance sheet in CSV export")
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
	if resp.Config == nil {
		t.Error("expected config echo in response")
	}
	if resp.ConfigYAML == "" {
		t.Error("expected config YAML in response")
	}
}

func TestHandleBudgetEditorSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	var configMap map[string]interface{}
	if err := yaml.Unmarshal(testConfigBytes(t), &configMap); err != nil {
		t.Fatalf("failed to unmarshal yaml: %v", err)
	}
	payload := map[string]interface{}{"config": configMap}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/editor/budget", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp budgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Schedules) != 13 {
		t.Fatalf("schedules = %d, want 13", len(resp.Schedules))
	}
	if resp.ConfigYAML == "" {
		t.Error("expected config YAML in response")
	}
}

func TestHandleBudgetValidationFindings(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	var configMap map[string]interface{}
	if err := yaml.Unmarshal(testConfigBytes(t), &configMap); err != nil {
		t.Fatalf("failed to unmarshal yaml: %v", err)
	}
	sales := configMap["sales"].(map[string]interface{})
	sales["sellingPrice"] = 0

	data, err := yaml.Marshal(configMap)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}

	rr := postBudgetUpload(t, handler, data)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 with findings, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp budgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	salesResult := resp.Schedules[0]
	if salesResult.Completed {
		t.Fatal("sales should fail validation with a zero price")
	}
	foundError := false
	for _, f := range salesResult.Findings {
		if f.Severity == "error" {
			foundError = true
		}
	}
	if !foundError {
		t.Error("expected an error-severity finding on the sales schedule")
	}

	production := resp.Schedules[1]
	if production.Completed || production.Skipped == "" {
		t.Errorf("production should be skipped downstream of sales, got %+v", production)
	}
}

func TestHandleBudgetMissingFile(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/budget", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleBudgetInvalidYAML(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	rr := postBudgetUpload(t, handler, []byte("sales: [broken"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestHandleBudgetUploadTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 64, "test")

	rr := postBudgetUpload(t, handler, testConfigBytes(t))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}

func TestHandleBudgetMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/budget", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", resp["version"])
	}

	post := httptest.NewRequest(http.MethodPost, "/api/version", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, post)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405 for POST, got %d", rr.Code)
	}
}

func TestStaticIndexServed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Master Budget") {
		t.Error("expected index page content")
	}
}

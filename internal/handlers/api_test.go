package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"ltv-dashboard/internal/config"
	"ltv-dashboard/internal/exporter"
	"ltv-dashboard/internal/models"
	"ltv-dashboard/internal/services"
)

const testMaxBody = 1 << 20

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testPayload() models.UploadPayload {
	return models.UploadPayload{
		Data: []models.ReportRow{
			{
				CustomerID:        "Acme Corp",
				TotalRevenue:      models.NewNumber(1200.5),
				AvgSale:           models.NewNumber(120.05),
				AvgRetention:      models.NewNumber(0.85),
				PurchaseFrequency: models.NewNumber(10),
				LTV:               models.NewNumber(3200),
			},
			{
				CustomerID:        "Beta Industries",
				TotalRevenue:      models.NewNumber(450),
				AvgSale:           models.NewNumber(45),
				AvgRetention:      models.NewNumber(0.6),
				PurchaseFrequency: models.NewNumber(4),
				LTV:               models.NewNumber(900),
			},
		},
		Orders: []models.TransactionRecord{
			{Customer: "Acme Corp", OrderNo: "100", OrderDate: "2024-02-15", Total: "250.50", SalesRep: "Jane"},
			{Customer: "acme corp ", OrderNo: "101", OrderDate: "2024-02-20", Total: "bad", SalesRep: "Jane"},
			{Customer: "Beta Industries", OrderNo: "102", OrderDate: "2024-03-01", Total: "75", SalesRep: "Bob"},
		},
	}
}

func createTestReport(t *testing.T) *services.Report {
	t.Helper()
	report := services.NewReport()
	if _, err := report.Install(context.Background(), testPayload()); err != nil {
		t.Fatalf("installing test snapshot: %v", err)
	}
	return report
}

func createTestAPIHandlers(t *testing.T, report *services.Report) *APIHandlers {
	t.Helper()
	logger := testLogger()
	pdf := exporter.NewPDF(config.ExportConfig{PDFTimeout: 5 * time.Second}, logger)
	return NewAPIHandlers(report, pdf, logger, testMaxBody)
}

func TestNewAPIHandlers(t *testing.T) {
	report := createTestReport(t)
	handlers := createTestAPIHandlers(t, report)

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.report != report {
		t.Error("NewAPIHandlers() should set report field")
	}
}

func TestAPIHandlers_HandleUpload(t *testing.T) {
	report := services.NewReport()
	handlers := createTestAPIHandlers(t, report)

	body, err := json.Marshal(testPayload())
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handlers.HandleUpload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if got := report.Snapshot().Version; got != 1 {
		t.Errorf("snapshot version = %d, want 1", got)
	}
}

func TestAPIHandlers_HandleUpload_InboundErrorMessage(t *testing.T) {
	report := createTestReport(t)
	before := report.Snapshot().Version
	handlers := createTestAPIHandlers(t, report)

	req := httptest.NewRequest(http.MethodPost, "/api/upload",
		strings.NewReader(`{"error": "source file is corrupt"}`))
	w := httptest.NewRecorder()
	handlers.HandleUpload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "source file is corrupt") {
		t.Errorf("response should carry the inbound message, got %s", w.Body.String())
	}
	if got := report.Snapshot().Version; got != before {
		t.Error("failed upload must not replace the previous snapshot")
	}
}

func TestAPIHandlers_HandleUpload_MalformedBodyFallsBackToGenericMessage(t *testing.T) {
	report := createTestReport(t)
	handlers := createTestAPIHandlers(t, report)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handlers.HandleUpload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "Upload failed") {
		t.Errorf("response should carry the generic failure message, got %s", w.Body.String())
	}
}

func TestAPIHandlers_HandleReport(t *testing.T) {
	handlers := createTestAPIHandlers(t, createTestReport(t))

	req := httptest.NewRequest(http.MethodGet, "/api/report?search=acme&sort=LTV&dir=desc&page=1&page_size=5", nil)
	w := httptest.NewRecorder()
	handlers.HandleReport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	var response struct {
		Data    models.ReportView `json:"data"`
		Success bool              `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Success {
		t.Error("expected success envelope")
	}
	if len(response.Data.Rows) != 1 || response.Data.Rows[0].CustomerID != "Acme Corp" {
		t.Errorf("rows = %+v, want only Acme Corp", response.Data.Rows)
	}
	if response.Data.PageInfo.TotalPages != 1 {
		t.Errorf("total pages = %d, want 1", response.Data.PageInfo.TotalPages)
	}
}

func TestAPIHandlers_HandleHistory(t *testing.T) {
	handlers := createTestAPIHandlers(t, createTestReport(t))

	req := httptest.NewRequest(http.MethodGet, "/api/customers/Acme%20Corp/history", nil)
	req.SetPathValue("customer", "Acme Corp")
	w := httptest.NewRecorder()
	handlers.HandleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response struct {
		Data models.CustomerHistory `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Data.TotalTransactions != 2 {
		t.Errorf("grand total = %d, want 2", response.Data.TotalTransactions)
	}
	if len(response.Data.Summary) != 1 || response.Data.Summary[0].Month != "2024-02" {
		t.Errorf("summary = %+v", response.Data.Summary)
	}
}

func TestAPIHandlers_HandleHistory_UnknownCustomer(t *testing.T) {
	handlers := createTestAPIHandlers(t, createTestReport(t))

	req := httptest.NewRequest(http.MethodGet, "/api/customers/Nobody/history", nil)
	req.SetPathValue("customer", "Nobody")
	w := httptest.NewRecorder()
	handlers.HandleHistory(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPIHandlers_HandleExportCSV(t *testing.T) {
	handlers := createTestAPIHandlers(t, createTestReport(t))

	req := httptest.NewRequest(http.MethodGet, "/api/export/csv", nil)
	w := httptest.NewRecorder()
	handlers.HandleExportCSV(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, exporter.ReportCSVName) {
		t.Errorf("Content-Disposition = %q, want attachment %s", got, exporter.ReportCSVName)
	}
	if !strings.Contains(w.Body.String(), "Customer Name") {
		t.Error("CSV body missing header row")
	}
	if !strings.Contains(w.Body.String(), "Acme Corp") {
		t.Error("CSV body missing data rows")
	}
}

func TestAPIHandlers_HandleExportCSV_EmptyView(t *testing.T) {
	handlers := createTestAPIHandlers(t, createTestReport(t))

	req := httptest.NewRequest(http.MethodGet, "/api/export/csv?search=zebra", nil)
	w := httptest.NewRecorder()
	handlers.HandleExportCSV(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "NOTHING_TO_EXPORT") {
		t.Errorf("response = %s, want nothing-to-export code", w.Body.String())
	}
}

func TestAPIHandlers_HandleExportXLSX(t *testing.T) {
	handlers := createTestAPIHandlers(t, createTestReport(t))

	req := httptest.NewRequest(http.MethodGet, "/api/export/xlsx", nil)
	w := httptest.NewRecorder()
	handlers.HandleExportXLSX(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := createTestAPIHandlers(t, createTestReport(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Error("health response missing status")
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := createTestAPIHandlers(t, createTestReport(t))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Data["rows"] != float64(2) {
		t.Errorf("stats rows = %v, want 2", response.Data["rows"])
	}
	if response.Data["orders"] != float64(3) {
		t.Errorf("stats orders = %v, want 3", response.Data["orders"])
	}
}

func TestQueryFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/report?search=x&sort=LTV&dir=desc&page=3&page_size=20", nil)
	q := queryFromRequest(req)

	if q.Search != "x" || q.SortKey != "LTV" || q.SortAsc || q.Page != 3 || q.PageSize != 20 {
		t.Errorf("queryFromRequest = %+v", q)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/report?page_size=7", nil)
	q = queryFromRequest(req)
	if q.PageSize != services.DefaultPageSize {
		t.Errorf("disallowed page size applied: %d", q.PageSize)
	}
	if q.SortKey != "" || !q.SortAsc {
		t.Errorf("default sort state = %+v", q)
	}
}

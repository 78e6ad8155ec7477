package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ltv-dashboard/internal/errors"
	"ltv-dashboard/internal/exporter"
	"ltv-dashboard/internal/models"
	"ltv-dashboard/internal/observability"
	"ltv-dashboard/internal/services"
	"ltv-dashboard/internal/ui/templates"
)

type APIHandlers struct {
	report       *services.Report
	pdf          *exporter.PDF
	logger       *slog.Logger
	maxBodyBytes int64
}

func NewAPIHandlers(report *services.Report, pdf *exporter.PDF, logger *slog.Logger, maxBodyBytes int64) *APIHandlers {
	return &APIHandlers{
		report:       report,
		pdf:          pdf,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// uploadBody is the inbound upload-result wire shape. A failure response
// carries only the error message.
type uploadBody struct {
	Data   []models.ReportRow         `json:"data"`
	Orders []models.TransactionRecord `json:"orders"`
	Error  string                     `json:"error"`
}

// HandleUpload installs a completed upload result as the new snapshot.
// Any failure leaves the previous snapshot in place.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var body uploadBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		errors.WriteError(w, h.logger, errors.UploadFailed(err, ""), requestID)
		return
	}

	if body.Error != "" {
		errors.WriteError(w, h.logger, errors.UploadFailed(nil, body.Error), requestID)
		return
	}

	snap, err := h.report.Install(r.Context(), models.UploadPayload{Data: body.Data, Orders: body.Orders})
	if err != nil {
		errors.WriteError(w, h.logger, errors.UploadFailed(err, ""), requestID)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"version": snap.Version,
		"rows":    len(snap.Rows),
		"orders":  len(snap.Orders),
	})
}

// queryFromRequest maps URL parameters onto query state. The session
// state-transition rules (page reset on search change, toggle on
// re-selected sort key) live client-side; the server receives explicit
// state and only clamps.
func queryFromRequest(r *http.Request) services.QueryState {
	q := services.NewQueryState()
	params := r.URL.Query()

	q.Search = params.Get("search")
	if sort := params.Get("sort"); sort != "" {
		q.SortKey = sort
		q.SortAsc = params.Get("dir") != "desc"
	}
	if page, err := strconv.Atoi(params.Get("page")); err == nil {
		q.SetPage(page)
	}
	if size, err := strconv.Atoi(params.Get("page_size")); err == nil {
		q.SetPageSize(size)
	}
	return q
}

// HandleReport returns one page of the filtered+sorted report plus
// pagination metadata. Views change with every upload, so responses
// are marked uncacheable.
func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	view := h.report.View(queryFromRequest(r))
	errors.WriteSuccessWithHeaders(w, view, map[string]string{
		"Cache-Control": "no-store",
	})
}

// HandleHistory returns the monthly drill-down for one customer.
func (h *APIHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	customer := r.PathValue("customer")

	if _, ok := h.report.CustomerRow(customer); !ok {
		errors.WriteError(w, h.logger, errors.NotFound(fmt.Sprintf("no report row for customer %q", customer)), requestID)
		return
	}

	errors.WriteSuccess(w, h.report.History(customer))
}

// HandleExportCSV streams the current filtered+sorted view as a CSV
// download.
func (h *APIHandlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	data, err := exporter.CSV(h.report.Matching(queryFromRequest(r)))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	writeDownload(w, data, exporter.ReportCSVName, "text/csv; charset=utf-8")
}

// HandleExportXLSX streams the current filtered+sorted view as an XLSX
// download.
func (h *APIHandlers) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	data, err := exporter.XLSX(h.report.Matching(queryFromRequest(r)))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	writeDownload(w, data, exporter.ReportXLSXName,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// HandleHistoryPDF renders the drill-down as a paginated PDF download.
func (h *APIHandlers) HandleHistoryPDF(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	customer := r.PathValue("customer")

	name := customer
	if row, ok := h.report.CustomerRow(customer); ok {
		name = row.CustomerID
	}

	history := h.report.History(customer)

	var doc strings.Builder
	if err := templates.HistoryDocument(history).Render(r.Context(), &doc); err != nil {
		errors.WriteError(w, h.logger, errors.ExportFailedWrap(err, "failed to render history document"), requestID)
		return
	}

	data, err := h.pdf.Render(r.Context(), doc.String())
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	writeDownload(w, data, exporter.PDFFileName(name), "application/pdf")
}

func writeDownload(w http.ResponseWriter, data []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.report.Stats())
}

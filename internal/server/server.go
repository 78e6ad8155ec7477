package server

import (
	"log/slog"
	"net/http"

	"ltv-dashboard/internal/exporter"
	"ltv-dashboard/internal/handlers"
	"ltv-dashboard/internal/services"
)

type Server struct {
	report      *services.Report
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(report *services.Report, pdf *exporter.PDF, logger *slog.Logger, maxBodyBytes int64, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		report:      report,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(report, pdf, logger, maxBodyBytes),
		sseHandlers: handlers.NewSSEHandlers(report, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("POST /api/upload", s.apiHandlers.HandleUpload)
	s.mux.HandleFunc("GET /api/report", s.apiHandlers.HandleReport)
	s.mux.HandleFunc("GET /api/customers/{customer}/history", s.apiHandlers.HandleHistory)
	s.mux.HandleFunc("GET /api/customers/{customer}/history/pdf", s.apiHandlers.HandleHistoryPDF)
	s.mux.HandleFunc("GET /api/export/csv", s.apiHandlers.HandleExportCSV)
	s.mux.HandleFunc("GET /api/export/xlsx", s.apiHandlers.HandleExportXLSX)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/report", s.sseHandlers.HandleReport)
	s.mux.HandleFunc("GET /sse/customer-history", s.sseHandlers.HandleCustomerHistory)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

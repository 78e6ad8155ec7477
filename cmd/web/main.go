package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ltv-dashboard/internal/config"
	"ltv-dashboard/internal/exporter"
	"ltv-dashboard/internal/middleware"
	"ltv-dashboard/internal/models"
	"ltv-dashboard/internal/observability"
	"ltv-dashboard/internal/server"
	"ltv-dashboard/internal/services"
	"ltv-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	seedTimeout   = 30 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// loadSeedPayload installs a saved upload-result file so the dashboard
// starts populated without waiting on the upload collaborator.
func loadSeedPayload(ctx context.Context, report *services.Report, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var payload models.UploadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}

	if _, err := report.Install(ctx, payload); err != nil {
		return fmt.Errorf("install seed snapshot: %w", err)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	report := services.NewReport()

	if cfg.Upload.SeedFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		if err := loadSeedPayload(ctx, report, cfg.Upload.SeedFile); err != nil {
			cancel()
			logger.Error("failed to load seed payload", "error", err)
			os.Exit(1)
		}
		cancel()
		logger.Info("seed payload loaded", "file", cfg.Upload.SeedFile)
	}

	pdf := exporter.NewPDF(cfg.Export, logger)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(report, pdf, logger, cfg.Upload.MaxBodyBytes, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down report engine")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

package exporter

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"ltv-dashboard/internal/config"
	"ltv-dashboard/internal/errors"
)

// Letter portrait with half-inch margins, matching the drill-down's
// print layout.
const (
	letterWidthIn  = 8.5
	letterHeightIn = 11.0
	pdfMarginIn    = 0.5
)

// PDF renders drill-down HTML into a paginated document through
// headless Chrome. Only one render runs at a time; a second request
// while one is in flight is rejected rather than queued, mirroring the
// disabled export affordance in the UI.
type PDF struct {
	chromePath string
	timeout    time.Duration
	logger     *slog.Logger
	inFlight   atomic.Bool
}

func NewPDF(cfg config.ExportConfig, logger *slog.Logger) *PDF {
	return &PDF{
		chromePath: cfg.ChromePath,
		timeout:    cfg.PDFTimeout,
		logger:     logger,
	}
}

// Render produces the PDF bytes for a fully rendered detail document.
// The browser allocation, tab and timeout are torn down on every exit
// path, success or failure.
func (p *PDF) Render(ctx context.Context, html string) ([]byte, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, errors.New(errors.CodeExportFailed, "A PDF export is already in progress.")
	}
	defer p.inFlight.Store(false)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
	)
	if p.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, p.timeout)
	defer cancelTimeout()

	start := time.Now()
	var buf []byte

	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			b, _, err := page.PrintToPDF().
				WithPaperWidth(letterWidthIn).
				WithPaperHeight(letterHeightIn).
				WithMarginTop(pdfMarginIn).
				WithMarginBottom(pdfMarginIn).
				WithMarginLeft(pdfMarginIn).
				WithMarginRight(pdfMarginIn).
				WithLandscape(false).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			buf = b
			return nil
		}),
	)
	if err != nil {
		return nil, errors.ExportFailedWrap(err, "PDF rendering failed")
	}

	p.logger.Info("pdf rendered",
		"bytes", len(buf),
		"duration", time.Since(start))
	return buf, nil
}

package templates

import (
	"context"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"ltv-dashboard/internal/models"
	"ltv-dashboard/internal/services"
)

var historyFuncs = template.FuncMap{
	"currency": func(v float64) string {
		return services.FormatCurrency(models.NewNumber(v))
	},
	"actors": func(names []string) string {
		joined := strings.Join(names, ", ")
		if strings.TrimSpace(joined) == "" {
			return "-"
		}
		return joined
	},
}

var historyDocTemplate = template.Must(template.New("historyDoc").Funcs(historyFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<title>Transaction History: {{.CustomerID}}</title>
<style>
body { font-family: system-ui, sans-serif; color: #1f2937; }
h1 { font-size: 1.1rem; color: #1d4ed8; margin-bottom: 1.5rem; }
.bucket { border: 1px solid #e5e7eb; border-radius: 4px; background: #f9fafb; padding: 1rem; margin-bottom: 1.25rem; page-break-inside: avoid; }
.bucket-head { font-weight: 600; color: #374151; margin-bottom: 0.5rem; }
.bucket-head .month { color: #2563eb; }
.bucket-head .sales { color: #16a34a; }
.details div { margin: 0.15rem 0; }
.grand-total { text-align: right; font-weight: 600; margin-top: 1rem; }
</style>
</head>
<body>
<h1>Transaction History: {{.CustomerID}}</h1>
{{range .Summary}}<div class="bucket">
<div class="bucket-head"><span class="month">{{.Month}}</span> &mdash; {{.TransactionCount}} Transactions &mdash; <span class="sales">{{currency .TotalSales}}</span></div>
<div class="details">
<div><strong>Sales Rep:</strong> {{actors .SalesReps}}</div>
<div><strong>Estimator:</strong> {{actors .Estimators}}</div>
<div><strong>CSR:</strong> {{actors .CSRs}}</div>
<div><strong>Created By:</strong> {{actors .Creators}}</div>
</div>
</div>
{{end}}<div class="grand-total">Total Transactions: {{.TotalTransactions}}</div>
</body>
</html>
`))

// HistoryDocument is the print layout of a customer's drill-down. The
// scrollable SO# list is omitted and the details block takes the full
// width, matching the on-screen print mode; no scroll-container height
// or overflow constraints carry into the document.
func HistoryDocument(history models.CustomerHistory) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return historyDocTemplate.Execute(w, history)
	})
}

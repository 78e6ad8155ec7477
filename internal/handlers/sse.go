package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"ltv-dashboard/internal/models"
	"ltv-dashboard/internal/services"
)

// flexInt is an integer signal value that tolerates string-typed JSON,
// which is what bound form controls produce. A value that fails to
// parse leaves the previous value in place rather than failing the
// whole store.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		*f = flexInt(v)
	}
	return nil
}

// reportSignals mirrors the dashboard's datastar signal store.
type reportSignals struct {
	Search   string  `json:"search"`
	SortKey  string  `json:"sortKey"`
	SortAsc  bool    `json:"sortAsc"`
	Page     flexInt `json:"page"`
	PageSize flexInt `json:"pageSize"`
	Customer string  `json:"customer"`
}

var reportTableTemplate = template.Must(template.New("reportTable").Parse(`
<div id="report-content">
{{if .Rows}}<table class="report-table">
<thead><tr>
{{range .Headers}}<th data-on-click="$sortAsc = ($sortKey == '{{.Field}}') ? !$sortAsc : true; $sortKey = '{{.Field}}'; @get('/sse/report')">{{.Label}} {{.Arrow}}</th>
{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr data-on-click="$customer = '{{.Customer | js}}'; @get('/sse/customer-history')">
{{range .Cells}}<td>{{.}}</td>{{end}}
</tr>
{{end}}</tbody>
</table>
{{else if .Search}}<p>No rows match "{{.Search}}".</p>
{{else}}<p>No report loaded yet. Upload a dataset to get started.</p>
{{end}}</div>`))

var paginationTemplate = template.Must(template.New("pagination").Parse(`
<div id="pagination-content">
{{if gt .TotalPages 1}}<div class="pagination">
<div>Page {{.Page}} of {{.TotalPages}}</div>
<button data-on-click="$page = {{.PrevPage}}; @get('/sse/report')" {{if eq .Page 1}}disabled{{end}}>Prev</button>
{{range .Pages}}{{if .Ellipsis}}<span>&hellip;</span>{{else}}<button {{if eq .Number $.Page}}class="current"{{end}} data-on-click="$page = {{.Number}}; @get('/sse/report')">{{.Number}}</button>{{end}}
{{end}}<button data-on-click="$page = {{.NextPage}}; @get('/sse/report')" {{if eq .Page .TotalPages}}disabled{{end}}>Next</button>
</div>{{end}}
</div>`))

var detailTemplate = template.Must(template.New("detail").Parse(`
<div id="detail-content" class="detail-panel" style="display:block">
<h2>Transaction History: {{.Customer}}</h2>
<div id="monthly-chart"></div>
{{range .Buckets}}<div class="bucket">
<div><strong>{{.Month}}</strong> &mdash; {{.TransactionCount}} Transactions &mdash; {{.TotalSales}}</div>
<div class="orders">
{{range .Orders}}<div><strong>SO#:</strong> {{.Number}} <span>&mdash; {{.Date}}</span></div>
{{end}}</div>
<div class="details">
<div><strong>Sales Rep:</strong> {{.SalesReps}}</div>
<div><strong>Estimator:</strong> {{.Estimators}}</div>
<div><strong>CSR:</strong> {{.CSRs}}</div>
<div><strong>Created By:</strong> {{.Creators}}</div>
</div>
</div>
{{end}}<div><strong>Total Transactions:</strong> {{.TotalTransactions}}</div>
<a href="/api/customers/{{.Customer}}/history/pdf">Export PDF</a>
</div>`))

type SSEHandlers struct {
	report *services.Report
	logger *slog.Logger
}

func NewSSEHandlers(report *services.Report, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		report: report,
		logger: logger,
	}
}

func (h *SSEHandlers) readReportSignals(r *http.Request) (reportSignals, services.QueryState) {
	signals := reportSignals{SortAsc: true, Page: 1, PageSize: services.DefaultPageSize}
	// Missing signals fall back to the defaults above.
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Debug("decode report signals", "error", err)
	}

	q := services.NewQueryState()
	q.Search = signals.Search
	q.SortKey = signals.SortKey
	q.SortAsc = signals.SortAsc
	q.SetPage(int(signals.Page))
	q.SetPageSize(int(signals.PageSize))
	return signals, q
}

type headerCell struct {
	Field string
	Label string
	Arrow string
}

type tableRow struct {
	Customer string
	Cells    []string
}

type tableData struct {
	Headers []headerCell
	Rows    []tableRow
	Search  string
}

func buildTableData(view models.ReportView) tableData {
	data := tableData{Search: view.Search}
	for _, field := range models.ReportFields {
		arrow := ""
		if view.SortKey == field {
			if view.SortAsc {
				arrow = "▲"
			} else {
				arrow = "▼"
			}
		}
		data.Headers = append(data.Headers, headerCell{
			Field: field,
			Label: models.ReportHeaders[field],
			Arrow: arrow,
		})
	}
	for _, row := range view.Rows {
		cells := make([]string, 0, len(models.ReportFields))
		for _, field := range models.ReportFields {
			cells = append(cells, services.DisplayValue(row, field))
		}
		data.Rows = append(data.Rows, tableRow{Customer: row.CustomerID, Cells: cells})
	}
	return data
}

type paginationData struct {
	models.PageInfo
	PrevPage int
	NextPage int
}

// HandleReport recomputes and patches the report table and pagination
// fragments for the current signal state. If clamping moved the page,
// the corrected page number is pushed back as a signal.
func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, q := h.readReportSignals(r)
	view := h.report.View(q)

	var table strings.Builder
	if err := reportTableTemplate.Execute(&table, buildTableData(view)); err != nil {
		h.logger.Error("render report table", "error", err)
		return
	}
	sse.PatchElements(table.String())

	pages := paginationData{
		PageInfo: view.PageInfo,
		PrevPage: max(view.PageInfo.Page-1, 1),
		NextPage: min(view.PageInfo.Page+1, view.PageInfo.TotalPages),
	}
	var pagination strings.Builder
	if err := paginationTemplate.Execute(&pagination, pages); err != nil {
		h.logger.Error("render pagination", "error", err)
		return
	}
	sse.PatchElements(pagination.String())

	if view.PageInfo.Page != int(signals.Page) {
		corrected, err := json.Marshal(map[string]any{"page": view.PageInfo.Page})
		if err != nil {
			h.logger.Error("marshal page signal", "error", err)
			return
		}
		sse.PatchSignals(corrected)
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

type detailBucket struct {
	Month            string
	TransactionCount int
	TotalSales       string
	Orders           []detailOrder
	SalesReps        string
	CSRs             string
	Estimators       string
	Creators         string
}

type detailOrder struct {
	Number string
	Date   string
}

type detailData struct {
	Customer          string
	Buckets           []detailBucket
	TotalTransactions int
}

func joinActors(names []string) string {
	joined := strings.Join(names, ", ")
	if strings.TrimSpace(joined) == "" {
		return "-"
	}
	return joined
}

// HandleCustomerHistory patches the drill-down fragment for the selected
// customer and pushes the monthly summaries as chart signals.
func (h *SSEHandlers) HandleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, _ := h.readReportSignals(r)
	history := h.report.History(signals.Customer)

	data := detailData{
		Customer:          history.CustomerID,
		TotalTransactions: history.TotalTransactions,
	}
	for _, m := range history.Summary {
		bucket := detailBucket{
			Month:            m.Month,
			TransactionCount: m.TransactionCount,
			TotalSales:       services.FormatCurrency(models.NewNumber(m.TotalSales)),
			SalesReps:        joinActors(m.SalesReps),
			CSRs:             joinActors(m.CSRs),
			Estimators:       joinActors(m.Estimators),
			Creators:         joinActors(m.Creators),
		}
		for i, order := range m.OrderList {
			bucket.Orders = append(bucket.Orders, detailOrder{Number: order, Date: m.Dates[i]})
		}
		data.Buckets = append(data.Buckets, bucket)
	}

	var detail strings.Builder
	if err := detailTemplate.Execute(&detail, data); err != nil {
		h.logger.Error("render customer detail", "error", err)
		return
	}
	sse.PatchElements(detail.String())

	chartData, err := json.Marshal(map[string]any{"monthlyData": history.Summary})
	if err != nil {
		h.logger.Error("marshal monthly chart data", "error", err)
		return
	}
	sse.PatchSignals(chartData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

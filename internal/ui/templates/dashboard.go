package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard is the static page shell. All report data arrives through
// datastar SSE patches; the shell only wires signals and containers.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>LTV Report Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #f3f4f6; }
h1 { font-size: 1.5rem; margin-bottom: 1.5rem; }
.toolbar { display: flex; gap: 1rem; align-items: center; margin-bottom: 1.5rem; flex-wrap: wrap; }
.toolbar input, .toolbar select { border: 1px solid #d1d5db; border-radius: 4px; padding: 0.4rem 0.6rem; }
.toolbar button { background: #16a34a; color: #fff; border: 0; border-radius: 4px; padding: 0.5rem 1rem; cursor: pointer; }
.report-table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 6px; overflow: hidden; }
.report-table th { background: #e5e7eb; text-align: left; padding: 0.5rem 1rem; cursor: pointer; }
.report-table td { border-top: 1px solid #e5e7eb; padding: 0.5rem 1rem; }
.report-table tr:hover td { background: #f9fafb; }
.pagination { display: flex; gap: 0.5rem; align-items: center; margin-top: 1rem; }
.pagination button { border: 1px solid #d1d5db; background: #fff; border-radius: 4px; padding: 0.25rem 0.6rem; cursor: pointer; }
.pagination .current { font-weight: 700; color: #2563eb; }
.detail-panel { margin-top: 2rem; background: #fff; border-radius: 6px; padding: 1.5rem; }
</style>
</head>
<body data-signals="{search: '', sortKey: '', sortAsc: true, page: 1, pageSize: 10, customer: ''}">
<h1>LTV Report Dashboard</h1>
<div class="toolbar">
  <!-- A changed search term resets to page 1; sort clicks keep the page. -->
  <input type="text" placeholder="Search..." data-bind-search
         data-on-input__debounce.300ms="$page = 1; @get('/sse/report')"/>
  <label>Rows:
    <select data-bind-page-size data-on-change="@get('/sse/report')">
      <option value="5">5</option>
      <option value="10" selected>10</option>
      <option value="20">20</option>
      <option value="50">50</option>
    </select>
  </label>
  <button data-on-click="window.location='/api/export/csv?search='+$search+'&sort='+$sortKey+'&dir='+($sortAsc?'asc':'desc')">Export CSV</button>
  <button data-on-click="window.location='/api/export/xlsx?search='+$search+'&sort='+$sortKey+'&dir='+($sortAsc?'asc':'desc')">Export XLSX</button>
</div>
<div id="report-content" data-on-load="@get('/sse/report')"></div>
<div id="pagination-content"></div>
<div id="detail-content" class="detail-panel" style="display:none"></div>
</body>
</html>
`

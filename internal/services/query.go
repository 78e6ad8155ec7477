package services

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ltv-dashboard/internal/models"
)

// PageSizes is the enumerated set of allowed rows-per-page values.
var PageSizes = []int{5, 10, 20, 50}

const DefaultPageSize = 10

// QueryState holds the transient search/sort/pagination parameters of an
// interactive session. It is distinct from the snapshot: mutating it
// never touches the data.
type QueryState struct {
	Search   string
	SortKey  string
	SortAsc  bool
	Page     int
	PageSize int
}

func NewQueryState() QueryState {
	return QueryState{SortAsc: true, Page: 1, PageSize: DefaultPageSize}
}

// SetSearch updates the search term. A changed term resets to the first
// page; sort changes deliberately do not.
func (q *QueryState) SetSearch(term string) {
	if term == q.Search {
		return
	}
	q.Search = term
	q.Page = 1
}

// ToggleSort re-selects or switches the active sort key. Re-selecting
// the current key flips direction; a new key starts ascending.
func (q *QueryState) ToggleSort(key string) {
	if key == q.SortKey {
		q.SortAsc = !q.SortAsc
		return
	}
	q.SortKey = key
	q.SortAsc = true
}

func (q *QueryState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	q.Page = page
}

// SetPageSize applies a new page size if it is one of the allowed
// values; anything else is ignored. The current page is kept and only
// clamped at view time.
func (q *QueryState) SetPageSize(size int) {
	if slices.Contains(PageSizes, size) {
		q.PageSize = size
	}
}

// FilterRows retains rows where any field's lowercased string form
// contains the lowercased query. An empty query is the identity. The
// input slice is never mutated.
func FilterRows(rows []models.ReportRow, query string) []models.ReportRow {
	if query == "" {
		return rows
	}
	q := strings.ToLower(query)
	out := make([]models.ReportRow, 0, len(rows))
	for _, row := range rows {
		for _, field := range models.ReportFields {
			if strings.Contains(strings.ToLower(searchValue(row, field)), q) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// SortRows returns a sorted copy of rows by the named key. When both
// values parse as finite numbers they compare numerically, otherwise
// their string forms compare under English collation. Equal values keep
// their input order. An empty key returns the input unchanged.
func SortRows(rows []models.ReportRow, key string, asc bool) []models.ReportRow {
	if key == "" {
		return rows
	}
	out := slices.Clone(rows)
	col := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		c := compareValues(col, out[i].Field(key), out[j].Field(key))
		if asc {
			return c < 0
		}
		return c > 0
	})
	return out
}

func compareValues(col *collate.Collator, a, b any) int {
	an, aok := numericValue(a)
	bn, bok := numericValue(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return col.CompareString(stringForm(a), stringForm(b))
}

// SortByCustomer orders report rows by customer identifier under English
// collation. Snapshots install in this order, matching the upstream
// report's default presentation.
func SortByCustomer(rows []models.ReportRow) []models.ReportRow {
	out := slices.Clone(rows)
	col := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].CustomerID, out[j].CustomerID) < 0
	})
	return out
}

package services

import (
	"slices"
	"testing"

	"ltv-dashboard/internal/models"
)

func testRows() []models.ReportRow {
	return []models.ReportRow{
		{
			CustomerID:        "Acme Corp",
			TotalRevenue:      models.NewNumber(1200.50),
			AvgSale:           models.NewNumber(120.05),
			AvgRetention:      models.NewNumber(0.85),
			PurchaseFrequency: models.NewNumber(10),
			LTV:               models.NewNumber(3200),
		},
		{
			CustomerID:        "Beta Industries",
			TotalRevenue:      models.NewNumber(450),
			AvgSale:           models.NewNumber(45),
			AvgRetention:      models.NewNumber(0.60),
			PurchaseFrequency: models.NewNumber(10),
			LTV:               models.NewNumber(900),
		},
		{
			CustomerID:        "acme supplies",
			TotalRevenue:      models.NewNumber(99.99),
			AvgSale:           models.NewNumber(33.33),
			AvgRetention:      models.NewNumber(0.40),
			PurchaseFrequency: models.NewNumber(3),
			LTV:               models.NewNumber(150),
		},
	}
}

func customerIDs(rows []models.ReportRow) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CustomerID)
	}
	return ids
}

func TestFilterRows_EmptyQueryIsIdentity(t *testing.T) {
	rows := testRows()
	got := FilterRows(rows, "")
	if len(got) != len(rows) {
		t.Fatalf("empty query should retain all %d rows, got %d", len(rows), len(got))
	}
}

func TestFilterRows_CaseInsensitiveAnyField(t *testing.T) {
	rows := testRows()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"customer substring", "ACME", []string{"Acme Corp", "acme supplies"}},
		{"numeric field substring", "1200.5", []string{"Acme Corp"}},
		{"shared numeric value", "10", []string{"Acme Corp", "Beta Industries"}},
		{"no match", "zebra", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := customerIDs(FilterRows(rows, tt.query))
			if !slices.Equal(got, tt.want) {
				t.Errorf("FilterRows(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilterRows_SubsetAndNoMutation(t *testing.T) {
	rows := testRows()
	before := customerIDs(rows)

	got := FilterRows(rows, "acme")
	if len(got) > len(rows) {
		t.Errorf("filtered set larger than input: %d > %d", len(got), len(rows))
	}
	if !slices.Equal(customerIDs(rows), before) {
		t.Error("FilterRows mutated its input")
	}
}

func TestSortRows_Numeric(t *testing.T) {
	rows := testRows()

	asc := SortRows(rows, "TotalRevenue", true)
	want := []string{"acme supplies", "Beta Industries", "Acme Corp"}
	if got := customerIDs(asc); !slices.Equal(got, want) {
		t.Errorf("ascending TotalRevenue = %v, want %v", got, want)
	}

	desc := SortRows(rows, "TotalRevenue", false)
	slices.Reverse(want)
	if got := customerIDs(desc); !slices.Equal(got, want) {
		t.Errorf("descending TotalRevenue = %v, want %v", got, want)
	}
}

func TestSortRows_StringFallbackIgnoresCase(t *testing.T) {
	rows := testRows()

	got := customerIDs(SortRows(rows, "CustomerID", true))
	// English collation orders case-insensitively, unlike byte order.
	want := []string{"Acme Corp", "acme supplies", "Beta Industries"}
	if !slices.Equal(got, want) {
		t.Errorf("ascending CustomerID = %v, want %v", got, want)
	}
}

func TestSortRows_NonNumericValueForcesStringCompare(t *testing.T) {
	rows := []models.ReportRow{
		{CustomerID: "A", LTV: models.NewNumber(900)},
		{CustomerID: "B", LTV: models.Number{Raw: "n/a"}},
		{CustomerID: "C", LTV: models.NewNumber(80)},
	}

	got := customerIDs(SortRows(rows, "LTV", true))
	// "80" < "900" < "n/a" under string comparison once any side fails
	// to parse; numeric pairs still compare numerically.
	want := []string{"C", "A", "B"}
	if !slices.Equal(got, want) {
		t.Errorf("mixed sort = %v, want %v", got, want)
	}
}

func TestSortRows_StableAndIdempotent(t *testing.T) {
	rows := testRows()

	// Acme Corp and Beta Industries tie on PurchaseFrequency; input
	// order must hold in both directions.
	asc := SortRows(rows, "PurchaseFrequency", true)
	if got := customerIDs(asc); !slices.Equal(got, []string{"acme supplies", "Acme Corp", "Beta Industries"}) {
		t.Errorf("ascending ties out of input order: %v", got)
	}

	again := SortRows(asc, "PurchaseFrequency", true)
	if !slices.Equal(customerIDs(again), customerIDs(asc)) {
		t.Error("sorting twice with the same key and direction changed the order")
	}

	desc := SortRows(rows, "PurchaseFrequency", false)
	if got := customerIDs(desc); !slices.Equal(got, []string{"Acme Corp", "Beta Industries", "acme supplies"}) {
		t.Errorf("descending ties out of input order: %v", got)
	}
}

func TestSortRows_EmptyKeyReturnsInput(t *testing.T) {
	rows := testRows()
	got := SortRows(rows, "", false)
	if !slices.Equal(customerIDs(got), customerIDs(rows)) {
		t.Error("empty sort key should leave order unchanged")
	}
}

func TestQueryState_SearchResetsPageSortDoesNot(t *testing.T) {
	q := NewQueryState()
	q.SetPage(5)

	q.ToggleSort("LTV")
	if q.Page != 5 {
		t.Errorf("sort change moved page to %d, want 5", q.Page)
	}

	q.SetSearch("acme")
	if q.Page != 1 {
		t.Errorf("search change left page at %d, want 1", q.Page)
	}

	q.SetPage(3)
	q.SetSearch("acme")
	if q.Page != 3 {
		t.Errorf("unchanged search term moved page to %d, want 3", q.Page)
	}
}

func TestQueryState_ToggleSort(t *testing.T) {
	q := NewQueryState()

	q.ToggleSort("LTV")
	if q.SortKey != "LTV" || !q.SortAsc {
		t.Errorf("new key should start ascending, got key=%q asc=%v", q.SortKey, q.SortAsc)
	}

	q.ToggleSort("LTV")
	if q.SortAsc {
		t.Error("re-selecting the key should flip to descending")
	}

	q.ToggleSort("CustomerID")
	if q.SortKey != "CustomerID" || !q.SortAsc {
		t.Errorf("switching key should reset to ascending, got key=%q asc=%v", q.SortKey, q.SortAsc)
	}
}

func TestQueryState_SetPageSize(t *testing.T) {
	q := NewQueryState()

	q.SetPageSize(50)
	if q.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", q.PageSize)
	}

	q.SetPageSize(7)
	if q.PageSize != 50 {
		t.Errorf("disallowed size applied: PageSize = %d, want 50", q.PageSize)
	}
}

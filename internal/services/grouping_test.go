package services

import (
	"math"
	"slices"
	"testing"

	"ltv-dashboard/internal/models"
)

func order(customer, so, date, total, rep string) models.TransactionRecord {
	return models.TransactionRecord{
		Customer:  models.Text(customer),
		OrderNo:   models.Text(so),
		OrderDate: models.Text(date),
		Total:     models.Text(total),
		SalesRep:  models.Text(rep),
	}
}

func TestGroupCustomerOrders_CaseAndWhitespaceInsensitiveMatch(t *testing.T) {
	orders := []models.TransactionRecord{
		order("Acme", "100", "2024-02-15", "250.50", "Jane"),
		order("acme ", "101", "2024-02-20", "bad", "Jane"),
		order("Other Co", "102", "2024-02-21", "75.00", "Bob"),
	}

	history := GroupCustomerOrders(orders, "Acme")

	if len(history.Summary) != 1 {
		t.Fatalf("buckets = %d, want 1", len(history.Summary))
	}
	bucket := history.Summary[0]

	if bucket.Month != "2024-02" {
		t.Errorf("month = %q, want 2024-02", bucket.Month)
	}
	if bucket.TransactionCount != 2 {
		t.Errorf("transactionCount = %d, want 2", bucket.TransactionCount)
	}
	// Non-numeric Total counts as zero.
	if math.Abs(bucket.TotalSales-250.50) > 1e-9 {
		t.Errorf("totalSales = %v, want 250.50", bucket.TotalSales)
	}
	if !slices.Equal(bucket.OrderList, []string{"100", "101"}) {
		t.Errorf("orderList = %v, want [100 101]", bucket.OrderList)
	}
	if !slices.Equal(bucket.SalesReps, []string{"Jane"}) {
		t.Errorf("salesReps = %v, want [Jane]", bucket.SalesReps)
	}
}

func TestGroupCustomerOrders_BucketsAndGrandTotal(t *testing.T) {
	orders := []models.TransactionRecord{
		order("Acme", "1", "2024-01-05", "10", "A"),
		order("Acme", "2", "2024-01-19", "20", "A"),
		order("Acme", "3", "2024-03-02", "30", "B"),
	}

	history := GroupCustomerOrders(orders, "Acme")

	if len(history.Summary) != 2 {
		t.Fatalf("buckets = %d, want 2", len(history.Summary))
	}
	if history.Summary[0].Month != "2024-01" || history.Summary[1].Month != "2024-03" {
		t.Errorf("bucket order = [%s %s], want chronological [2024-01 2024-03]",
			history.Summary[0].Month, history.Summary[1].Month)
	}
	if history.Summary[0].TransactionCount != 2 || history.Summary[1].TransactionCount != 1 {
		t.Errorf("bucket counts = [%d %d], want [2 1]",
			history.Summary[0].TransactionCount, history.Summary[1].TransactionCount)
	}
	if history.TotalTransactions != 3 {
		t.Errorf("grand total = %d, want 3", history.TotalTransactions)
	}

	for _, bucket := range history.Summary {
		if len(bucket.Dates) != len(bucket.OrderList) {
			t.Errorf("bucket %s: dates length %d != orders length %d",
				bucket.Month, len(bucket.Dates), len(bucket.OrderList))
		}
	}
}

func TestGroupCustomerOrders_UnparseableDateDropped(t *testing.T) {
	orders := []models.TransactionRecord{
		order("Acme", "1", "2024-01-05", "10", "A"),
		order("Acme", "2", "not a date", "999", "A"),
	}

	history := GroupCustomerOrders(orders, "Acme")

	if history.TotalTransactions != 1 {
		t.Errorf("grand total = %d, want 1 (undated record excluded)", history.TotalTransactions)
	}
	if len(history.Summary) != 1 || history.Summary[0].TotalSales != 10 {
		t.Errorf("undated record leaked into bucketing: %+v", history.Summary)
	}
}

func TestGroupCustomerOrders_ActorDeduplicationKeepsFirstOccurrence(t *testing.T) {
	orders := []models.TransactionRecord{
		order("Acme", "1", "2024-01-05", "1", "A"),
		order("Acme", "2", "2024-01-06", "1", "A"),
		order("Acme", "3", "2024-01-07", "1", "B"),
	}

	history := GroupCustomerOrders(orders, "Acme")

	if len(history.Summary) != 1 {
		t.Fatalf("buckets = %d, want 1", len(history.Summary))
	}
	if got := history.Summary[0].SalesReps; !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("salesReps = %v, want [A B]", got)
	}
	// Blank roles stay as a single empty-string entry.
	if got := history.Summary[0].CSRs; !slices.Equal(got, []string{""}) {
		t.Errorf("csrs = %v, want [\"\"]", got)
	}
}

func TestGroupCustomerOrders_NoMatches(t *testing.T) {
	orders := []models.TransactionRecord{
		order("Other", "1", "2024-01-05", "10", "A"),
	}

	history := GroupCustomerOrders(orders, "Acme")

	if len(history.Summary) != 0 || history.TotalTransactions != 0 {
		t.Errorf("expected empty history, got %+v", history)
	}
}

func TestParseOrderDate(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want string
	}{
		{"2024-02-15", true, "2024-02"},
		{"02/15/2024", true, "2024-02"},
		{"Jan 2, 2006", true, "2006-01"},
		{"", false, ""},
		{"yesterday", false, ""},
	}

	for _, tt := range tests {
		day, ok := parseOrderDate(tt.in)
		if ok != tt.ok {
			t.Errorf("parseOrderDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok {
			if got := day.Format("2006-01"); got != tt.want {
				t.Errorf("parseOrderDate(%q) month = %q, want %q", tt.in, got, tt.want)
			}
		}
	}
}

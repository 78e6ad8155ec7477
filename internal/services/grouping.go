package services

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ltv-dashboard/internal/models"
)

// orderDateLayouts are the calendar formats accepted for "Sales Order
// Date". Anything else excludes the record from bucketing only.
var orderDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

func parseOrderDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// orderedSet keeps distinct values in first-occurrence order. Blank
// values count as the empty-string entry.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) values() []string {
	if s.items == nil {
		return []string{}
	}
	return s.items
}

type monthBucket struct {
	orders     []string
	dates      []string
	revenue    decimal.Decimal
	salesReps  *orderedSet
	csrs       *orderedSet
	estimators *orderedSet
	creators   *orderedSet
}

func newMonthBucket() *monthBucket {
	return &monthBucket{
		salesReps:  newOrderedSet(),
		csrs:       newOrderedSet(),
		estimators: newOrderedSet(),
		creators:   newOrderedSet(),
	}
}

// orderTotal interprets the Total field for accumulation. Clean decimal
// strings sum exactly; dirty values fall back to prefix parsing; values
// with no numeric content count as zero.
func orderTotal(raw string) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return d
	}
	if v, ok := ParseFloat(raw); ok {
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

// GroupCustomerOrders buckets a customer's raw orders by calendar month.
// Matching is exact on the trimmed, lowercased customer identifier.
// Records whose order date does not parse are dropped from bucketing.
// Buckets come back sorted by their "YYYY-MM" key, which the zero-padded
// month makes chronological. The input is never mutated.
func GroupCustomerOrders(orders []models.TransactionRecord, customerID string) models.CustomerHistory {
	target := strings.ToLower(strings.TrimSpace(customerID))

	buckets := make(map[string]*monthBucket)
	var keys []string

	for _, o := range orders {
		if o.CustomerKey() != target {
			continue
		}
		day, ok := parseOrderDate(o.OrderDate.String())
		if !ok {
			continue
		}
		key := day.Format("2006-01")

		b := buckets[key]
		if b == nil {
			b = newMonthBucket()
			buckets[key] = b
			keys = append(keys, key)
		}
		b.orders = append(b.orders, o.OrderNo.String())
		b.dates = append(b.dates, o.OrderDate.String())
		b.revenue = b.revenue.Add(orderTotal(o.Total.String()))
		b.salesReps.add(o.SalesRep.String())
		b.csrs.add(o.CSR.String())
		b.estimators.add(o.Estimator.String())
		b.creators.add(o.CreatedBy.String())
	}

	sort.Strings(keys)

	history := models.CustomerHistory{
		CustomerID: strings.TrimSpace(customerID),
		Summary:    make([]models.MonthSummary, 0, len(keys)),
	}
	for _, key := range keys {
		b := buckets[key]
		history.Summary = append(history.Summary, models.MonthSummary{
			Month:            key,
			TransactionCount: len(b.orders),
			TotalSales:       b.revenue.InexactFloat64(),
			OrderList:        b.orders,
			Dates:            b.dates,
			SalesReps:        b.salesReps.values(),
			CSRs:             b.csrs.values(),
			Estimators:       b.estimators.values(),
			Creators:         b.creators.values(),
		})
		history.TotalTransactions += len(b.orders)
	}
	return history
}

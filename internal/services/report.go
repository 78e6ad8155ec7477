package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"ltv-dashboard/internal/models"
)

const (
	qualityBatchSize = 4096
	maxWorkers       = 8
)

// Snapshot is the immutable pair of report rows and raw orders produced
// by one completed upload. Derived views read it freely; only a finished
// install replaces it, and replacement is wholesale.
type Snapshot struct {
	Rows     []models.ReportRow
	Orders   []models.TransactionRecord
	Version  uint64
	Uploaded time.Time
	Quality  DataQuality
}

// DataQuality summarizes how much of the raw order set is usable for
// time-bucketed aggregation.
type DataQuality struct {
	Orders        int `json:"orders"`
	UndatedOrders int `json:"undated_orders"`
	BlankCustomer int `json:"blank_customer"`
	Customers     int `json:"customers"`
}

// Report owns the current snapshot and answers every derived view over
// it. Filter+sort results are memoized on (snapshot version, search,
// sort key, direction); pagination is cheap enough to redo per call.
type Report struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	version  atomic.Uint64
	logger   *slog.Logger

	memoMu sync.Mutex
	memo   *viewMemo
}

type viewMemo struct {
	version uint64
	search  string
	sortKey string
	sortAsc bool
	rows    []models.ReportRow
}

func NewReport() *Report {
	return &Report{
		snapshot: &Snapshot{},
		logger:   slog.Default(),
	}
}

// Install atomically replaces the snapshot with a new upload result.
// Rows install sorted by customer. A cancelled context leaves the
// previous snapshot untouched.
func (r *Report) Install(ctx context.Context, payload models.UploadPayload) (*Snapshot, error) {
	start := time.Now()

	rows := SortByCustomer(payload.Data)
	quality, err := assessOrders(ctx, payload.Orders)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Rows:     rows,
		Orders:   slices.Clone(payload.Orders),
		Version:  r.version.Add(1),
		Uploaded: time.Now(),
		Quality:  quality,
	}

	r.mu.Lock()
	r.snapshot = snap
	r.mu.Unlock()

	r.logger.Info("snapshot installed",
		"version", snap.Version,
		"rows", len(snap.Rows),
		"orders", len(snap.Orders),
		"undated_orders", quality.UndatedOrders,
		"duration", time.Since(start))

	return snap, nil
}

// assessOrders scans the raw order set in bounded-parallel batches and
// merges per-batch counts.
func assessOrders(ctx context.Context, orders []models.TransactionRecord) (DataQuality, error) {
	quality := DataQuality{Orders: len(orders)}
	customers := make(map[string]struct{})
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	for start := 0; start < len(orders); start += qualityBatchSize {
		chunk := orders[start:min(start+qualityBatchSize, len(orders))]
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var local DataQuality
			localCustomers := make(map[string]struct{})
			for _, o := range chunk {
				if key := o.CustomerKey(); key == "" {
					local.BlankCustomer++
				} else {
					localCustomers[key] = struct{}{}
				}
				if _, ok := parseOrderDate(o.OrderDate.String()); !ok {
					local.UndatedOrders++
				}
			}

			mu.Lock()
			quality.UndatedOrders += local.UndatedOrders
			quality.BlankCustomer += local.BlankCustomer
			for k := range localCustomers {
				customers[k] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return DataQuality{}, err
	}
	quality.Customers = len(customers)
	return quality, nil
}

// Snapshot returns the current snapshot. Never nil.
func (r *Report) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// materialize returns the full filtered+sorted row set for a query,
// reusing the memoized result while snapshot and query state are
// unchanged.
func (r *Report) materialize(q QueryState) []models.ReportRow {
	snap := r.Snapshot()

	r.memoMu.Lock()
	defer r.memoMu.Unlock()

	m := r.memo
	if m != nil && m.version == snap.Version &&
		m.search == q.Search && m.sortKey == q.SortKey && m.sortAsc == q.SortAsc {
		return m.rows
	}

	rows := FilterRows(snap.Rows, q.Search)
	rows = SortRows(rows, q.SortKey, q.SortAsc)

	r.memo = &viewMemo{
		version: snap.Version,
		search:  q.Search,
		sortKey: q.SortKey,
		sortAsc: q.SortAsc,
		rows:    rows,
	}
	return rows
}

// View computes one displayed page of the report for the given query
// state.
func (r *Report) View(q QueryState) models.ReportView {
	rows := r.materialize(q)
	pageRows, info := Paginate(rows, q.Page, q.PageSize)
	return models.ReportView{
		Rows:     pageRows,
		PageInfo: info,
		SortKey:  q.SortKey,
		SortAsc:  q.SortAsc,
		Search:   q.Search,
	}
}

// Matching returns the complete filtered+sorted row set for a query,
// as consumed by the export serializers.
func (r *Report) Matching(q QueryState) []models.ReportRow {
	return r.materialize(q)
}

// History recomputes the monthly drill-down for one customer from the
// full raw order set. No cache: the source set cannot change within a
// snapshot and per-customer order counts are small.
func (r *Report) History(customerID string) models.CustomerHistory {
	return GroupCustomerOrders(r.Snapshot().Orders, customerID)
}

// CustomerRow finds the report row whose identifier matches after
// trimming and lowercasing.
func (r *Report) CustomerRow(customerID string) (models.ReportRow, bool) {
	target := strings.ToLower(strings.TrimSpace(customerID))
	for _, row := range r.Snapshot().Rows {
		if strings.ToLower(strings.TrimSpace(row.CustomerID)) == target {
			return row, true
		}
	}
	return models.ReportRow{}, false
}

// Stats reports operational counters for the admin endpoint.
func (r *Report) Stats() map[string]any {
	snap := r.Snapshot()
	return map[string]any{
		"version":        snap.Version,
		"rows":           len(snap.Rows),
		"orders":         len(snap.Orders),
		"customers":      snap.Quality.Customers,
		"undated_orders": snap.Quality.UndatedOrders,
		"uploaded_at":    snap.Uploaded,
	}
}

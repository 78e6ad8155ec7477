package models

// ReportRow is one customer's upstream-computed LTV metrics. Rows are
// immutable once a snapshot is installed; the next upload replaces the
// whole set.
type ReportRow struct {
	CustomerID        string `json:"CustomerID"`
	TotalRevenue      Number `json:"TotalRevenue"`
	AvgSale           Number `json:"AvgSale"`
	AvgRetention      Number `json:"AvgRetention"`
	PurchaseFrequency Number `json:"PurchaseFrequency"`
	LTV               Number `json:"LTV"`
}

// ReportFields is the canonical field iteration order, shared by search,
// sort keys, table columns and export headers.
var ReportFields = []string{
	"CustomerID",
	"TotalRevenue",
	"AvgSale",
	"AvgRetention",
	"PurchaseFrequency",
	"LTV",
}

// ReportHeaders maps a field name to its display label.
var ReportHeaders = map[string]string{
	"CustomerID":        "Customer Name",
	"TotalRevenue":      "Total Revenue",
	"AvgSale":           "Avg Sale",
	"AvgRetention":      "Avg retention per month",
	"PurchaseFrequency": "# transactions",
	"LTV":               "LTV",
}

// Field returns the named field's value: the customer identifier as a
// string, everything else as a Number. Unknown names return nil.
func (r ReportRow) Field(name string) any {
	switch name {
	case "CustomerID":
		return r.CustomerID
	case "TotalRevenue":
		return r.TotalRevenue
	case "AvgSale":
		return r.AvgSale
	case "AvgRetention":
		return r.AvgRetention
	case "PurchaseFrequency":
		return r.PurchaseFrequency
	case "LTV":
		return r.LTV
	default:
		return nil
	}
}

// PageRef is one entry in the compressed page-index list: either a page
// number or an ellipsis placeholder.
type PageRef struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PageInfo describes the pagination window of a report view.
type PageInfo struct {
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	TotalRows  int       `json:"total_rows"`
	Pages      []PageRef `json:"pages"`
}

// ReportView is one rendered page of the filtered+sorted report.
type ReportView struct {
	Rows     []ReportRow `json:"rows"`
	PageInfo PageInfo    `json:"page_info"`
	SortKey  string      `json:"sort_key,omitempty"`
	SortAsc  bool        `json:"sort_asc"`
	Search   string      `json:"search,omitempty"`
}

package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a string field that tolerates JSON numbers, since upload
// collaborators are inconsistent about quoting order numbers and totals.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*t = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*t = Text(v)
		return nil
	}
	*t = Text(s)
	return nil
}

func (t Text) String() string {
	return string(t)
}

// TransactionRecord is one raw sales order as delivered by the upload
// collaborator. Missing actor fields decode to empty strings.
type TransactionRecord struct {
	Customer  Text `json:"Customer"`
	OrderNo   Text `json:"SO#"`
	OrderDate Text `json:"Sales Order Date"`
	Total     Text `json:"Total"`
	SalesRep  Text `json:"Sales Rep"`
	CSR       Text `json:"CSR"`
	Estimator Text `json:"Estimator"`
	CreatedBy Text `json:"Created By"`
}

// CustomerKey is the identifier used for drill-down matching: trimmed
// and lowercased, so "Acme" and "acme " group together.
func (r TransactionRecord) CustomerKey() string {
	return strings.ToLower(strings.TrimSpace(string(r.Customer)))
}

// MonthSummary is one year-month bucket of a customer's order history.
// OrderList and Dates are parallel slices; actor lists are de-duplicated
// in first-occurrence order.
type MonthSummary struct {
	Month            string   `json:"month"`
	TransactionCount int      `json:"transactionCount"`
	TotalSales       float64  `json:"totalSales"`
	OrderList        []string `json:"orderList"`
	Dates            []string `json:"dates"`
	SalesReps        []string `json:"salesReps"`
	CSRs             []string `json:"csrs"`
	Estimators       []string `json:"estimators"`
	Creators         []string `json:"creators"`
}

// CustomerHistory is the full drill-down for one customer.
type CustomerHistory struct {
	CustomerID        string         `json:"customer_id"`
	Summary           []MonthSummary `json:"summary"`
	TotalTransactions int            `json:"totalTransactions"`
}

// UploadPayload is the inbound upload-result body: per-customer metric
// rows plus the raw order list they were computed from.
type UploadPayload struct {
	Data   []ReportRow         `json:"data"`
	Orders []TransactionRecord `json:"orders"`
}

// Number is a numeric field that survives bad input. A value that fails
// to parse keeps its raw text for display and sorts as non-numeric.
type Number struct {
	Value float64
	Raw   string
	Valid bool
}

func NewNumber(v float64) Number {
	return Number{Value: v, Raw: formatFloat(v), Valid: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = Number{}
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*n = parseNumber(raw)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = Number{Raw: s}
		return nil
	}
	*n = Number{Value: v, Raw: s, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.Valid {
		return []byte(formatFloat(n.Value)), nil
	}
	return json.Marshal(n.Raw)
}

// String returns the number the way the dashboard stringifies it for
// search and CSV cells: shortest exact decimal form, or the raw text
// when parsing failed.
func (n Number) String() string {
	if n.Valid {
		return formatFloat(n.Value)
	}
	return n.Raw
}

func parseNumber(raw string) Number {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Number{Raw: raw}
	}
	return Number{Value: v, Raw: raw, Valid: true}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package services

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"ltv-dashboard/internal/models"
)

// currencyPrefix is fixed: the upstream metrics are Canadian-dollar
// amounts rendered with en-US grouping.
const currencyPrefix = "CA$"

var displayPrinter = message.NewPrinter(language.English)

// ParseFloat coerces a display value to a number using leading-prefix
// semantics: " 250.50 total" parses as 250.5, "bad" does not parse.
// Infinities and empty prefixes report ok=false.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := numericPrefixLen(s)
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// numericPrefixLen returns the length of the longest prefix of s that
// forms a decimal literal with optional sign and exponent.
func numericPrefixLen(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	// Optional exponent; only consumed if complete.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			expDigits++
		}
		if expDigits > 0 {
			i = j
		}
	}
	return i
}

// FormatCurrency renders a monetary field as "CA$1,234.50". A value that
// never parsed falls back to its literal raw text.
func FormatCurrency(n models.Number) string {
	if !n.Valid {
		return n.Raw
	}
	return displayPrinter.Sprintf("%s%v", currencyPrefix,
		number.Decimal(n.Value, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatRetention renders the monthly-retention figure with exactly two
// decimals, falling back to raw text on parse failure.
func FormatRetention(n models.Number) string {
	if !n.Valid {
		return n.Raw
	}
	return strconv.FormatFloat(n.Value, 'f', 2, 64)
}

// DisplayValue renders one report cell for tables and exports. Numeric
// values stay raw in the snapshot; formatting happens only here.
func DisplayValue(row models.ReportRow, field string) string {
	switch field {
	case "CustomerID":
		return row.CustomerID
	case "TotalRevenue":
		return FormatCurrency(row.TotalRevenue)
	case "AvgSale":
		return FormatCurrency(row.AvgSale)
	case "AvgRetention":
		return FormatRetention(row.AvgRetention)
	case "PurchaseFrequency":
		return row.PurchaseFrequency.String()
	case "LTV":
		return FormatCurrency(row.LTV)
	default:
		return ""
	}
}

// searchValue is the unformatted string form a field contributes to
// substring search.
func searchValue(row models.ReportRow, field string) string {
	if field == "CustomerID" {
		return row.CustomerID
	}
	if n, ok := row.Field(field).(models.Number); ok {
		return n.String()
	}
	return ""
}

// numericValue extracts a finite numeric interpretation from a field
// value for type-aware comparison.
func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case models.Number:
		if x.Valid && !math.IsInf(x.Value, 0) && !math.IsNaN(x.Value) {
			return x.Value, true
		}
		return 0, false
	case string:
		return ParseFloat(x)
	default:
		return 0, false
	}
}

// stringForm is the comparison fallback string for a field value.
func stringForm(v any) string {
	switch x := v.(type) {
	case models.Number:
		return x.String()
	case string:
		return x
	default:
		return ""
	}
}

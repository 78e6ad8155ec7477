package exporter

import "regexp"

var (
	unsafeChars   = regexp.MustCompile(`[<>:"/\\|?*]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// SafeFileName strips filesystem-unsafe characters from a customer
// display name and collapses whitespace runs to single underscores.
func SafeFileName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "")
	s = whitespaceRun.ReplaceAllString(s, "_")
	if s == "" {
		return "transaction-report"
	}
	return s
}

// PDFFileName derives the drill-down download name for a customer.
func PDFFileName(customer string) string {
	return SafeFileName(customer) + "_transaction_history.pdf"
}

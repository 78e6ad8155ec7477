package exporter

import (
	"bytes"
	"encoding/csv"

	"ltv-dashboard/internal/errors"
	"ltv-dashboard/internal/models"
	"ltv-dashboard/internal/services"
)

// ReportCSVName is the fixed download name of the tabular export.
const ReportCSVName = "ltv_report.csv"

// CSV renders the current filtered+sorted view as a UTF-8 CSV document:
// display labels as the header, render-formatted cells in field order.
// An empty view is an explicit nothing-to-export error, never a
// header-only document.
func CSV(rows []models.ReportRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, errors.NothingToExport()
	}

	var buf bytes.Buffer
	// UTF-8 BOM so Excel detects the encoding.
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)

	headers := make([]string, 0, len(models.ReportFields))
	for _, field := range models.ReportFields {
		headers = append(headers, models.ReportHeaders[field])
	}
	if err := w.Write(headers); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := make([]string, 0, len(models.ReportFields))
		for _, field := range models.ReportFields {
			record = append(record, services.DisplayValue(row, field))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

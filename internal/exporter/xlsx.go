package exporter

import (
	"github.com/xuri/excelize/v2"

	"ltv-dashboard/internal/errors"
	"ltv-dashboard/internal/models"
)

// ReportXLSXName is the fixed download name of the workbook export.
const ReportXLSXName = "ltv_report.xlsx"

const reportSheet = "LTV Report"

// XLSX renders the current filtered+sorted view as a single-sheet
// workbook. Valid numeric cells are written as numbers so spreadsheet
// sorting and totals keep working; unparseable values keep their raw
// text. An empty view is a nothing-to-export error.
func XLSX(rows []models.ReportRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, errors.NothingToExport()
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}

	for col, field := range models.ReportFields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell, models.ReportHeaders[field]); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		for col, field := range models.ReportFields {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			var value any
			switch v := row.Field(field).(type) {
			case models.Number:
				if v.Valid {
					value = v.Value
				} else {
					value = v.Raw
				}
			case string:
				value = v
			}
			if err := f.SetCellValue(reportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package imports

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/patrickmb/timetable-import-api/internal/timefmt"
)

// workbook reads named sheets of an xlsx file into records. The first row of
// every sheet is a header naming the fields; data rows follow.
type workbook struct {
	file *excelize.File
}

func openWorkbook(data []byte) (*workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &workbook{file: f}, nil
}

func (w *workbook) Close() error {
	return w.file.Close()
}

// section returns the data rows of a named sheet, or ok=false when the sheet
// does not exist. Cell values keep their raw spreadsheet encoding: numeric
// cells (including time cells, stored as fractions of a day) are tagged
// numeric, everything else stays text.
func (w *workbook) section(name string) ([]Record, bool) {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, false
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil || len(rows) < 1 {
		return nil, true
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		record := make(Record, len(headers))
		for colIdx, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" || colIdx >= len(row) {
				continue
			}
			raw := strings.TrimSpace(row[colIdx])
			if raw == "" {
				continue
			}
			record[header] = w.cellValue(name, colIdx, rowIdx, raw)
		}
		if len(record) == 0 {
			continue // fully blank row
		}
		records = append(records, record)
	}

	return records, true
}

// cellValue tags a raw cell once at the boundary: boolean cells become the
// literal strings "true"/"false", numeric cells keep their float value, and
// everything else stays text.
func (w *workbook) cellValue(sheet string, colIdx, rowIdx int, raw string) timefmt.Value {
	if raw == "1" || raw == "0" {
		if cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1); err == nil {
			if ct, err := w.file.GetCellType(sheet, cell); err == nil && ct == excelize.CellTypeBool {
				if raw == "1" {
					return timefmt.TextValue("true")
				}
				return timefmt.TextValue("false")
			}
		}
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return timefmt.NumberValue(f)
	}
	return timefmt.TextValue(raw)
}

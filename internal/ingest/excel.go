package ingest

import (
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/kiranshivaraju/agentlist/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first sheet of an Office Open XML workbook.
func ReadXLSX(r io.Reader) ([]models.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ErrParse, sheets[0], err)
	}
	return recordsFromRows(rows), nil
}

// ReadXLS reads the first sheet of a legacy BIFF workbook.
func ReadXLS(r io.ReadSeeker) (records []models.Record, err error) {
	// The BIFF decoder indexes into the stream without bounds checks.
	defer func() {
		if p := recover(); p != nil {
			records = nil
			err = fmt.Errorf("%w: corrupt workbook: %v", ErrParse, p)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrParse, err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		// Rows built from cells alone carry no ROW bounds.
		n := max(row.LastCol(), width)
		cells := make([]string, n)
		for c := 0; c < n; c++ {
			cells[c] = row.Col(c)
		}
		if width == 0 && !isBlankRow(cells) {
			width = n
		}
		rows = append(rows, cells)
	}
	return recordsFromRows(rows), nil
}

// xlsRow returns nil for a row index the sheet holds no records for.
// WorkSheet.Row dereferences missing rows instead of returning nil.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

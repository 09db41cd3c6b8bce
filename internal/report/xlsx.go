package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// sheetNames maps a kind to its worksheet title.
var sheetNames = map[Kind]string{
	KindSales:     "Sales",
	KindInventory: "Inventory",
}

// ToXLSX renders the report as a single-sheet workbook.
func ToXLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetNames[r.Kind()]
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := r.header()
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := setRow(f, sheet, 1, headerRow); err != nil {
		return nil, err
	}
	for i, row := range r.cells() {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

package spreadsheet

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Built-in "m/d/yyyy" date format.
const dateNumFmt = 14

// WriteWorkbook saves a single-sheet workbook at path with header in row 1
// and rows below it. time.Time values are stored as native date cells.
func WriteWorkbook(path, sheet string, header []string, rows [][]interface{}) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: dateNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	for c, title := range header {
		if err := setCell(f, sheet, c+1, 1, title, dateStyle); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, value := range row {
			if err := setCell(f, sheet, c+1, r+2, value, dateStyle); err != nil {
				return err
			}
		}
	}

	if len(header) > 0 {
		last, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 14); err != nil {
			return fmt.Errorf("failed to size columns: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}, dateStyle int) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, name, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", name, err)
	}

	if _, ok := value.(time.Time); ok {
		if err := f.SetCellStyle(sheet, name, name, dateStyle); err != nil {
			return fmt.Errorf("failed to style cell %s: %w", name, err)
		}
	}
	return nil
}

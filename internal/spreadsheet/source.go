// Package spreadsheet reads patient worksheets from xlsx workbooks and
// writes the sample workbook used to seed an empty input folder.
package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"hl7fileprocessor/internal/patient"
)

var ErrNoWorksheet = errors.New("workbook does not contain any worksheet")

// Source yields the data rows of a workbook in sheet order.
type Source interface {
	ReadRows(ctx context.Context, r io.Reader) ([]patient.RawRow, error)
}

// ExcelSource reads the first worksheet of an xlsx workbook. Row 1 is the
// header; data starts at row 2 and ends before the first blank row.
type ExcelSource struct{}

func NewExcelSource() *ExcelSource {
	return &ExcelSource{}
}

func (s *ExcelSource) ReadRows(ctx context.Context, r io.Reader) ([]patient.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	result := make([]patient.RawRow, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cols := rows[i]
		if isBlank(cols) {
			break
		}

		number := i + 1
		raw := patient.RawRow{Number: number, Cells: make([]patient.Cell, patient.ColumnCount)}
		for c := 0; c < patient.ColumnCount; c++ {
			text := ""
			if c < len(cols) {
				text = cols[c]
			}
			raw.Cells[c] = patient.TextCell(text)
			if strings.TrimSpace(text) == "" {
				continue
			}
			if t, ok := nativeTime(f, sheet, c+1, number, date1904); ok {
				raw.Cells[c] = patient.Cell{Text: text, Time: t, HasTime: true}
			}
		}
		result = append(result, raw)
	}

	return result, nil
}

// isBlank reports a row with no cell content at all. A whitespace-only
// cell is content and goes on to validation.
func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

// nativeTime reports the cell's value as a time when the cell is stored as
// a date: either an ISO 8601 date cell or a serial number with a date
// number format.
func nativeTime(f *excelize.File, sheet string, col, row int, date1904 bool) (time.Time, bool) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return time.Time{}, false
	}

	rawValue, err := f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
	if err != nil || rawValue == "" {
		return time.Time{}, false
	}

	if cellType, err := f.GetCellType(sheet, name); err == nil && cellType == excelize.CellTypeDate {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
			if t, err := time.Parse(layout, rawValue); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	styleID, err := f.GetCellStyle(sheet, name)
	if err != nil || styleID == 0 {
		return time.Time{}, false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || !isDateFormat(style) {
		return time.Time{}, false
	}

	serial, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func isDateFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDatePattern(*style.CustomNumFmt)
	}
	return isBuiltInDateFormat(style.NumFmt)
}

// Built-in number formats that render serials as dates or times,
// including the East Asian variants.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDatePattern looks for date/time tokens outside quoted literals and
// bracketed sections such as colours or locales.
func isDatePattern(pattern string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '\\':
			i++
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ydhs")
}

// Package patient defines the admission record read from spreadsheets and
// the rules a raw row must satisfy to become one.
package patient

import (
	"time"
)

// Column positions of a patient worksheet, 0-based.
const (
	ColPatientID = iota
	ColFirstName
	ColLastName
	ColDateOfBirth
	ColGender

	ColumnCount
)

// Header is the header row written to (and expected in) patient sheets.
var Header = []string{"PatientId", "FirstName", "LastName", "DateOfBirth", "Gender"}

const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Row is a validated admission record. Only ValidateRow produces one.
type Row struct {
	PatientID   string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string
}

// Cell is one spreadsheet cell as delivered by a source: its display text
// and, when the cell holds a native date/time, that value.
type Cell struct {
	Text    string
	Time    time.Time
	HasTime bool
}

func TextCell(text string) Cell {
	return Cell{Text: text}
}

func TimeCell(t time.Time) Cell {
	return Cell{Text: t.Format(time.DateOnly), Time: t, HasTime: true}
}

// RawRow is an unvalidated worksheet row. Number is the 1-based row
// number in the sheet, used for error reporting.
type RawRow struct {
	Number int
	Cells  []Cell
}

func (r RawRow) Cell(col int) Cell {
	if col < 0 || col >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[col]
}

package patient

import (
	"fmt"
	"strings"
	"time"

	apperrors "hl7fileprocessor/pkg/errors"
)

const (
	ReasonMissingPatientID   = "missing PatientId"
	ReasonMissingName        = "missing name"
	ReasonInvalidDateOfBirth = "invalid DateOfBirth"
	ReasonInvalidGender      = "invalid gender value"
)

// ValidationError describes the first rule a raw row broke.
type ValidationError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("row %d: %s %q", e.Row, e.Reason, e.Value)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Is lets callers test against apperrors.ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == apperrors.ErrValidation
}

// Text layouts accepted for a DateOfBirth cell that is not a native date.
// All are year-first so no cell is read differently under another locale.
var birthDateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.DateTime,
	"2006/01/02",
}

// ValidateRow turns a raw row into a Row. Rules are checked in column
// order and the first failure is returned.
func ValidateRow(raw RawRow) (Row, error) {
	patientID := strings.TrimSpace(raw.Cell(ColPatientID).Text)
	firstName := strings.TrimSpace(raw.Cell(ColFirstName).Text)
	lastName := strings.TrimSpace(raw.Cell(ColLastName).Text)
	gender := strings.ToUpper(strings.TrimSpace(raw.Cell(ColGender).Text))

	if patientID == "" {
		return Row{}, &ValidationError{Row: raw.Number, Field: Header[ColPatientID], Reason: ReasonMissingPatientID}
	}

	if firstName == "" || lastName == "" {
		field := Header[ColFirstName]
		if firstName != "" {
			field = Header[ColLastName]
		}
		return Row{}, &ValidationError{Row: raw.Number, Field: field, Reason: ReasonMissingName}
	}

	dob, err := parseDateOfBirth(raw.Cell(ColDateOfBirth))
	if err != nil {
		return Row{}, &ValidationError{
			Row:    raw.Number,
			Field:  Header[ColDateOfBirth],
			Value:  strings.TrimSpace(raw.Cell(ColDateOfBirth).Text),
			Reason: ReasonInvalidDateOfBirth,
		}
	}

	switch gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return Row{}, &ValidationError{Row: raw.Number, Field: Header[ColGender], Value: gender, Reason: ReasonInvalidGender}
	}

	return Row{
		PatientID:   patientID,
		FirstName:   firstName,
		LastName:    lastName,
		DateOfBirth: dob,
		Gender:      gender,
	}, nil
}

func parseDateOfBirth(cell Cell) (time.Time, error) {
	if cell.HasTime {
		return dateOnly(cell.Time), nil
	}

	text := strings.TrimSpace(cell.Text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", text)
}

// dateOnly keeps the calendar date as written, dropping clock and zone.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
